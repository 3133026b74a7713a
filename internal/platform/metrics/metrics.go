// Package metrics owns the process prometheus registry and its scrape endpoint
package metrics

import (
	"net/http"

	phttp "magnetinfo/internal/platform/net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New returns a registry preloaded with go runtime and process collectors
func New() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves reg in the prometheus text format
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Mount exposes reg at path when enabled
func Mount(r phttp.Router, path string, reg *prometheus.Registry, enabled bool) {
	if !enabled || reg == nil {
		return
	}
	r.Handle(path, Handler(reg))
}
