// Package api assembles the HTTP API: root greeting, docs, profiler, metrics, and the v1 modules
package api

import (
	"net/http"

	"magnetinfo/internal/modkit"
	"magnetinfo/internal/modkit/swaggerkit"
	"magnetinfo/internal/platform/config"
	"magnetinfo/internal/platform/logger"
	"magnetinfo/internal/platform/metrics"
	phttp "magnetinfo/internal/platform/net/http"
	"magnetinfo/internal/platform/net/middleware"

	metamod "magnetinfo/internal/services/api/meta/module"
	"magnetinfo/internal/services/resolver/domain"
	resolvermod "magnetinfo/internal/services/resolver/module"

	"github.com/prometheus/client_golang/prometheus"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Logger         *logger.Logger
	Swarm          domain.SwarmClient
	Registry       *prometheus.Registry
	Stack          middleware.Options
	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool
}

// FromConfig reads the API_ toggles and stack, the swarm and registry are left to the caller
func FromConfig(cfg config.Conf) Options {
	ac := cfg.Prefix("API_")
	return Options{
		Config:         cfg,
		Stack:          middleware.FromConfig(cfg),
		EnableSwagger:  ac.MayBool("SWAGGER", true),
		EnableProfiler: ac.MayBool("PROFILER", false),
		EnableMetrics:  ac.MayBool("METRICS", true),
	}
}

// RootResponse greets callers on the bare root path
type RootResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Hello from root route"`
}

// Mount serves the API on r and returns the catalog of mounted modules
func Mount(r phttp.Router, opt Options) *modkit.Catalog {
	deps := modkit.Deps{Log: opt.Logger, Cfg: opt.Config, Swarm: opt.Swarm}
	if opt.Registry != nil {
		deps.Metrics = opt.Registry
	}

	var catalog *modkit.Catalog
	catalog = modkit.NewCatalog(
		metamod.New(deps, func() []string { return catalog.Names() }, modkit.WithSwagger(opt.EnableSwagger)),
		resolvermod.New(deps, modkit.WithSwagger(opt.EnableSwagger)),
	)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		phttp.JSON(w, http.StatusOK, RootResponse{Success: true, Message: "Hello from root route"})
	})
	swaggerkit.Mount(r, opt.EnableSwagger, catalog.Docs()...)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	if opt.Registry != nil {
		metrics.Mount(r, "/metrics", opt.Registry, opt.EnableMetrics)
	}

	r.Route("/api/v1", func(v1 phttp.Router) {
		v1.Use(middleware.Stack(opt.Stack)...)
		catalog.MountRoutes(v1)
	})
	return catalog
}
