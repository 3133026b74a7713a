package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the resolver collectors, a nil *Metrics records nothing
type Metrics struct {
	outcomes         *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	inflight         prometheus.Gauge
	teardownFailures prometheus.Counter
}

// NewMetrics creates and registers the resolver collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "magnetinfo",
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Resolutions by terminal outcome",
		}, []string{"outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "magnetinfo",
			Subsystem: "resolver",
			Name:      "resolution_seconds",
			Help:      "Time from join to settlement",
			Buckets:   []float64{.1, .5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"outcome"}),
		inflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "magnetinfo",
			Subsystem: "resolver",
			Name:      "sessions_inflight",
			Help:      "Swarm sessions currently owned by a resolution",
		}),
		teardownFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "magnetinfo",
			Subsystem: "resolver",
			Name:      "teardown_failures_total",
			Help:      "Sessions whose teardown failed or found the session already gone",
		}),
	}
}

func (m *Metrics) observe(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) sessionOpened() {
	if m != nil {
		m.inflight.Inc()
	}
}

func (m *Metrics) sessionClosed() {
	if m != nil {
		m.inflight.Dec()
	}
}

func (m *Metrics) teardownFailed() {
	if m != nil {
		m.teardownFailures.Inc()
	}
}
