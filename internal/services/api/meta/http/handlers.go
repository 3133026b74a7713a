// Package http serves the meta endpoints: liveness, swarm readiness, build info, and the running service
package http

import (
	"context"
	"net/http"
	"time"

	"magnetinfo/internal/core/version"
	phttp "magnetinfo/internal/platform/net/http"

	"github.com/benbjohnson/clock"
)

// ReadyTimeout bounds the swarm ping behind /ready
const ReadyTimeout = 2 * time.Second

// Deps are the handler dependencies
// Swarm is checked for Ping and Len, adapters lacking them report as unknown
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Swarm       any
	// Modules lists the mounted API modules, read per request
	Modules func() []string
	Clock   clock.Clock
}

type pinger interface{ Ping(context.Context) error }

type sessionCounter interface{ Len() int }

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"magnetinfo-api"`
	Started string `json:"started"  example:"2026-10-19T13:00:00Z"`
	Now     string `json:"now"      example:"2026-10-19T13:05:00Z"`
}

// ReadyCheck is one dependency check, Status is ok, fail, skipped, or unknown
type ReadyCheck struct {
	Name   string `json:"name"   example:"swarm"`
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"swarm client closed"`
}

// ReadyResponse rolls the checks up into ok, degraded, or fail
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-10-19T13:05:00Z"`
}

// ServiceResponse describes the running service
type ServiceResponse struct {
	Name     string   `json:"name"     example:"magnetinfo-api"`
	Started  string   `json:"started"  example:"2026-10-19T13:00:00Z"`
	Uptime   int64    `json:"uptime"   example:"300"`
	Modules  []string `json:"modules"  example:"meta,resolver"`
	Sessions *int     `json:"sessions,omitempty" example:"2"`
}

type handlers struct{ Deps }

// Register mounts the meta routes
func Register(r phttp.Router, d Deps) {
	if d.Clock == nil {
		d.Clock = clock.New()
	}
	if d.Modules == nil {
		d.Modules = func() []string { return nil }
	}
	h := handlers{d}
	r.Get("/health", phttp.Serve(h.health))
	r.Get("/ready", phttp.Serve(h.ready))
	r.Get("/version", phttp.Serve(h.version))
	r.Get("/service", phttp.Serve(h.service))
}

func (h handlers) stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// swagger:route GET /meta/health Meta metaHealth
// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (h handlers) health(*http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.ServiceName,
		Started: h.stamp(h.StartedAt),
		Now:     h.stamp(h.Clock.Now()),
	}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness, pings the swarm client
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Router /meta/ready [get]
func (h handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), ReadyTimeout)
	defer cancel()

	swarm := ReadyCheck{Name: "swarm", Status: "ok"}
	switch p, ok := h.Swarm.(pinger); {
	case h.Swarm == nil:
		swarm.Status = "skipped"
	case !ok:
		swarm.Status = "unknown"
	default:
		if err := p.Ping(ctx); err != nil {
			swarm.Status, swarm.Error = "fail", err.Error()
		}
	}

	overall := "degraded"
	switch swarm.Status {
	case "ok", "fail":
		overall = swarm.Status
	}
	return ReadyResponse{Status: overall, Checks: []ReadyCheck{swarm}, Now: h.stamp(h.Clock.Now())}, nil
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h handlers) version(*http.Request) (any, error) { return version.Info(), nil }

// swagger:route GET /meta/service Meta metaService
// @Summary Service info, mounted modules, and live swarm sessions
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse "ok"
// @Router /meta/service [get]
func (h handlers) service(*http.Request) (any, error) {
	out := ServiceResponse{
		Name:    h.ServiceName,
		Started: h.stamp(h.StartedAt),
		Uptime:  int64(h.Clock.Since(h.StartedAt) / time.Second),
		Modules: h.Modules(),
	}
	if c, ok := h.Swarm.(sessionCounter); ok {
		n := c.Len()
		out.Sessions = &n
	}
	return out, nil
}
