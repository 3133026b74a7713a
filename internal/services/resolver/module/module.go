// Package module mounts the resolver as an API module and hands its port to binaries
package module

import (
	"context"
	"time"

	"magnetinfo/internal/modkit"
	"magnetinfo/internal/modkit/swaggerkit"
	phttp "magnetinfo/internal/platform/net/http"
	"magnetinfo/internal/services/resolver/domain"

	rhttp "magnetinfo/internal/services/resolver/http"
	rsvc "magnetinfo/internal/services/resolver/service"
)

// Ports is what the resolver offers outside the HTTP surface
type Ports struct {
	Resolver domain.ServicePort
}

// Module serves /torrents
type Module struct {
	modkit.Base
	svc *rsvc.Svc
	opt Options
}

// New builds the resolver from deps, deps.Swarm is required
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	if deps.Swarm == nil {
		panic("resolver module requires a swarm client in deps")
	}
	o := FromConfig(deps.Cfg)

	var metrics *rsvc.Metrics
	if deps.Metrics != nil {
		metrics = rsvc.NewMetrics(deps.Metrics)
	}
	return &Module{
		Base: modkit.NewBase("resolver", "/torrents", opts...),
		opt:  o,
		svc: rsvc.New(deps.Swarm, rsvc.Options{
			Deadline:    o.Deadline,
			MaxDeadline: o.MaxDeadline,
			Metrics:     metrics,
			Logger:      deps.Log,
			Join:        domain.JoinOptions{Trackers: o.Trackers},
		}),
	}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {
	m.Mount(r, func(sub phttp.Router) { rhttp.Register(sub, m.svc, m.opt.MaxDeadline) })
}

// Ports implements modkit.Module
func (m *Module) Ports() any { return Ports{Resolver: port{m.svc}} }

// Docs implements modkit.Module
func (m *Module) Docs() swaggerkit.SpecMutator {
	if !m.Swagger() {
		return nil
	}
	return rhttp.Docs(m.Prefix())
}

// port keeps callers on the domain interface rather than the concrete service
type port struct{ svc *rsvc.Svc }

func (p port) Resolve(ctx context.Context, identifier string, deadline time.Duration) (domain.ResolvedMetadata, error) {
	return p.svc.Resolve(ctx, identifier, deadline)
}
