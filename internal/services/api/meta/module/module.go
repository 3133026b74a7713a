// Package module mounts the meta endpoints as an API module
package module

import (
	"time"

	"magnetinfo/internal/modkit"
	"magnetinfo/internal/modkit/swaggerkit"
	phttp "magnetinfo/internal/platform/net/http"

	metahttp "magnetinfo/internal/services/api/meta/http"
)

// ServiceName is reported by health and service endpoints
const ServiceName = "magnetinfo-api"

// Module serves /meta
type Module struct {
	modkit.Base
	deps      metahttp.Deps
	startedAt time.Time
}

// New builds the meta module, modules is read on every /meta/service call
func New(deps modkit.Deps, modules func() []string, opts ...modkit.Option) *Module {
	started := time.Now()
	return &Module{
		Base:      modkit.NewBase("meta", "/meta", opts...),
		startedAt: started,
		deps: metahttp.Deps{
			ServiceName: ServiceName,
			StartedAt:   started,
			Swarm:       deps.Swarm,
			Modules:     modules,
		},
	}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {
	m.Mount(r, func(sub phttp.Router) { metahttp.Register(sub, m.deps) })
}

// Ports implements modkit.Module, meta offers nothing to other modules
func (m *Module) Ports() any { return nil }

// Docs implements modkit.Module
func (m *Module) Docs() swaggerkit.SpecMutator {
	if !m.Swagger() {
		return nil
	}
	return metahttp.Docs(m.Prefix())
}
