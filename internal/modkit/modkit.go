// Package modkit wires API modules: shared deps, the common module base, and the catalog the API mounts from
package modkit

import (
	"net/http"
	"strings"

	"magnetinfo/internal/modkit/swaggerkit"
	"magnetinfo/internal/platform/config"
	"magnetinfo/internal/platform/logger"
	phttp "magnetinfo/internal/platform/net/http"
	"magnetinfo/internal/services/resolver/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// Deps holds what modules are built from, nil Log, Swarm and Metrics are allowed where a module says so
type Deps struct {
	Log     *logger.Logger
	Cfg     config.Conf
	Swarm   domain.SwarmClient
	Metrics prometheus.Registerer
}

// Module is one mountable slice of the API
type Module interface {
	Name() string
	Prefix() string
	MountRoutes(r phttp.Router)
	// Ports is what the module offers binaries and other modules, nil when it offers nothing
	Ports() any
	// Docs is nil when swagger is off for the module
	Docs() swaggerkit.SpecMutator
}

// Option adjusts a Base
type Option func(*Base)

// WithPrefix mounts the module somewhere other than its default prefix
func WithPrefix(p string) Option { return func(b *Base) { b.prefix = p } }

// WithMiddlewares runs mw, in order, in front of the module routes only
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Base) { b.mws = append(b.mws, mw...) }
}

// WithSwagger switches the module docs on or off
func WithSwagger(on bool) Option { return func(b *Base) { b.swagger = on } }

// Base carries the name, prefix, and middleware every module has, modules embed it
type Base struct {
	name    string
	prefix  string
	mws     []func(http.Handler) http.Handler
	swagger bool
}

// NewBase applies opts over the module defaults
func NewBase(name, prefix string, opts ...Option) Base {
	b := Base{name: name, prefix: prefix}
	for _, o := range opts {
		o(&b)
	}
	if !strings.HasPrefix(b.prefix, "/") {
		b.prefix = "/" + b.prefix
	}
	b.prefix = strings.TrimRight(b.prefix, "/")
	if b.prefix == "" {
		panic("modkit: module " + name + " needs a non root prefix")
	}
	return b
}

// Name is the catalog key
func (b Base) Name() string { return b.name }

// Prefix is where the module routes live, relative to the API root
func (b Base) Prefix() string { return b.prefix }

// Swagger reports whether the module should document itself
func (b Base) Swagger() bool { return b.swagger }

// Mount opens the module scope on r and lets routes register inside it
func (b Base) Mount(r phttp.Router, routes func(phttp.Router)) {
	r.Route(b.prefix, func(sub phttp.Router) {
		if len(b.mws) > 0 {
			sub.Use(b.mws...)
		}
		routes(sub)
	})
}

// PortsOf returns m's ports as T, false when m offers something else
func PortsOf[T any](m Module) (T, bool) {
	p, ok := m.Ports().(T)
	return p, ok
}
