package modkit

import (
	"fmt"

	"magnetinfo/internal/modkit/swaggerkit"
	phttp "magnetinfo/internal/platform/net/http"
)

// Catalog is the fixed set of modules one API instance serves
type Catalog struct {
	mods   []Module
	byName map[string]Module
}

// NewCatalog keeps mods in mount order, a repeated name or prefix is a wiring bug and panics
func NewCatalog(mods ...Module) *Catalog {
	c := &Catalog{byName: make(map[string]Module, len(mods))}
	prefixes := map[string]string{}
	for _, m := range mods {
		if _, dup := c.byName[m.Name()]; dup {
			panic(fmt.Sprintf("modkit: module %q added twice", m.Name()))
		}
		if other, dup := prefixes[m.Prefix()]; dup {
			panic(fmt.Sprintf("modkit: modules %q and %q share prefix %s", other, m.Name(), m.Prefix()))
		}
		prefixes[m.Prefix()] = m.Name()
		c.byName[m.Name()] = m
		c.mods = append(c.mods, m)
	}
	return c
}

// Names lists modules in mount order
func (c *Catalog) Names() []string {
	out := make([]string, len(c.mods))
	for i, m := range c.mods {
		out[i] = m.Name()
	}
	return out
}

// Get finds a module by name
func (c *Catalog) Get(name string) (Module, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// MountRoutes mounts every module on r
func (c *Catalog) MountRoutes(r phttp.Router) {
	for _, m := range c.mods {
		m.MountRoutes(r)
	}
}

// Docs collects the docs of modules that have swagger on
func (c *Catalog) Docs() []swaggerkit.SpecMutator {
	var out []swaggerkit.SpecMutator
	for _, m := range c.mods {
		if d := m.Docs(); d != nil {
			out = append(out, d)
		}
	}
	return out
}
