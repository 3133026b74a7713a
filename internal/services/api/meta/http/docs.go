package http

import "magnetinfo/internal/modkit/swaggerkit"

// Docs documents the meta routes mounted under prefix
func Docs(prefix string) swaggerkit.SpecMutator {
	return func(spec map[string]any) {
		for _, p := range []struct{ path, summary string }{
			{"/health", "Health check"},
			{"/ready", "Readiness, pings the swarm client"},
			{"/version", "Build and version info"},
			{"/service", "Service info, mounted modules, and live swarm sessions"},
		} {
			swaggerkit.AddPath(spec, prefix+p.path, "get", map[string]any{
				"tags":    []any{"meta"},
				"summary": p.summary,
				"responses": map[string]any{
					"200": map[string]any{"description": "ok"},
				},
			})
		}
	}
}
