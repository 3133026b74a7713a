package http

import "magnetinfo/internal/modkit/swaggerkit"

// Docs documents the resolver routes, prefix is where the module is mounted
func Docs(prefix string) swaggerkit.SpecMutator {
	return func(spec map[string]any) {
		swaggerkit.AddSchema(spec, "ResolveInput", map[string]any{
			"type":     "object",
			"required": []any{"magnet_link"},
			"properties": map[string]any{
				"magnet_link": map[string]any{"type": "string", "maxLength": 8192},
				"timeout_ms":  map[string]any{"type": "integer", "minimum": 1},
			},
		})
		swaggerkit.AddSchema(spec, "TorrentFile", map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":   map[string]any{"type": "string"},
				"path":   map[string]any{"type": "string"},
				"length": map[string]any{"type": "integer", "format": "int64"},
			},
		})
		swaggerkit.AddSchema(spec, "ResolvedMetadata", map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":           map[string]any{"type": "string"},
				"info_hash":      map[string]any{"type": "string"},
				"magnet_uri":     map[string]any{"type": "string"},
				"total_size":     map[string]any{"type": "integer", "format": "int64"},
				"peers":          map[string]any{"type": "integer", "format": "int32"},
				"formatted_size": map[string]any{"type": "string", "example": "3.00 GB"},
				"files": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": "#/components/schemas/TorrentFile"},
				},
			},
		})

		path := prefix + "/info"
		swaggerkit.AddPath(spec, path, "post", map[string]any{
			"tags":        []any{"torrents"},
			"summary":     "Resolve torrent metadata from a magnet link",
			"operationId": "resolveInfo",
			"requestBody": map[string]any{
				"required": true,
				"content": map[string]any{
					"application/json": map[string]any{
						"schema": map[string]any{"$ref": "#/components/schemas/ResolveInput"},
					},
				},
			},
			"responses": resolveResponses(),
		})
		swaggerkit.AddPath(spec, path, "get", map[string]any{
			"tags":        []any{"torrents"},
			"summary":     "Resolve torrent metadata from a magnet query parameter",
			"operationId": "resolveInfoQuery",
			"parameters": []any{
				map[string]any{"name": "magnet", "in": "query", "required": true, "schema": map[string]any{"type": "string"}},
				map[string]any{"name": "timeout_ms", "in": "query", "schema": map[string]any{"type": "integer", "minimum": 1}},
			},
			"responses": resolveResponses(),
		})
	}
}

func resolveResponses() map[string]any {
	errRef := func(desc string) map[string]any {
		return map[string]any{
			"description": desc,
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
				},
			},
		}
	}
	return map[string]any{
		"200": map[string]any{
			"description": "ok",
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": "#/components/schemas/ResolvedMetadata"},
				},
			},
		},
		"400": errRef("missing magnet, malformed body, or timeout_ms above the configured maximum"),
		"502": errRef("swarm reported a failure"),
		"503": errRef("caller went away before metadata arrived"),
		"504": errRef("metadata did not arrive in time"),
	}
}
