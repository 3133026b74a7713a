// Package swaggerkit assembles the OpenAPI document from module docs and serves it with Swagger UI
package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"magnetinfo/internal/core/version"
	phttp "magnetinfo/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// SpecMutator documents a module's routes and schemas on the shared document
type SpecMutator func(map[string]any)

const errorRef = "#/components/schemas/ErrorResponse"

// Spec builds the document: skeleton, envelope schema, module docs, then default error answers
func Spec(docs ...SpecMutator) map[string]any {
	spec := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       "magnetinfo API",
			"description": "Resolves torrent metadata from magnet links within a bounded deadline",
			"version":     version.Info().Version,
		},
		"servers": []any{map[string]any{"url": "/api/v1"}},
		"paths":   map[string]any{},
	}
	AddSchema(spec, "ErrorResponse", map[string]any{
		"type":        "object",
		"description": "Error envelope",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer", "format": "int32"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "integer", "format": "int32"},
			"error":       map[string]any{"type": "string"},
			"field":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
			"retryable":   map[string]any{"type": "boolean"},
		},
		"required": []any{"status_code", "status"},
	})
	for _, d := range docs {
		if d != nil {
			d(spec)
		}
	}

	defaults := map[string]any{
		"400": errorAnswer("Bad Request", 400, 4, "magnet_link must not be blank"),
		"500": errorAnswer("Internal Server Error", 500, 1, "panic recovered"),
	}
	for _, node := range spec["paths"].(map[string]any) {
		for _, op := range node.(map[string]any) {
			op := op.(map[string]any)
			resps, ok := op["responses"].(map[string]any)
			if !ok {
				resps = map[string]any{}
				op["responses"] = resps
			}
			for code, answer := range defaults {
				if _, ok := resps[code]; !ok {
					resps[code] = answer
				}
			}
		}
	}
	return spec
}

func errorAnswer(desc string, status, code int, msg string) map[string]any {
	return map[string]any{
		"description": desc,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": errorRef},
				"example": map[string]any{
					"status_code": status,
					"status":      desc,
					"code":        code,
					"error":       msg,
					"request_id":  "579f33bf50b1/abc-000001",
				},
			},
		},
	}
}

// AddPath documents one operation, method is lower cased
func AddPath(spec map[string]any, path, method string, op map[string]any) {
	paths := spec["paths"].(map[string]any)
	node, ok := paths[path].(map[string]any)
	if !ok {
		node = map[string]any{}
		paths[path] = node
	}
	node[strings.ToLower(method)] = op
}

// AddSchema registers a component schema under name
func AddSchema(spec map[string]any, name string, schema map[string]any) {
	comps, ok := spec["components"].(map[string]any)
	if !ok {
		comps = map[string]any{"schemas": map[string]any{}}
		spec["components"] = comps
	}
	comps["schemas"].(map[string]any)[name] = schema
}

// Mount serves Swagger UI under /api/docs/ and the document at /api/docs/doc.json
func Mount(r phttp.Router, enabled bool, docs ...SpecMutator) {
	if !enabled {
		return
	}
	body, _ := json.Marshal(Spec(docs...))
	r.Get("/api/docs", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(body)
	})
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}
