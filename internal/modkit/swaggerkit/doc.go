package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"readnfc/internal/core/version"
)

// Operation documents one mounted route
type Operation struct {
	Method  string
	Path    string
	Summary string
	Tag     string
	// Body names a components schema for the request body, empty for none
	Body string
	// Response names the 200 body schema; empty means the Envelope
	Response string
	// Server overrides the document server for routes mounted outside base
	Server string
}

// Spec builds an OpenAPI 3 document for ops served under base
func Spec(base string, ops ...Operation) map[string]any {
	info := version.Info()
	paths := map[string]any{}
	for _, op := range ops {
		node, ok := paths[op.Path].(map[string]any)
		if !ok {
			node = map[string]any{}
			paths[op.Path] = node
		}
		if op.Server != "" {
			node["servers"] = []any{map[string]any{"url": op.Server}}
		}
		resp := op.Response
		if resp == "" {
			resp = "Envelope"
		}
		entry := map[string]any{
			"summary": op.Summary,
			"responses": map[string]any{
				"200": map[string]any{
					"description": "OK",
					"content": map[string]any{
						"application/json": map[string]any{
							"schema": map[string]any{"$ref": "#/components/schemas/" + resp},
						},
					},
				},
			},
		}
		if op.Tag != "" {
			entry["tags"] = []any{op.Tag}
		}
		if op.Body != "" {
			entry["requestBody"] = map[string]any{
				"content": map[string]any{
					"application/json": map[string]any{
						"schema": map[string]any{"$ref": "#/components/schemas/" + op.Body},
					},
				},
			}
		}
		node[strings.ToLower(op.Method)] = entry
	}

	spec := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   info.Service,
			"version": info.Version,
		},
		"servers": []any{map[string]any{"url": base}},
		"paths":   paths,
		"components": map[string]any{
			"schemas": map[string]any{
				"Envelope": envelopeSchema(),
				"CardUID": map[string]any{
					"type":       "object",
					"properties": map[string]any{"cardUID": map[string]any{"type": "string"}},
				},
				"ReadRequest": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"reader":     map[string]any{"type": "string", "maxLength": 128},
						"timeout_ms": map[string]any{"type": "integer", "minimum": 1, "maximum": 30000},
					},
				},
			},
		},
	}
	addDefaultError(spec)
	return spec
}

func envelopeSchema() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "Standard response envelope",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer", "format": "int32"},
			"status":      map[string]any{"type": "string"},
			"code": map[string]any{"type": "string", "enum": []any{
				"unknown", "panic", "unavailable", "conflict", "invalid_argument", "validation",
				"json", "not_found", "device", "card", "timeout",
			}},
			"error":      map[string]any{"type": "string"},
			"field":      map[string]any{"type": "string"},
			"request_id": map[string]any{"type": "string"},
			"data":       map[string]any{},
		},
		"required": []any{"status_code", "status"},
	}
}

// addDefaultError walks every operation and injects a 500 response if absent
func addDefaultError(spec map[string]any) {
	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		return
	}
	errResp := map[string]any{
		"description": "Internal Server Error",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/Envelope"},
				"example": map[string]any{
					"status_code": 500,
					"status":      "Internal Server Error",
					"code":        "panic",
					"error":       "internal error",
					"request_id":  "579f33bf50b1/abc-000001",
				},
			},
		},
	}
	for _, p := range paths {
		node, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, opAny := range node {
			op, ok := opAny.(map[string]any)
			if !ok {
				continue
			}
			responses, ok := op["responses"].(map[string]any)
			if !ok {
				responses = map[string]any{}
				op["responses"] = responses
			}
			if _, exists := responses["500"]; !exists {
				responses["500"] = errResp
			}
		}
	}
}

func serveDocJSON(spec map[string]any) http.HandlerFunc {
	raw, err := json.Marshal(spec)
	return func(w http.ResponseWriter, _ *http.Request) {
		if err != nil {
			http.Error(w, "spec encode error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(raw)
	}
}
