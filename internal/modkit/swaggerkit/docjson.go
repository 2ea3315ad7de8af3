package swaggerkit

import (
	"encoding/json"
	"net/http"

	"policyxray/internal/core/version"
)

// SpecMutator lets modules tweak the parsed spec before it is served
type SpecMutator func(map[string]any)

var mutators []SpecMutator

// docReader is a seam so tests can inject invalid JSON
var docReader = baseDoc

// Register adds a spec mutator
func Register(m SpecMutator) {
	if m != nil {
		mutators = append(mutators, m)
	}
}

// baseDoc is the hand-maintained OpenAPI document for the v1 API
func baseDoc() string {
	return `{
  "openapi": "3.0.3",
  "info": {"title": "PolicyX-Ray API", "version": "0.1.0",
    "description": "Privacy policy risk scoring: regex categories and model clause classification"},
  "paths": {
    "/analyze": {"post": {"tags": ["Analyze"], "summary": "Score a privacy policy against the risk categories",
      "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/AnalyzeInput"}}}},
      "responses": {"200": {"description": "category results keyed by name plus overall"}}}},
    "/analyze/model": {"post": {"tags": ["Analyze"], "summary": "Classify relevant clauses with the model backend",
      "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ModelInput"}}}},
      "responses": {"200": {"description": "merged verdict under analysis"}, "503": {"description": "no model backend configured"}}}},
    "/meta/health": {"get": {"tags": ["Meta"], "summary": "Health check", "responses": {"200": {"description": "ok"}}}},
    "/meta/ready": {"get": {"tags": ["Meta"], "summary": "Readiness with model ping", "responses": {"200": {"description": "ok"}}}},
    "/meta/version": {"get": {"tags": ["Meta"], "summary": "Build info", "responses": {"200": {"description": "ok"}}}},
    "/meta/service": {"get": {"tags": ["Meta"], "summary": "Service info and uptime", "responses": {"200": {"description": "ok"}}}},
    "/meta/rulepack": {"get": {"tags": ["Meta"], "summary": "Loaded categories, weights and pattern ids", "responses": {"200": {"description": "ok"}}}}
  },
  "components": {"schemas": {
    "AnalyzeInput": {"type": "object", "required": ["policy"], "properties": {
      "policy": {"type": "string", "minLength": 100}, "use_ai": {"type": "boolean"}}},
    "ModelInput": {"type": "object", "required": ["text"], "properties": {"text": {"type": "string"}}}
  }}
}`
}

// serveDocJSON serves the spec after applying build info and module mutators
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}

		ensureServers(spec, "/api/v1")
		if info, ok := spec["info"].(map[string]any); ok {
			info["version"] = version.Info().Version
		}
		ensureErrorResponseDefinition(spec)

		for _, m := range mutators {
			m(spec)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// ensureServers sets a servers array when the document has none
func ensureServers(spec map[string]any, url string) {
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": url}}
	}
}

// schemas returns components.schemas, creating both levels when missing
func schemas(spec map[string]any) map[string]any {
	comps, ok := spec["components"].(map[string]any)
	if !ok {
		comps = map[string]any{}
		spec["components"] = comps
	}
	s, ok := comps["schemas"].(map[string]any)
	if !ok {
		s = map[string]any{}
		comps["schemas"] = s
	}
	return s
}

// ensureErrorResponseDefinition adds the error envelope schema if missing
func ensureErrorResponseDefinition(spec map[string]any) {
	s := schemas(spec)
	if _, ok := s["ErrorResponse"]; ok {
		return
	}
	s["ErrorResponse"] = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "integer", "description": "platform error code"},
			"error":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
		},
	}
}
