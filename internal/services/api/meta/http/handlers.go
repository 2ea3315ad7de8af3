// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"policyxray/internal/core/rulepack"
	"policyxray/internal/core/version"
	"policyxray/internal/modkit/httpkit"
)

// readyTimeout bounds the backend ping done by /ready
const readyTimeout = 3 * time.Second

// Pinger is satisfied by model backends that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Pack        *rulepack.Pack
	Model       Pinger // nil when no backend is configured
	ModelName   string
	Modules     func() []string
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/rulepack", h.rulepack)
}

// HealthResponse is the health payload
// swagger:model
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"policyxray-api"`
	Started string `json:"started"  example:"2026-10-01T13:00:00Z"`
	Now     string `json:"now"      example:"2026-10-01T13:05:00Z"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"model"`
	Status string `json:"status" example:"ok"` // ok fail skipped
	Error  string `json:"error,omitempty" example:"ollama: dial tcp 127.0.0.1:11434: connect: connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-10-01T13:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string   `json:"name"    example:"policyxray-api"`
	Started string   `json:"started" example:"2026-10-01T13:00:00Z"`
	Uptime  int64    `json:"uptime"  example:"300"`
	Model   string   `json:"model,omitempty" example:"ollama"`
	Modules []string `json:"modules" example:"analyze"`
}

// RulepackCategory is one category as loaded
type RulepackCategory struct {
	Name       string   `json:"name"        example:"data_selling"`
	Weight     int      `json:"weight"      example:"25"`
	PatternIDs []string `json:"pattern_ids"`
}

// RulepackResponse describes the loaded category configuration
type RulepackResponse struct {
	Version        int                `json:"version"          example:"1"`
	MinClauseChars int                `json:"min_clause_chars" example:"50"`
	KeywordCount   int                `json:"keyword_count"    example:"22"`
	PatternCount   int                `json:"pattern_count"    example:"40"`
	Categories     []RulepackCategory `json:"categories"`
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 type HealthResponse ok
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness probe, pings the model backend when one is configured
// @Tags Meta
// @Produce json
// @Success 200 type ReadyResponse ok
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	pack := ReadyCheck{Name: "rulepack", Status: "ok"}
	if h.deps.Pack == nil {
		pack = ReadyCheck{Name: "rulepack", Status: "fail", Error: "no rule pack loaded"}
	}

	model := ReadyCheck{Name: "model", Status: "skipped"}
	if h.deps.Model != nil {
		if err := h.deps.Model.Ping(ctx); err != nil {
			model = ReadyCheck{Name: "model", Status: "fail", Error: err.Error()}
		} else {
			model.Status = "ok"
		}
	}

	// the regex path serves without a model, so a failed ping only degrades
	overall := "ok"
	if pack.Status == "fail" || model.Status == "fail" {
		overall = "degraded"
	}

	return ReadyResponse{
		Status: overall,
		Checks: []ReadyCheck{pack, model},
		Now:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 type version.BuildInfo ok
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// swagger:route GET /meta/service Meta metaService
// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 type ServiceResponse ok
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	uptime := time.Since(h.deps.StartedAt)
	mods := []string{}
	if h.deps.Modules != nil {
		mods = append(mods, h.deps.Modules()...)
	}
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(uptime / time.Second),
		Model:   h.deps.ModelName,
		Modules: mods,
	}, nil
}

// swagger:route GET /meta/rulepack Meta metaRulepack
// @Summary Loaded risk categories, weights and pattern ids
// @Tags Meta
// @Produce json
// @Success 200 type RulepackResponse ok
// @Router /meta/rulepack [get]
func (h *handlers) rulepack(_ *http.Request) (any, error) {
	p := h.deps.Pack
	if p == nil {
		return RulepackResponse{Categories: []RulepackCategory{}}, nil
	}
	out := RulepackResponse{
		Version:        p.Version,
		MinClauseChars: p.MinClauseChars,
		KeywordCount:   len(p.Keywords),
		PatternCount:   p.PatternCount(),
		Categories:     make([]RulepackCategory, 0, len(p.Categories)),
	}
	for _, c := range p.Categories {
		ids := make([]string, len(c.Patterns))
		for i, pt := range c.Patterns {
			ids[i] = pt.ID
		}
		out.Categories = append(out.Categories, RulepackCategory{Name: c.Name, Weight: c.Weight, PatternIDs: ids})
	}
	return out, nil
}
