// Package module wires analyze into the API using modkit
package module

import (
	"time"

	"policyxray/internal/core/classify"
	"policyxray/internal/core/enhance"
	modkit "policyxray/internal/modkit"
	"policyxray/internal/modkit/httpkit"
	"policyxray/internal/services/api/analyze/domain"
	analyzehttp "policyxray/internal/services/api/analyze/http"
	analyzesvc "policyxray/internal/services/api/analyze/service"
)

// Module serves /analyze and publishes domain.ServicePort
type Module struct {
	modkit.Base
	svc *analyzesvc.Svc
}

// New constructs the analyze module. Tuning is read from deps.Cfg
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	var backends analyzesvc.Backends
	if deps.HasModel() {
		backends.Model = deps.Model
	}
	if deps.HasEnhancer() {
		backends.Enhance = deps.Enhance
	}
	cfg := ConfigFrom(deps)
	svc := analyzesvc.New(deps.Pack, backends, deps.Metrics, cfg)

	deps.Logger("analyze").Debug().
		Bool("model", svc.CanClassify()).
		Bool("enhance", svc.CanEnhance()).
		Int("max_chunks", cfg.Classify.MaxChunks).
		Int("enhance_cap", cfg.EnhanceCap).
		Msg("analyze module ready")

	return &Module{
		Base: modkit.NewBase("analyze", "/analyze", func(r httpkit.Router) { analyzehttp.Register(r, svc) }, opts...),
		svc:  svc,
	}
}

// ConfigFrom reads the XRAY_MODEL_* and XRAY_ENHANCE_* tuning knobs
func ConfigFrom(deps modkit.Deps) analyzesvc.Config {
	mc := deps.Cfg.Prefix("XRAY_MODEL_")
	ec := deps.Cfg.Prefix("XRAY_ENHANCE_")
	return analyzesvc.Config{
		Classify: classify.Config{
			MaxChunks:     mc.MayInt("MAX_CHUNKS", classify.MaxChunks),
			Concurrency:   mc.MayInt("CONCURRENCY", classify.MaxConcurrency),
			MaxChunkChars: mc.MayInt("CHUNK_CHARS", 0),
			CallTimeout:   mc.MayDuration("TIMEOUT", 120*time.Second),
		},
		EnhanceCap:     ec.MayInt("CAP", enhance.DefaultCap),
		EnhanceTimeout: ec.MayDuration("TIMEOUT", 30*time.Second),
	}
}

// Budget is the analyze service's worst case backend time
func (m *Module) Budget() time.Duration { return m.svc.Budget() }

// Ports implements modkit.Module
func (m *Module) Ports() any { return domain.ServicePort(m.svc) }
