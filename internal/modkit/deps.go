package modkit

import (
	"policyxray/internal/adapters/llm"
	"policyxray/internal/core/rulepack"
	"policyxray/internal/platform/config"
	"policyxray/internal/platform/logger"
	"policyxray/internal/platform/metrics"
)

// Deps is what the API hands every module. Only Pack is required
type Deps struct {
	Log     *logger.Logger
	Cfg     config.Conf
	Pack    *rulepack.Pack
	Model   llm.Backend // nil when no backend is configured
	Enhance llm.Backend // nil disables match enhancement
	Metrics *metrics.Metrics
}

// Logger returns Log, or the named process logger when Log is unset
func (d Deps) Logger(component string) *logger.Logger {
	if d.Log != nil {
		l := d.Log.With().Str("component", component).Logger()
		return &l
	}
	return logger.Named(component)
}

// HasModel reports whether a model backend is wired
func (d Deps) HasModel() bool { return d.Model != nil }

// HasEnhancer reports whether an enhancement backend is wired
func (d Deps) HasEnhancer() bool { return d.Enhance != nil }
