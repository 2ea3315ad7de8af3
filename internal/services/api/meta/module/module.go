// Package module wires the meta endpoints (health, readiness, build and rule pack info)
package module

import (
	"time"

	"policyxray/internal/core/version"
	modkit "policyxray/internal/modkit"
	"policyxray/internal/modkit/httpkit"
	"policyxray/internal/modkit/module"

	metahttp "policyxray/internal/services/api/meta/http"
)

// Module serves /meta. It publishes no ports
type Module struct {
	modkit.Base
}

// New constructs the meta module. The start time is taken here
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	hd := metahttp.Deps{
		ServiceName: version.Info().Service,
		StartedAt:   time.Now(),
		Pack:        deps.Pack,
		Modules:     module.Names,
	}
	if deps.HasModel() {
		hd.Model = deps.Model
		hd.ModelName = deps.Model.Name()
	}
	return &Module{
		Base: modkit.NewBase("meta", "/meta", func(r httpkit.Router) { metahttp.Register(r, hd) }, opts...),
	}
}

// Ports implements modkit.Module
func (m *Module) Ports() any { return nil }
