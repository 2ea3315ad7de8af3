// Package http provides http transport for analyze
package http

import (
	stdhttp "net/http"

	"policyxray/internal/modkit/httpkit"
	"policyxray/internal/services/api/analyze/domain"
)

// Register mounts analyze endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	// regex path, optionally enhanced
	httpkit.PostJSON[domain.AnalyzeInput](r, "/", h.analyze)

	// chunked model path
	httpkit.PostJSON[domain.ModelInput](r, "/model", h.model)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /analyze Analyze analyzePolicy
// @Summary Score a privacy policy against the risk categories
// @Tags Analyze
// @Accept json
// @Produce json
// @Param payload body domain.AnalyzeInput true "Policy"
// @Success 200 {object} map[string]any "category results keyed by name plus overall"
// @Router /analyze [post]
func (h *handlers) analyze(r *stdhttp.Request, in domain.AnalyzeInput) (any, error) {
	return h.svc.Analyze(r.Context(), in)
}

// swagger:route POST /analyze/model Analyze analyzeModel
// @Summary Classify relevant clauses with the configured model backend
// @Tags Analyze
// @Accept json
// @Produce json
// @Param payload body domain.ModelInput true "Text"
// @Success 200 {object} domain.ModelOutput "ok"
// @Router /analyze/model [post]
func (h *handlers) model(r *stdhttp.Request, in domain.ModelInput) (any, error) {
	return h.svc.Classify(r.Context(), in)
}
