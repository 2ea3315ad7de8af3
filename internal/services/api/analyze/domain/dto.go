// Package domain holds DTOs for analyze http and service contracts
package domain

import "policyxray/internal/core/verdict"

// MinPolicyChars is the shortest policy the regex path accepts
const MinPolicyChars = 100

// AnalyzeInput is the regex path request
type AnalyzeInput struct {
	Policy string `json:"policy" validate:"required,min=100" example:"We may share your personal information with advertising partners..."`
	// UseAI enhances matches when an enhancement backend is configured
	UseAI bool `json:"use_ai,omitempty" example:"false"`
}

// ModelInput is the model path request
type ModelInput struct {
	Text string `json:"text" validate:"required,notblank" example:"We retain location data for 30 days."`
}

// ModelOutput wraps the aggregated verdict
type ModelOutput struct {
	Analysis verdict.Aggregate `json:"analysis"`
}
