package domain

import (
	"context"

	"policyxray/internal/core/riskscan"
)

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	// Analyze runs the regex path and, when asked and possible, enhances the matches
	Analyze(ctx context.Context, in AnalyzeInput) (riskscan.Report, error)
	// Classify runs the model path
	Classify(ctx context.Context, in ModelInput) (ModelOutput, error)
}
