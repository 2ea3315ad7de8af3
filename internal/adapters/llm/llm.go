// Package llm selects and builds the configured model backend
package llm

import (
	"context"
	"strings"
	"time"

	"policyxray/internal/adapters/llm/backboard"
	"policyxray/internal/adapters/llm/ollama"
	"policyxray/internal/adapters/llm/openaicompat"
	perr "policyxray/internal/platform/errors"
)

// Backend kinds accepted by New
const (
	KindNone      = "none"
	KindOllama    = "ollama"
	KindOpenAI    = "openai"
	KindBackboard = "backboard"
)

// Kinds lists every accepted backend kind
var Kinds = []string{KindNone, KindOllama, KindOpenAI, KindBackboard}

// Backend is a model the engine can send prompts to
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
	Ping(ctx context.Context) error
}

// Options is the union of backend settings; each kind reads what it needs
type Options struct {
	Kind       string
	BaseURL    string
	Model      string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// New builds the backend for o.Kind. KindNone returns (nil, nil)
func New(o Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(o.Kind)) {
	case "", KindNone:
		return nil, nil
	case KindOllama:
		return ollama.NewClient(ollama.Options{
			BaseURL:    o.BaseURL,
			Model:      o.Model,
			Timeout:    o.Timeout,
			MaxRetries: o.MaxRetries,
		}), nil
	case KindOpenAI:
		return openaicompat.NewClient(openaicompat.Options{
			BaseURL:    o.BaseURL,
			APIKey:     o.APIKey,
			Model:      o.Model,
			Timeout:    o.Timeout,
			MaxRetries: o.MaxRetries,
		}), nil
	case KindBackboard:
		s := backboard.NewSession(backboard.Options{BaseURL: o.BaseURL, APIKey: o.APIKey})
		if !s.IsConfigured() {
			return nil, perr.InvalidArgf("llm: backboard selected but BACKBOARD_API_KEY is missing or a placeholder")
		}
		return s, nil
	default:
		return nil, perr.InvalidArgf("llm: unknown backend %q (want one of %s)", o.Kind, strings.Join(Kinds, ", "))
	}
}
