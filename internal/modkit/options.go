package modkit

import (
	"net/http"

	"policyxray/internal/modkit/httpkit"
)

// Option overrides a module default
type Option func(*settings)

type settings struct {
	name   string
	prefix string
	mw     []func(http.Handler) http.Handler
	extra  []func(httpkit.Router)
}

// WithName renames a module
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithPrefix mounts a module under another prefix
func WithPrefix(prefix string) Option {
	return func(s *settings) { s.prefix = prefix }
}

// WithMiddlewares appends module scoped middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(s *settings) { s.mw = append(s.mw, mw...) }
}

// WithRoutes registers extra endpoints after the module's own
func WithRoutes(fn func(httpkit.Router)) Option {
	return func(s *settings) {
		if fn != nil {
			s.extra = append(s.extra, fn)
		}
	}
}
