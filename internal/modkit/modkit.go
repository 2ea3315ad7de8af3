// Package modkit wires API modules: shared deps, build options and a mounting base
package modkit

import (
	"net/http"

	"policyxray/internal/modkit/httpkit"
	str "policyxray/internal/platform/strings"
)

// Module is what the API composes. Ports is the module's cross module surface, or nil
type Module interface {
	MountRoutes(r httpkit.Router)
	Ports() any
	Name() string
	Prefix() string
}

// Builder is the constructor shape modules expose
type Builder func(Deps, ...Option) Module

// Base implements the routing half of Module. Modules embed it and add Ports
type Base struct {
	name   string
	prefix string
	mw     []func(http.Handler) http.Handler
	routes []func(httpkit.Router)
}

// NewBase applies opts over the module defaults. routes registers the module's own endpoints
func NewBase(name, prefix string, routes func(httpkit.Router), opts ...Option) Base {
	s := settings{name: name, prefix: prefix}
	for _, o := range opts {
		o(&s)
	}
	b := Base{
		name:   str.MustString(s.name, "module name"),
		prefix: str.MustPrefix(s.prefix),
		mw:     append([]func(http.Handler) http.Handler(nil), s.mw...),
	}
	if routes != nil {
		b.routes = append(b.routes, routes)
	}
	b.routes = append(b.routes, s.extra...)
	return b
}

// Name returns the module name used in logs and the ports registry
func (b Base) Name() string { return b.name }

// Prefix returns the mount prefix
func (b Base) Prefix() string { return b.prefix }

// Middlewares returns the module scoped middlewares in order
func (b Base) Middlewares() []func(http.Handler) http.Handler { return b.mw }

// MountRoutes mounts every registered route under Prefix with the module middlewares
func (b Base) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, b.prefix, b.mw, func(sub httpkit.Router) {
		for _, fn := range b.routes {
			fn(sub)
		}
	})
}
