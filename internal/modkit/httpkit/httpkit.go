// Package httpkit is the routing vocabulary modules use instead of the platform http package
package httpkit

import (
	"net/http"
	"strings"

	phttp "policyxray/internal/platform/net/http"
)

type (
	// Envelope is the response body shape
	Envelope = phttp.Envelope
	// Router is the platform router seam
	Router = phttp.Router
)

// Get mounts a no-body handler whose result is enveloped
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, phttp.Handle(func(req *http.Request) phttp.Response {
		out, err := h(req)
		if err != nil {
			return phttp.Error(err)
		}
		return phttp.OK(out)
	}))
}

// PostJSON mounts a handler whose body is decoded into T and validated first
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}

// MountUnder mounts routes under prefix with scoped middlewares
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}

// MountAPIV1 mounts routes under /api/v1
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	MountAPI(r, "v1", mw, mount)
}

// MountAPI mounts routes under /api/{version}
func MountAPI(r Router, version string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	MountUnder(r, "/api/"+strings.Trim(version, "/"), mw, mount)
}
