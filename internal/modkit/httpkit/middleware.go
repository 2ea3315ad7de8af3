package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"policyxray/internal/platform/net/middleware"
)

// DefaultTimeout bounds a request when StackOptions.Timeout is unset
const DefaultTimeout = 30 * time.Second

// StackOptions tunes CommonStack
type StackOptions struct {
	CORS    middleware.CORSOptions
	Timeout time.Duration
	// Slow is the access log warn threshold
	Slow time.Duration
}

// CommonStack is the middleware chain in front of every versioned route
func CommonStack(opts ...StackOptions) []func(http.Handler) http.Handler {
	var o StackOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(o.Slow),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(o.CORS),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
	}
}
