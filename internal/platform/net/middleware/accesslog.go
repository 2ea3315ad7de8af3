package middleware

import (
	"net/http"
	"time"

	"policyxray/internal/platform/logger"
	pnet "policyxray/internal/platform/net"
)

// DefaultSlow is where a request starts logging at warn level
const DefaultSlow = 10 * time.Second

// statusRecorder keeps what the access log reports
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// AccessLog writes one zerolog line per request. slow <= 0 uses DefaultSlow
func AccessLog(slow time.Duration) Middleware {
	if slow <= 0 {
		slow = DefaultSlow
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			took := time.Since(start)

			ctx := logger.WithRequest(r.Context(), pnet.RequestID(r.Context()), "")
			log := logger.C(ctx)
			evt := log.Info()
			switch {
			case rec.status >= http.StatusInternalServerError:
				evt = log.Error()
			case took >= slow:
				evt = log.Warn()
			}
			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Int("bytes", rec.bytes).
				Dur("took", took).
				Msg("request")
		})
	}
}
