package http

import (
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "policyxray/internal/platform/errors"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func serve(h stdhttp.Handler, method, path, body string) (*httptest.ResponseRecorder, Envelope) {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, rd))
	var env Envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestAdaptChi_RouteAndMiddlewareScope(t *testing.T) {
	r := AdaptChi(chi.NewRouter())
	r.Route("/analyze", func(sub Router) {
		sub.Use(func(next stdhttp.Handler) stdhttp.Handler {
			return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
				w.Header().Set("X-Scope", "analyze")
				next.ServeHTTP(w, req)
			})
		})
		sub.Post("/", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.WriteHeader(stdhttp.StatusAccepted) })
	})
	r.Get("/meta", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { _, _ = io.WriteString(w, "meta") })
	r.Handle("/raw", stdhttp.NotFoundHandler())

	rec, _ := serve(r.Mux(), stdhttp.MethodPost, "/analyze", "")
	if rec.Code != stdhttp.StatusAccepted || rec.Header().Get("X-Scope") != "analyze" {
		t.Fatalf("analyze: %d %v", rec.Code, rec.Header())
	}
	rec, _ = serve(r.Mux(), stdhttp.MethodGet, "/meta", "")
	if rec.Body.String() != "meta" || rec.Header().Get("X-Scope") != "" {
		t.Fatalf("meta: %q %v", rec.Body.String(), rec.Header())
	}
	rec, _ = serve(r.Mux(), stdhttp.MethodGet, "/analyze", "")
	if rec.Code != stdhttp.StatusMethodNotAllowed {
		t.Fatalf("GET analyze = %d", rec.Code)
	}
	if rec, _ = serve(r.Mux(), stdhttp.MethodGet, "/raw", ""); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("raw = %d", rec.Code)
	}
}

func TestHandle_Envelopes(t *testing.T) {
	cases := []struct {
		name string
		resp Response
		want int
		code perr.ErrorCode
	}{
		{"ok", OK(map[string]float64{"score": 21.4}), stdhttp.StatusOK, 0},
		{"zero status", Response{Body: "x"}, stdhttp.StatusOK, 0},
		{"validation", Error(perr.New(perr.ErrorCodeValidation, "policy text too short")), stdhttp.StatusBadRequest, perr.ErrorCodeValidation},
		{"unavailable", Error(perr.Unavailablef("model backend not configured")), stdhttp.StatusServiceUnavailable, perr.ErrorCodeUnavailable},
		{"plain", Error(errors.New("boom")), stdhttp.StatusInternalServerError, perr.ErrorCodeUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := chimw.RequestID(stdhttp.HandlerFunc(Handle(func(*stdhttp.Request) Response { return c.resp })))
			rec, env := serve(h, stdhttp.MethodGet, "/", "")
			if rec.Code != c.want || env.StatusCode != c.want || env.Code != c.code {
				t.Fatalf("rec=%d env=%+v", rec.Code, env)
			}
			if env.RequestID == "" {
				t.Fatal("request id missing from envelope")
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Fatalf("content type %q", ct)
			}
		})
	}
}

func TestJSONHandler_BindsAndValidates(t *testing.T) {
	type in struct {
		Text string `json:"text" validate:"required,notblank"`
	}
	h := JSONHandler(func(_ *stdhttp.Request, v in) (any, error) {
		if v.Text == "fail" {
			return nil, perr.Upstreamf("model returned garbage")
		}
		return strings.ToUpper(v.Text), nil
	})

	rec, env := serve(stdhttp.HandlerFunc(h), stdhttp.MethodPost, "/", `{"text":"gps"}`)
	if rec.Code != stdhttp.StatusOK || env.Data != "GPS" {
		t.Fatalf("ok: %d %+v", rec.Code, env)
	}
	if rec, env = serve(stdhttp.HandlerFunc(h), stdhttp.MethodPost, "/", `{"text":" "}`); env.Code != perr.ErrorCodeValidation {
		t.Fatalf("blank: %d %+v", rec.Code, env)
	}
	if rec, env = serve(stdhttp.HandlerFunc(h), stdhttp.MethodPost, "/", `{"text":"fail"}`); rec.Code != stdhttp.StatusBadGateway {
		t.Fatalf("upstream: %d %+v", rec.Code, env)
	}
}

func TestMountProfiler(t *testing.T) {
	r := AdaptChi(chi.NewRouter())
	MountProfiler(r, "/debug", true)
	if rec, _ := serve(r.Mux(), stdhttp.MethodGet, "/debug/pprof/cmdline", ""); rec.Code != stdhttp.StatusOK {
		t.Fatalf("pprof = %d", rec.Code)
	}

	off := AdaptChi(chi.NewRouter())
	MountProfiler(off, "/debug", false)
	if rec, _ := serve(off.Mux(), stdhttp.MethodGet, "/debug/pprof/cmdline", ""); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("disabled pprof = %d", rec.Code)
	}
}
