package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"policyxray/internal/core/rulepack"
	"policyxray/internal/modkit"
	"policyxray/internal/modkit/httpkit"
	"policyxray/internal/modkit/module"
	"policyxray/internal/platform/config"
	"policyxray/internal/platform/metrics"
	phttp "policyxray/internal/platform/net/http"
	analyzedomain "policyxray/internal/services/api/analyze/domain"

	"github.com/go-chi/chi/v5"
)

func newAPI(t *testing.T, opt Options) http.Handler {
	t.Helper()
	module.Reset()
	t.Cleanup(module.Reset)

	p, err := rulepack.Load()
	if err != nil {
		t.Fatalf("rulepack.Load: %v", err)
	}
	opt.Config = config.New()
	opt.Pack = p

	r := phttp.AdaptChi(chi.NewRouter())
	Mount(r, opt)
	return r.Mux()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMount_Routes(t *testing.T) {
	h := newAPI(t, Options{Metrics: metrics.New(), EnableMetrics: true})

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/api/v1/meta/health", "", http.StatusOK},
		{http.MethodGet, "/api/v1/meta/rulepack", "", http.StatusOK},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodPost, "/api/v1/analyze", `{"policy":"short"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/v1/analyze/model", `{"text":"we use your camera"}`, http.StatusServiceUnavailable},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/v1/nope", "", http.StatusNotFound},
	}
	for _, c := range cases {
		rec := do(h, c.method, c.path, c.body)
		if rec.Code != c.want {
			t.Fatalf("%s %s = %d want %d body=%s", c.method, c.path, rec.Code, c.want, rec.Body.String())
		}
	}
}

func TestMount_MetricsDisabled(t *testing.T) {
	h := newAPI(t, Options{Metrics: metrics.New()})
	if rec := do(h, http.MethodGet, "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("/metrics = %d", rec.Code)
	}
}

func TestMount_RegistersPorts(t *testing.T) {
	_ = newAPI(t, Options{})
	if _, ok := module.PortsAs[analyzedomain.ServicePort]("analyze"); !ok {
		t.Fatal("analyze ports not registered")
	}
}

func TestMount_MetricsCountAnalyses(t *testing.T) {
	m := metrics.New()
	h := newAPI(t, Options{Metrics: m, EnableMetrics: true})

	policy := strings.Repeat("We sell your personal information to partners for marketing. ", 3)
	if rec := do(h, http.MethodPost, "/api/v1/analyze", `{"policy":"`+policy+`"}`); rec.Code != http.StatusOK {
		t.Fatalf("analyze = %d body=%s", rec.Code, rec.Body.String())
	}
	rec := do(h, http.MethodGet, "/metrics", "")
	if !strings.Contains(rec.Body.String(), `policyxray_analyses_total{path="regex"} 1`) {
		t.Fatalf("metrics missing analysis count:\n%s", rec.Body.String())
	}
}

// slowModel answers every chunk with a location verdict after delay
type slowModel struct{ delay time.Duration }

func (m slowModel) Name() string               { return "slow" }
func (m slowModel) Ping(context.Context) error { return nil }
func (m slowModel) Complete(ctx context.Context, _ string) (string, error) {
	select {
	case <-time.After(m.delay):
		return `{"mentions_location_tracking": true, "risk_reason": "gps"}`, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestMount_ModelPathOutlivesStackTimeout(t *testing.T) {
	t.Setenv("XRAY_MODEL_TIMEOUT", "2s")
	h := newAPI(t, Options{
		Model: slowModel{delay: 150 * time.Millisecond},
		Stack: httpkit.StackOptions{Timeout: 50 * time.Millisecond},
	})

	rec := do(h, http.MethodPost, "/api/v1/analyze/model", `{"text":"We track your GPS location at all times."}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("model = %d body=%s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data struct {
			Analysis map[string]any `json:"analysis"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v body=%s", err, rec.Body.String())
	}
	if env.Data.Analysis["mentions_location_tracking"] != true {
		t.Fatalf("analysis = %+v", env.Data.Analysis)
	}
}

type budgeted struct {
	modkit.Module
	b time.Duration
}

func (m budgeted) Budget() time.Duration { return m.b }

func TestRequestTimeout(t *testing.T) {
	cases := []struct {
		name string
		base time.Duration
		mods []modkit.Module
		want time.Duration
	}{
		{"no budgets", time.Minute, []modkit.Module{nil}, time.Minute},
		{"zero budget", time.Minute, []modkit.Module{budgeted{}}, time.Minute},
		{"budget below base", 20 * time.Minute, []modkit.Module{budgeted{b: 10 * time.Minute}}, 20 * time.Minute},
		{"ten chunks two at a time", 5 * time.Minute, []modkit.Module{budgeted{b: 600 * time.Second}}, 600*time.Second + budgetSlack},
		{"unset base", 0, []modkit.Module{budgeted{b: time.Second}, budgeted{b: time.Minute}}, time.Minute + budgetSlack},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := requestTimeout(c.base, c.mods); got != c.want {
				t.Fatalf("requestTimeout = %v want %v", got, c.want)
			}
		})
	}
}
