package module

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"policyxray/internal/adapters/llm"
	"policyxray/internal/core/rulepack"
	modkit "policyxray/internal/modkit"
	"policyxray/internal/modkit/module"
	phttp "policyxray/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type stubBackend struct{}

func (stubBackend) Name() string                                    { return "stub" }
func (stubBackend) Complete(context.Context, string) (string, error) { return "", nil }
func (stubBackend) Ping(context.Context) error                      { return nil }

var _ llm.Backend = stubBackend{}

func get(t *testing.T, h http.Handler, path string, into any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	if into != nil {
		if err := json.Unmarshal(env.Data, into); err != nil {
			t.Fatalf("data %s: %v", path, err)
		}
	}
	return rec.Code
}

func TestModule_ServesMeta(t *testing.T) {
	module.Reset()
	t.Cleanup(module.Reset)
	module.Register("analyze", struct{}{})

	p, err := rulepack.Load()
	if err != nil {
		t.Fatalf("rulepack.Load: %v", err)
	}
	m := New(modkit.Deps{Pack: p, Model: stubBackend{}})
	if m.Name() != "meta" || m.Prefix() != "/meta" || m.Ports() != nil {
		t.Fatalf("module = %s %s %v", m.Name(), m.Prefix(), m.Ports())
	}

	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)

	var svc struct {
		Name    string   `json:"name"`
		Model   string   `json:"model"`
		Modules []string `json:"modules"`
	}
	if code := get(t, r.Mux(), "/meta/service", &svc); code != http.StatusOK {
		t.Fatalf("service = %d", code)
	}
	if svc.Name == "" || svc.Model != "stub" || len(svc.Modules) != 1 || svc.Modules[0] != "analyze" {
		t.Fatalf("service = %+v", svc)
	}

	var ready struct {
		Status string `json:"status"`
	}
	if code := get(t, r.Mux(), "/meta/ready", &ready); code != http.StatusOK || ready.Status != "ok" {
		t.Fatalf("ready = %d %+v", code, ready)
	}
}

func TestModule_PrefixOverride(t *testing.T) {
	m := New(modkit.Deps{}, modkit.WithPrefix("/about"))
	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)
	if code := get(t, r.Mux(), "/about/health", nil); code != http.StatusOK {
		t.Fatalf("health = %d", code)
	}
}
