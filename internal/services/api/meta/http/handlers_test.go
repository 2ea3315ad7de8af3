package http

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"policyxray/internal/core/rulepack"
	phttp "policyxray/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type pingFn func(stdctx.Context) error

func (f pingFn) Ping(ctx stdctx.Context) error { return f(ctx) }

func serve(t *testing.T, d Deps, path string, out any) int {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	Register(r, d)

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, rec.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return rec.Code
}

func loadPack(t *testing.T) *rulepack.Pack {
	t.Helper()
	p, err := rulepack.Load()
	if err != nil {
		t.Fatalf("rulepack.Load: %v", err)
	}
	return p
}

func TestHealth(t *testing.T) {
	var got HealthResponse
	code := serve(t, Deps{ServiceName: "policyxray-api", StartedAt: time.Now()}, "/health", &got)
	if code != http.StatusOK || !got.OK || got.Service != "policyxray-api" {
		t.Fatalf("code=%d got=%+v", code, got)
	}
}

func TestReady_SkipsModelWhenUnset(t *testing.T) {
	var got ReadyResponse
	serve(t, Deps{Pack: loadPack(t)}, "/ready", &got)
	if got.Status != "ok" {
		t.Fatalf("status = %q", got.Status)
	}
	if len(got.Checks) != 2 || got.Checks[1].Status != "skipped" {
		t.Fatalf("checks = %+v", got.Checks)
	}
}

func TestReady_ModelPing(t *testing.T) {
	var ok ReadyResponse
	serve(t, Deps{Pack: loadPack(t), Model: pingFn(func(stdctx.Context) error { return nil })}, "/ready", &ok)
	if ok.Status != "ok" || ok.Checks[1].Status != "ok" {
		t.Fatalf("ok ping: %+v", ok)
	}

	var bad ReadyResponse
	serve(t, Deps{Pack: loadPack(t), Model: pingFn(func(stdctx.Context) error { return errors.New("refused") })}, "/ready", &bad)
	if bad.Status != "degraded" || bad.Checks[1].Status != "fail" || bad.Checks[1].Error != "refused" {
		t.Fatalf("failed ping: %+v", bad)
	}
}

func TestService_ReportsModel(t *testing.T) {
	var got ServiceResponse
	serve(t, Deps{ServiceName: "x", StartedAt: time.Now().Add(-2 * time.Second), ModelName: "ollama"}, "/service", &got)
	if got.Model != "ollama" || got.Uptime < 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestRulepack_ListsCategories(t *testing.T) {
	p := loadPack(t)
	var got RulepackResponse
	serve(t, Deps{Pack: p}, "/rulepack", &got)

	if len(got.Categories) != len(p.Categories) {
		t.Fatalf("categories = %d want %d", len(got.Categories), len(p.Categories))
	}
	if got.KeywordCount != len(p.Keywords) || got.PatternCount != p.PatternCount() {
		t.Fatalf("counts = %+v", got)
	}
	for i, c := range got.Categories {
		if c.Name != p.Categories[i].Name || c.Weight != p.Categories[i].Weight {
			t.Fatalf("category %d = %+v", i, c)
		}
		if len(c.PatternIDs) != len(p.Categories[i].Patterns) {
			t.Fatalf("category %s pattern ids = %v", c.Name, c.PatternIDs)
		}
	}
}

func TestRulepack_NilPack(t *testing.T) {
	var got RulepackResponse
	if code := serve(t, Deps{}, "/rulepack", &got); code != http.StatusOK {
		t.Fatalf("code = %d", code)
	}
	if got.Categories == nil || len(got.Categories) != 0 {
		t.Fatalf("categories = %v", got.Categories)
	}
}
