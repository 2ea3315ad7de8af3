package net_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	perr "policyxray/internal/platform/errors"
	pnet "policyxray/internal/platform/net"
)

func TestWithRequest(t *testing.T) {
	base := context.Background()
	cases := []struct {
		name, req, analysis string
	}{
		{"both", "req-1", "an-1"},
		{"request only", "req-2", ""},
		{"analysis only", "", "an-3"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := pnet.WithRequest(base, c.req, c.analysis)
			if got := pnet.RequestID(ctx); got != c.req {
				t.Fatalf("RequestID = %q want %q", got, c.req)
			}
			if got := pnet.AnalysisID(ctx); got != c.analysis {
				t.Fatalf("AnalysisID = %q want %q", got, c.analysis)
			}
		})
	}

	if ctx := pnet.WithRequest(base, "", ""); ctx != base {
		t.Fatal("empty ids must leave ctx untouched")
	}
}

func TestNewAnalysisID_Unique(t *testing.T) {
	a, b := pnet.NewAnalysisID(), pnet.NewAnalysisID()
	if a == "" || a == b || len(a) != 36 {
		t.Fatalf("ids %q %q", a, b)
	}
}

func TestEnvelopes(t *testing.T) {
	ok := pnet.Success(http.StatusOK, map[string]int{"clauses": 3}, "r1")
	if ok.StatusCode != 200 || ok.Status != "OK" || ok.RequestID != "r1" || ok.Code != 0 {
		t.Fatalf("success = %+v", ok)
	}

	bad := pnet.Failure(perr.New(perr.ErrorCodeValidation, "policy text too short"), "r2")
	if bad.StatusCode != http.StatusBadRequest || bad.Code != perr.ErrorCodeValidation || bad.Error != "policy text too short" {
		t.Fatalf("failure = %+v", bad)
	}

	plain := pnet.Failure(errors.New("dial tcp 10.0.0.1: refused"), "")
	if plain.StatusCode != http.StatusInternalServerError || plain.Code != perr.ErrorCodeUnknown {
		t.Fatalf("plain error = %+v", plain)
	}
}
