package http

import (
	"context"
	"testing"
	"time"

	"policyxray/internal/platform/config"
)

func TestNewServer_Addr(t *testing.T) {
	if got := NewServer(config.New().Prefix("XRAY_TEST_NONE_")).Addr(); got != DefaultAddr {
		t.Fatalf("default addr = %q", got)
	}
	t.Setenv("XRAY_API_PORT", ":12345")
	if got := NewServer(config.New().Prefix("XRAY_")).Addr(); got != ":12345" {
		t.Fatalf("addr = %q", got)
	}
}

func TestServer_RunListenError(t *testing.T) {
	t.Setenv("API_PORT", "127.0.0.1:abc")
	if err := NewServer(config.New()).Run(context.Background()); err == nil {
		t.Fatal("expected listen error")
	}
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	t.Setenv("API_PORT", "127.0.0.1:0")
	srv := NewServer(config.New())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
