package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Push.AppName != "GestiHôtel" {
		t.Fatalf("expected default app name, got %q", cfg.Push.AppName)
	}
	if cfg.Sync.Timeout != 30*time.Second {
		t.Fatalf("expected 30s sync timeout, got %v", cfg.Sync.Timeout)
	}
	if cfg.Sync.SessionIdleTTL != 2*time.Hour {
		t.Fatalf("expected 2h session idle ttl, got %v", cfg.Sync.SessionIdleTTL)
	}
	if got := cfg.Push.CacheGroup(); got != "gestihotel-v1" {
		t.Fatalf("expected cache group gestihotel-v1, got %s", got)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GESTIHOTEL_APP_PORT", "9000")
	t.Setenv("PUSH_CACHE_VERSION", "v7")
	t.Setenv("GESTIHOTEL_SYNC_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.App.Port != 9000 {
		t.Fatalf("expected prefixed override, got %d", cfg.App.Port)
	}
	if cfg.Push.CacheVersion != "v7" {
		t.Fatalf("expected bare key override, got %q", cfg.Push.CacheVersion)
	}
	if cfg.Sync.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.Sync.Timeout)
	}
}
