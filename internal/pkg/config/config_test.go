package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"API_BASE_URL": "https://api.kiki.test",
		"API_ANON_KEY": "anon",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.LogLevel != "info" {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
	if cfg.API.RefreshTimeout != 30*time.Second || cfg.API.HTTPTimeout != 15*time.Second {
		t.Errorf("unexpected timeouts: %+v", cfg.API)
	}
	if cfg.API.CredentialKey != "kiki_packaging_auth_tokens" {
		t.Errorf("credential key = %q", cfg.API.CredentialKey)
	}
	if cfg.Redis.Addr != "" || cfg.Activity.Mirror {
		t.Errorf("optional stores should be off by default: %+v %+v", cfg.Redis, cfg.Activity)
	}
	if cfg.Activity.Workers != 4 {
		t.Errorf("workers = %d", cfg.Activity.Workers)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"API_BASE_URL":    "https://api.kiki.test",
		"API_ANON_KEY":    "anon",
		"REFRESH_TIMEOUT": "5s",
		"REDIS_ADDR":      "localhost:6379",
		"ACTIVITY_MIRROR": "true",
		"ENV":             "production",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.RefreshTimeout != 5*time.Second || cfg.Redis.Addr != "localhost:6379" || !cfg.Activity.Mirror {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !cfg.IsProduction() {
		t.Error("expected production")
	}
}

func TestLoad_RequiresBackend(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatal("expected error when API_BASE_URL is missing")
	}
}
