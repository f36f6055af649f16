package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Addr)
	}
	if cfg.MaxRedeals != 2 {
		t.Fatalf("expected default max redeals 2, got %d", cfg.MaxRedeals)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PYRAMID_ADDR", "127.0.0.1:9000")
	t.Setenv("PYRAMID_MAX_REDEALS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Fatalf("expected addr from env, got %q", cfg.Addr)
	}
	if cfg.MaxRedeals != 0 {
		t.Fatalf("expected max redeals 0, got %d", cfg.MaxRedeals)
	}
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("PYRAMID_MAX_REDEALS", "not-an-int")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadRejectsNegativeRedeals(t *testing.T) {
	t.Setenv("PYRAMID_MAX_REDEALS", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative redeals")
	}
}
