package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("EMOTION_PG_DSN", "postgres://localhost/emotion")
	t.Setenv("EMOTION_JWT_SECRET", "test-secret")
	t.Setenv("EMOTION_API_KEY_SECRET", "test-api-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("EMOTION_ENV", "")
	t.Setenv("EMOTION_ADDR", "")
	t.Setenv("EMOTION_TOKEN_TTL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != EnvDevelopment {
		t.Fatalf("unexpected env: %s", cfg.Env)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("unexpected ttl: %s", cfg.TokenTTL)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development mode")
	}
}

func TestLoadReportsAllMissingVariables(t *testing.T) {
	t.Setenv("EMOTION_ENV", "production")
	t.Setenv("EMOTION_PG_DSN", "")
	t.Setenv("EMOTION_JWT_SECRET", "")
	t.Setenv("EMOTION_API_KEY_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, name := range []string{"EMOTION_PG_DSN", "EMOTION_JWT_SECRET", "EMOTION_API_KEY_SECRET"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("error %q does not mention %s", err, name)
		}
	}
}

func TestLoadAllowsMissingDSNInDevelopment(t *testing.T) {
	t.Setenv("EMOTION_ENV", "development")
	t.Setenv("EMOTION_PG_DSN", "")
	t.Setenv("EMOTION_JWT_SECRET", "test-secret")
	t.Setenv("EMOTION_API_KEY_SECRET", "test-api-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseDSN != "" {
		t.Fatalf("unexpected DSN: %q", cfg.DatabaseDSN)
	}
}

func TestLoadRejectsBadTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("EMOTION_TOKEN_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unparsable ttl")
	}

	t.Setenv("EMOTION_TOKEN_TTL", "-1h")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative ttl")
	}
}

func TestLoadCustomTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("EMOTION_TOKEN_TTL", "30m")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected ttl: %s", cfg.TokenTTL)
	}
}
