package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultAddr     = ":8080"
	defaultTokenTTL = time.Hour
)

// Config carries everything the services need. It is built once in main and
// passed to constructors; nothing reads the environment after startup.
type Config struct {
	Env          string
	Addr         string
	DatabaseDSN  string
	JWTSecret    string
	APIKeySecret string
	TokenTTL     time.Duration
}

// IsDevelopment reports whether the server runs in development mode.
// Development mode adds stack traces to error responses.
func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Load reads configuration from the environment. Missing required variables
// are reported together so an operator can fix them in one pass.
func Load() (Config, error) {
	cfg := Config{
		Env:          strings.TrimSpace(os.Getenv("EMOTION_ENV")),
		Addr:         strings.TrimSpace(os.Getenv("EMOTION_ADDR")),
		DatabaseDSN:  strings.TrimSpace(os.Getenv("EMOTION_PG_DSN")),
		JWTSecret:    strings.TrimSpace(os.Getenv("EMOTION_JWT_SECRET")),
		APIKeySecret: strings.TrimSpace(os.Getenv("EMOTION_API_KEY_SECRET")),
		TokenTTL:     defaultTokenTTL,
	}
	if cfg.Env == "" {
		cfg.Env = EnvDevelopment
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if raw := strings.TrimSpace(os.Getenv("EMOTION_TOKEN_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse EMOTION_TOKEN_TTL: %w", err)
		}
		if ttl <= 0 {
			return Config{}, fmt.Errorf("EMOTION_TOKEN_TTL must be positive, got %s", ttl)
		}
		cfg.TokenTTL = ttl
	}

	var missing []string
	// Development runs without a database (in-memory stores); production
	// must point at PostgreSQL.
	if cfg.DatabaseDSN == "" && !cfg.IsDevelopment() {
		missing = append(missing, "EMOTION_PG_DSN")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "EMOTION_JWT_SECRET")
	}
	if cfg.APIKeySecret == "" {
		missing = append(missing, "EMOTION_API_KEY_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}
