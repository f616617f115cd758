package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_DefaultsForDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("DB_DSN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.JWTTTL != 2*time.Hour {
		t.Fatalf("expected JWT_TTL 2h, got %s", cfg.JWTTTL)
	}
	if cfg.DevAuth {
		t.Fatalf("expected dev auth disabled unless DEV_AUTH is set")
	}
	if cfg.DBDSN != "" {
		t.Fatalf("expected empty DSN (memory storage)")
	}
}

func TestLoad_ProductionRejectsDefaultSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DEV_AUTH", "false")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error in production, got %v", err)
	}
}

func TestValidate_ProductionRejectsDevAuth(t *testing.T) {
	cfg := Default()
	cfg.Env = "prod"
	cfg.JWTSecret = strings.Repeat("x", 40)
	cfg.DevAuth = true

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected DEV_AUTH to be rejected in production")
	}

	cfg.DevAuth = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid production config, got %v", err)
	}
}

func TestLoad_DevAuthOptIn(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DEV_AUTH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DevAuth {
		t.Fatalf("unset APP_ENV must not enable the debug header")
	}

	t.Setenv("DEV_AUTH", "true")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.DevAuth {
		t.Fatalf("expected DEV_AUTH=true to enable dev auth")
	}
}

func TestLocation_DefaultAndInvalid(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "America/Mexico_City" {
		t.Fatalf("unexpected default zone %q", loc)
	}

	cfg.TZ = "Nowhere/Atlantis"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "APP_TZ") {
		t.Fatalf("expected APP_TZ error, got %v", err)
	}
}
