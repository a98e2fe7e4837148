package config

import (
	"os"
	"testing"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost:5432/practicewell")
	defer os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.DefaultTenant != "default" {
		t.Errorf("expected default tenant, got %s", cfg.DefaultTenant)
	}
	if cfg.RateLimitRPM != 600 {
		t.Errorf("expected default rate limit 600, got %d", cfg.RateLimitRPM)
	}
}

func TestValidate_DevWithoutSecret(t *testing.T) {
	cfg := &Config{Env: "development", Port: "8000", TokenTTLHours: 12}
	if err := cfg.Validate(); err != nil {
		t.Errorf("dev mode should not require JWT_SECRET: %v", err)
	}
}

func TestValidate_ProductionRequiresSecret(t *testing.T) {
	cfg := &Config{Env: "production", Port: "8000", TokenTTLHours: 12}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT_SECRET in production")
	}
}

func TestValidate_SecretTooShort(t *testing.T) {
	cfg := &Config{Env: "production", Port: "8000", TokenTTLHours: 12, JWTSecret: "short"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for short JWT_SECRET")
	}
}

func TestValidate_BadEnv(t *testing.T) {
	cfg := &Config{Env: "qa", Port: "8000", TokenTTLHours: 12}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown ENV value")
	}
}
