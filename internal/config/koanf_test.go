// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Edition != EditionCloud {
		t.Errorf("Edition = %q, want %q", cfg.Edition, EditionCloud)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("Database.Driver = %q, want memory", cfg.Database.Driver)
	}
	if cfg.Recommend.FreshTTL != 5*time.Minute {
		t.Errorf("Recommend.FreshTTL = %v, want 5m", cfg.Recommend.FreshTTL)
	}
	if cfg.Recommend.StaleWhileError != time.Hour {
		t.Errorf("Recommend.StaleWhileError = %v, want 1h", cfg.Recommend.StaleWhileError)
	}
	if cfg.Recommend.BufferCapacity != 10000 {
		t.Errorf("Recommend.BufferCapacity = %d, want 10000", cfg.Recommend.BufferCapacity)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate in development: %v", err)
	}
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://app.tunetrail.example, https://admin.tunetrail.example")
	t.Setenv("RECOMMEND_FRESH_TTL", "10m")
	t.Setenv("DATABASE_DRIVER", "badger")
	t.Setenv("DATABASE_PATH", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if len(cfg.Security.CORSOrigins) != 2 {
		t.Fatalf("expected 2 CORS origins, got %v", cfg.Security.CORSOrigins)
	}
	if cfg.Recommend.FreshTTL != 10*time.Minute {
		t.Errorf("Recommend.FreshTTL = %v, want 10m", cfg.Recommend.FreshTTL)
	}
	if cfg.Database.Driver != "badger" {
		t.Errorf("Database.Driver = %q, want badger", cfg.Database.Driver)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := "server:\n  port: 9999\nedition: self_hosted\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o600); err != nil {
		t.Fatalf("unexpected error writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Edition != EditionSelfHosted {
		t.Errorf("Edition = %q, want %q", cfg.Edition, EditionSelfHosted)
	}
}

func TestValidateRejectsWeakProductionSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Environment = "production"
	cfg.Security.JWTSecret = "too-short"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for short production secret")
	}

	cfg.Security.JWTSecret = "this-is-a-changeme-placeholder-value-32b"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for placeholder production secret")
	}
}

func TestValidateRejectsUnknownDatabaseDriver(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.Driver = "postgres"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unsupported database driver")
	}
}
