// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tunetrail/config.yaml",
	"/etc/tunetrail/config.yml",
}

// ConfigPathEnvVar overrides the config file search with an explicit
// path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load reads configuration from built-in defaults, an optional config
// file, and environment variables, in that order of precedence, and
// validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths names every koanf path whose value must be parsed as
// a comma-separated list when it arrives as a plain string (the shape
// an env var always takes).
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("config: set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps a recognized environment variable name to its
// koanf path. Unmapped variables are skipped so stray environment
// variables never leak into the config tree.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	mappings := map[string]string{
		"edition": "edition",

		"http_host":            "server.host",
		"http_port":            "server.port",
		"http_read_timeout":    "server.read_timeout",
		"http_write_timeout":   "server.write_timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",
		"environment":          "server.environment",

		"database_driver": "database.driver",
		"database_path":   "database.path",

		"cache_default_ttl":      "cache.default_ttl",
		"cache_cleanup_interval": "cache.cleanup_interval",

		"jwt_secret":                      "security.jwt_secret",
		"session_ttl":                     "security.session_ttl",
		"cors_origins":                    "security.cors_origins",
		"trusted_proxies":                 "security.trusted_proxies",
		"api_key_rotation_grace_seconds":  "security.api_key_rotation_grace_seconds",

		"session_idle_timeout":   "session.idle_timeout",
		"session_sweep_interval": "session.sweep_interval",

		"engine_endpoint": "engine.endpoint",

		"quota_upgrade_url": "quota.upgrade_url",

		"recommend_fresh_ttl":                 "recommend.fresh_ttl",
		"recommend_stale_while_error":         "recommend.stale_while_error",
		"recommend_buffer_capacity":           "recommend.buffer_capacity",
		"recommend_flush_interval":            "recommend.flush_interval",
		"recommend_user_personal_timeout":     "recommend.user_personal_timeout",
		"recommend_similar_to_track_timeout":  "recommend.similar_to_track_timeout",
		"recommend_daily_mix_timeout":         "recommend.daily_mix_timeout",
		"recommend_radio_seed_timeout":        "recommend.radio_seed_timeout",
		"recommend_taste_profile_timeout":     "recommend.taste_profile_timeout",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := mappings[key]; ok {
		return mapped
	}
	return ""
}
