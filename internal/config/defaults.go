// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import "time"

// defaultConfig returns a Config with every field set to its documented
// default. Applied first by Load, then overridden by a config
// file and environment variables in that order.
func defaultConfig() *Config {
	return &Config{
		Edition: EditionCloud,
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Driver: "memory",
			Path:   "/data/tunetrail",
		},
		Cache: CacheConfig{
			DefaultTTL:      5 * time.Minute,
			CleanupInterval: time.Minute,
		},
		Security: SecurityConfig{
			JWTSecret:                  "",
			SessionTTL:                 24 * time.Hour,
			CORSOrigins:                []string{"*"},
			TrustedProxies:             []string{},
			APIKeyRotationGraceSeconds: 24 * 60 * 60,
			AuthRateLimitRequests:      10,
			AuthRateLimitWindow:        time.Minute,
			OIDC: OIDCConfig{
				IssuerURL:  "",
				Scopes:     []string{"openid", "profile", "email"},
				OrgClaim:   "org_id",
				RolesClaim: "roles",
				RoleScopes: map[string][]string{
					"admin":  {"admin"},
					"viewer": {"read:recommendations", "read:tracks", "read:taste_profile"},
				},
			},
		},
		Session: SessionConfig{
			IdleTimeout:   15 * time.Minute,
			SweepInterval: time.Minute,
		},
		Engine: EngineConfig{
			Endpoint: "",
		},
		Quota: QuotaConfig{
			UpgradeURL: "https://tunetrail.example/pricing",
		},
		Recommend: RecommendConfig{
			FreshTTL:              5 * time.Minute,
			StaleWhileError:       time.Hour,
			BufferCapacity:        10000,
			FlushInterval:         5 * time.Second,
			UserPersonalTimeout:   2 * time.Second,
			SimilarToTrackTimeout: 2 * time.Second,
			DailyMixTimeout:       5 * time.Second,
			RadioSeedTimeout:      5 * time.Second,
			TasteProfileTimeout:   10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		EventBus: EventBusConfig{
			URL:     "",
			Subject: "tunetrail.interactions",
		},
	}
}
