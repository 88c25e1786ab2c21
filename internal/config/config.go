// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import "time"

// Edition names a deployment flavor. It is validated on load and logged
// at startup; plan and quota enforcement is the same for both editions.
type Edition string

const (
	EditionCloud      Edition = "cloud"
	EditionSelfHosted Edition = "self_hosted"
)

// Config is the serving plane's complete runtime configuration, loaded
// by Load in three layers: built-in defaults, an optional YAML file,
// then environment variables, each overriding the last.
type Config struct {
	Edition   Edition         `koanf:"edition"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Security  SecurityConfig  `koanf:"security"`
	Session   SessionConfig   `koanf:"session"`
	Engine    EngineConfig    `koanf:"engine"`
	Quota     QuotaConfig     `koanf:"quota"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
	EventBus  EventBusConfig  `koanf:"event_bus"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// Environment gates production-only validation (e.g. JWT_SECRET
	// strength); one of development, staging, production.
	Environment string `koanf:"environment"`
}

// DatabaseConfig selects the Repository adapter. The in-process Memory
// adapter needs no connection info; the badger adapter persists to a
// local data directory for session durability across restarts.
type DatabaseConfig struct {
	// Driver is "memory" or "badger".
	Driver string `koanf:"driver"`
	// Path is the badger data directory, used only when Driver is
	// "badger".
	Path string `koanf:"path"`
	// AnalyticsPath is the DuckDB database file backing API-key usage
	// aggregation. Empty disables it: usage entries are then kept only
	// in-process by whichever Driver is selected, same as before this
	// field existed.
	AnalyticsPath string `koanf:"analytics_path"`
}

// CacheConfig configures the in-process recommendation/response cache.
type CacheConfig struct {
	DefaultTTL      time.Duration `koanf:"default_ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// SecurityConfig configures the Credential Verifier and CORS policy.
type SecurityConfig struct {
	// JWTSecret signs session bearer tokens. Must be at least 32 bytes;
	// Validate rejects placeholder values in production.
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTTL     time.Duration `koanf:"session_ttl"`
	CORSOrigins    []string      `koanf:"cors_origins"`
	TrustedProxies []string      `koanf:"trusted_proxies"`
	// APIKeyRotationGraceSeconds is how long a rotated-out API key
	// continues to authenticate alongside its replacement.
	APIKeyRotationGraceSeconds int64 `koanf:"api_key_rotation_grace_seconds"`
	// AuthRateLimitRequests and AuthRateLimitWindow bound how often a
	// single IP may call /auth/register or /auth/login, independent of
	// the per-organization Quota & Rate Gate, since those endpoints run
	// before any principal exists for the gate to key on.
	AuthRateLimitRequests int           `koanf:"auth_rate_limit_requests"`
	AuthRateLimitWindow   time.Duration `koanf:"auth_rate_limit_window"`
	OIDC                  OIDCConfig    `koanf:"oidc"`
}

// OIDCConfig configures the enterprise single-sign-on Credential Verifier.
// An empty IssuerURL (the default) disables OIDC entirely: the chain
// falls back to session tokens and API keys only.
type OIDCConfig struct {
	IssuerURL    string   `koanf:"issuer_url"`
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	RedirectURL  string   `koanf:"redirect_url"`
	Scopes       []string `koanf:"scopes"`
	PKCEEnabled  bool     `koanf:"pkce_enabled"`

	// OrgClaim names the ID token claim carrying the caller's
	// organization id. Required for a resolved Principal to carry the
	// right billing plan and quota bucket.
	OrgClaim string `koanf:"org_claim"`
	// RolesClaim names the ID token claim carrying the caller's roles,
	// mapped to models.Scope through RoleScopes.
	RolesClaim string `koanf:"roles_claim"`
	// RoleScopes maps an IdP role name to the scopes it grants.
	RoleScopes map[string][]string `koanf:"role_scopes"`
}

// SessionConfig configures the Session Manager and its sweeper.
type SessionConfig struct {
	IdleTimeout   time.Duration `koanf:"idle_timeout"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// EngineConfig locates the RecommendationEngine. This repository's
// engine runs in-process (internal/engine.Static), so Endpoint is
// carried for forward compatibility with an out-of-process engine and
// is otherwise unused.
type EngineConfig struct {
	Endpoint string `koanf:"endpoint"`
}

// QuotaConfig configures the Quota & Rate Gate's plan/feature table.
// The table itself (internal/quota.DefaultPolicy) and the
// operation-to-scope table (internal/authz.requiredScopes) are fixed in
// code rather than data-driven, since they change only with a release,
// not per deployment; UpgradeURL is the one per-deployment value the
// gate needs to fill PLAN_UPGRADE_REQUIRED responses.
type QuotaConfig struct {
	UpgradeURL string `koanf:"upgrade_url"`
}

// RecommendConfig configures the Recommendation Dispatcher's caching,
// fallback, and impression-buffering behavior.
type RecommendConfig struct {
	FreshTTL              time.Duration `koanf:"fresh_ttl"`
	StaleWhileError        time.Duration `koanf:"stale_while_error"`
	BufferCapacity         int           `koanf:"buffer_capacity"`
	FlushInterval          time.Duration `koanf:"flush_interval"`
	UserPersonalTimeout    time.Duration `koanf:"user_personal_timeout"`
	SimilarToTrackTimeout  time.Duration `koanf:"similar_to_track_timeout"`
	DailyMixTimeout        time.Duration `koanf:"daily_mix_timeout"`
	RadioSeedTimeout       time.Duration `koanf:"radio_seed_timeout"`
	TasteProfileTimeout    time.Duration `koanf:"taste_profile_timeout"`
}

// EventBusConfig configures the external interaction-event stream
// published for consumers outside the serving plane. Empty URL (the
// default) disables it entirely.
type EventBusConfig struct {
	URL     string `koanf:"url"`
	Subject string `koanf:"subject"`
}

// LoggingConfig mirrors internal/logging.Config; kept as a distinct,
// koanf-tagged type so this package does not import logging just to
// describe its shape.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
