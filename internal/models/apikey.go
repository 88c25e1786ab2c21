// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package models

import "time"

// APIKeyPrefix is the literal prefix every issued key carries, both in
// its plaintext form and in the stored identification prefix.
const APIKeyPrefix = "tt_"

// APIKeyPrefixLen is the number of leading characters (including the
// "tt_" literal) persisted for prefix-based lookup.
const APIKeyPrefixLen = 10

// RateLimits holds the per-window request ceilings for an API key.
// A nil *int means unlimited for that window.
type RateLimits struct {
	PerMinute *int `json:"per_minute,omitempty"`
	PerHour   *int `json:"per_hour,omitempty"`
	PerDay    *int `json:"per_day,omitempty"`
}

// ApiKey is a long-lived credential for programmatic API access.
//
// Security:
//   - Hash is a one-way digest of the full secret; the secret itself is
//     never stored.
//   - The plaintext secret is returned exactly once, at creation (or at
//     rotation, for the new key).
//   - RevokedAt set means the key never authenticates again, even if not
//     yet expired.
type ApiKey struct {
	ID          string `json:"id"`
	OwnerUserID string `json:"owner_user_id"`
	OrgID       string `json:"org_id"`

	Prefix string `json:"prefix"`
	Hash   string `json:"-"`

	Name   string   `json:"name"`
	Scopes ScopeSet `json:"scopes"`

	Environment Environment `json:"environment"`
	Limits      RateLimits  `json:"limits"`

	IPAllowlist []string `json:"ip_allowlist,omitempty"`

	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	LastUsedIP string     `json:"last_used_ip,omitempty"`
	UseCount   int64      `json:"use_count"`

	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`

	// RotatedToID, when set, names the successor key created by Rotate;
	// the old key remains usable until RevokedAt (the grace period).
	RotatedToID string `json:"rotated_to_id,omitempty"`
}

// IsExpired reports whether the key's expiry has passed.
func (k *ApiKey) IsExpired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}

// IsRevoked reports whether the key has been revoked as of now. A
// revocation time in the future (a scheduled rotation grace period) does
// not count until it is reached.
func (k *ApiKey) IsRevoked(now time.Time) bool {
	return k.RevokedAt != nil && !now.Before(*k.RevokedAt)
}

// IsActive reports whether the key currently authenticates.
func (k *ApiKey) IsActive(now time.Time) bool {
	return !k.IsExpired(now) && !k.IsRevoked(now)
}

// Redacted returns a copy of the key with the hash scrubbed, suitable for
// GET responses after creation. The display form is DisplayPrefix.
func (k *ApiKey) Redacted() ApiKey {
	redacted := *k
	redacted.Hash = ""
	return redacted
}

// DisplayPrefix returns the prefix plus a redaction marker for UI/API
// listing.
func (k *ApiKey) DisplayPrefix() string {
	return k.Prefix + "•••"
}

// IsIPAllowed reports whether ip may authenticate with this key. An empty
// allowlist permits any IP.
func (k *ApiKey) IsIPAllowed(ip string) bool {
	if len(k.IPAllowlist) == 0 {
		return true
	}
	for _, allowed := range k.IPAllowlist {
		if allowed == ip {
			return true
		}
	}
	return false
}

// CreateApiKeyRequest is the body of POST /api-keys.
type CreateApiKeyRequest struct {
	Name        string      `json:"name" validate:"required,min=1,max=100"`
	Scopes      []Scope     `json:"scopes" validate:"required,min=1,dive"`
	Environment Environment `json:"environment" validate:"required"`
	Limits      RateLimits  `json:"limits,omitempty"`
	ExpiresIn   *int        `json:"expires_in_days,omitempty" validate:"omitempty,min=1,max=3650"`
	IPAllowlist []string    `json:"ip_allowlist,omitempty" validate:"omitempty,dive,ip"`
}

// CreateApiKeyResponse carries the plaintext secret. The server emits this
// shape exactly once, at creation.
type CreateApiKeyResponse struct {
	Key            ApiKey `json:"key"`
	PlaintextKey   string `json:"plaintext_key"`
}

// RotateApiKeyResponse carries the newly-issued key's plaintext secret
// alongside both key ids.
type RotateApiKeyResponse struct {
	OldKeyID     string `json:"old_key_id"`
	NewKey       ApiKey `json:"new_key"`
	PlaintextKey string `json:"plaintext_key"`
	GraceUntil   time.Time `json:"grace_until"`
}

// RevokeApiKeyRequest is the (optional) body of POST /api-keys/{id}/revoke.
type RevokeApiKeyRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// ApiKeyUsageEntry is one row of the append-only API usage log, aggregated
// for the usage-analytics endpoint.
type ApiKeyUsageEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	KeyID          string    `json:"key_id"`
	Endpoint       string    `json:"endpoint"`
	Method         string    `json:"method"`
	StatusCode     int       `json:"status_code"`
	IPAddress      string    `json:"ip_address,omitempty"`
	ResponseTimeMS int       `json:"response_time_ms"`
}

// ApiKeyUsageSummary aggregates usage for GET /api-keys/{id}/usage.
type ApiKeyUsageSummary struct {
	KeyID         string    `json:"key_id"`
	TotalRequests int64     `json:"total_requests"`
	ErrorCount    int64     `json:"error_count"`
	LastUsedAt    *time.Time `json:"last_used_at,omitempty"`
	WindowStart   time.Time `json:"window_start"`
	WindowEnd     time.Time `json:"window_end"`
}
