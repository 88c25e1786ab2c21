// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package models

// Scope is a named capability required by an operation (e.g.
// "read:recommendations"). A principal's scope set authorizes the
// operations it may perform; the wildcard ScopeAll satisfies any
// requirement.
type Scope string

const (
	ScopeAll Scope = "*"

	ScopeReadRecommendations  Scope = "read:recommendations"
	ScopeReadTracks           Scope = "read:tracks"
	ScopeReadTasteProfile     Scope = "read:taste_profile"
	ScopeReadApiKeys          Scope = "read:api_keys"
	ScopeReadApiKeyUsage      Scope = "read:api_key_usage"
	ScopeWriteInteractions    Scope = "write:interactions"
	ScopeWriteSessions        Scope = "write:sessions"
	ScopeWriteFeedback        Scope = "write:feedback"
	ScopeWriteApiKeys         Scope = "write:api_keys"
	ScopeWriteImpressions     Scope = "write:impressions"
	ScopeAdmin                Scope = "admin"
)

// AllScopes returns every scope an API key may be issued, excluding the
// wildcard (which is granted, not requested).
func AllScopes() []Scope {
	return []Scope{
		ScopeReadRecommendations,
		ScopeReadTracks,
		ScopeReadTasteProfile,
		ScopeReadApiKeys,
		ScopeReadApiKeyUsage,
		ScopeWriteInteractions,
		ScopeWriteSessions,
		ScopeWriteFeedback,
		ScopeWriteApiKeys,
		ScopeWriteImpressions,
		ScopeAdmin,
	}
}

// IsValidScope reports whether s is an issuable scope.
func IsValidScope(s Scope) bool {
	for _, known := range AllScopes() {
		if known == s {
			return true
		}
	}
	return false
}

// ScopeSet is a set of granted scopes (a user's role-derived scopes, or an
// API key's issued scopes).
type ScopeSet []Scope

// Has reports whether the set satisfies required, honoring the wildcard.
func (s ScopeSet) Has(required Scope) bool {
	for _, granted := range s {
		if granted == ScopeAll || granted == required {
			return true
		}
	}
	return false
}

// HasAny reports whether the set satisfies at least one of required.
func (s ScopeSet) HasAny(required ...Scope) bool {
	for _, r := range required {
		if s.Has(r) {
			return true
		}
	}
	return false
}
