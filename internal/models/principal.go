// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package models

// AuthMethod records which credential carrier resolved a Principal.
type AuthMethod string

const (
	AuthMethodSession AuthMethod = "session"
	AuthMethodAPIKey  AuthMethod = "api_key"
	AuthMethodOIDC    AuthMethod = "oidc"
)

// Principal is the verified identity backing a request: user,
// organization, plan, scopes, and the auth method used to resolve it.
type Principal struct {
	UserID     string     `json:"user_id"`
	OrgID      string     `json:"org_id"`
	Plan       Plan       `json:"plan"`
	Scopes     ScopeSet   `json:"scopes"`
	AuthMethod AuthMethod `json:"auth_method"`

	// KeyID is set only when AuthMethod == AuthMethodAPIKey.
	KeyID string `json:"key_id,omitempty"`
}

// HasScope reports whether the principal's scope set satisfies required.
func (p *Principal) HasScope(required Scope) bool {
	return p.Scopes.Has(required)
}
