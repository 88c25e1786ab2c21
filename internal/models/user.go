// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package models

import (
	"strings"
	"time"
)

// Role is the user's role within their organization, implying a default
// scope set for session bearer tokens (see internal/auth).
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// IsValidRole reports whether r is a known role.
func IsValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// User belongs to exactly one Organization.
type User struct {
	ID    string `json:"id"`
	OrgID string `json:"org_id"`

	Email    string `json:"email"`
	Username string `json:"username,omitempty"`

	// PasswordHash is never serialized back to a client.
	PasswordHash string `json:"-"`

	Role          Role `json:"role"`
	IsActive      bool `json:"is_active"`
	EmailVerified bool `json:"email_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeEmail case-folds an email the same way on storage and on
// comparison, per the User.email invariant in the data model.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DefaultScopes returns the scope set implied by the user's role for
// session bearer tokens. Owner and admin both get "*" (all scopes);
// ordinary users get the standard read/write set.
func (u *User) DefaultScopes() ScopeSet {
	switch u.Role {
	case RoleOwner, RoleAdmin:
		return ScopeSet{ScopeAll}
	default:
		return ScopeSet{
			ScopeReadRecommendations,
			ScopeReadTracks,
			ScopeWriteInteractions,
			ScopeWriteSessions,
		}
	}
}
