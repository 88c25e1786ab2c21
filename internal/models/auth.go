// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package models

import "time"

// RegisterRequest is the body of POST /auth/register. Registration
// creates a brand-new Organization (named OrgSlug) together with its
// first User, who becomes that organization's Owner; there is no
// "join an existing org" signup path in this API.
type RegisterRequest struct {
	OrgSlug  string `json:"org_slug" validate:"required,min=2,max=63,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=256"`
	Username string `json:"username,omitempty" validate:"omitempty,max=100"`
}

// LoginRequest is the body of POST /auth/login. OrgSlug disambiguates
// which organization's Users table Email is looked up in, since emails
// are unique per-organization, not globally.
type LoginRequest struct {
	OrgSlug  string `json:"org_slug" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthTokenResponse carries a freshly issued session bearer token.
type AuthTokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
	Org         Organization `json:"org"`
}
