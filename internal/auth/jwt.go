// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tunetrail/serving/internal/models"
)

// SessionClaims is the JWT payload for a session bearer token: enough to
// resolve a Principal without a repository round trip on every request.
type SessionClaims struct {
	UserID string           `json:"user_id"`
	OrgID  string           `json:"org_id"`
	Plan   models.Plan      `json:"plan"`
	Scopes models.ScopeSet  `json:"scopes"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates session bearer tokens with HMAC-SHA256.
type JWTManager struct {
	secret  []byte
	timeout time.Duration
}

// NewJWTManager constructs a JWTManager. secret must be at least 32
// characters; ttl is the session token lifetime, and ttl <= 0 uses 24h.
func NewJWTManager(secret string, ttl time.Duration) (*JWTManager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("auth: JWT secret must be at least 32 characters")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTManager{secret: []byte(secret), timeout: ttl}, nil
}

// Issue mints a signed session token for the given principal fields.
func (m *JWTManager) Issue(userID, orgID string, plan models.Plan, scopes models.ScopeSet) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.timeout)
	claims := &SessionClaims{
		UserID: userID,
		OrgID:  orgID,
		Plan:   plan,
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses and verifies a session bearer token, rejecting any
// signing method other than HMAC (prevents algorithm-confusion attacks).
func (m *JWTManager) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: parse session token: %w", err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid session token claims")
	}
	return claims, nil
}
