// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package auth

import (
	"testing"
	"time"

	"github.com/tunetrail/serving/internal/models"
)

func TestJWTManagerRejectsShortSecret(t *testing.T) {
	if _, err := NewJWTManager("too-short", time.Hour); err == nil {
		t.Fatal("expected error for secret under 32 characters")
	}
}

func TestJWTIssueAndValidateRoundTrip(t *testing.T) {
	m, err := NewJWTManager("a-secret-at-least-32-characters!!", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, expiresAt, err := m.Issue("user_1", "org_1", models.PlanPro, models.ScopeSet{models.ScopeReadRecommendations})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expiresAt.Before(time.Now()) {
		t.Fatal("expected future expiry")
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "user_1" || claims.OrgID != "org_1" || claims.Plan != models.PlanPro {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if !claims.Scopes.Has(models.ScopeReadRecommendations) {
		t.Error("expected scope to round-trip")
	}
}

func TestJWTValidateRejectsTamperedToken(t *testing.T) {
	m, _ := NewJWTManager("a-secret-at-least-32-characters!!", time.Hour)
	token, _, _ := m.Issue("user_1", "org_1", models.PlanFree, nil)

	other, _ := NewJWTManager("a-different-secret-32-characters", time.Hour)
	if _, err := other.Validate(token); err == nil {
		t.Fatal("expected validation failure with wrong secret")
	}
}
