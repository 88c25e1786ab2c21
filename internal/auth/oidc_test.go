// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tunetrail/serving/internal/models"
)

func TestStringSliceClaim(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want []string
	}{
		{"json array", []interface{}{"admin", "viewer"}, []string{"admin", "viewer"}},
		{"bare string", "admin", []string{"admin"}},
		{"empty string", "", nil},
		{"nil", nil, nil},
		{"wrong type", 42, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := stringSliceClaim(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestOIDCAuthenticatorLooksLikeOurIssuer(t *testing.T) {
	a := &OIDCAuthenticator{issuer: "https://idp.tunetrail.example"}

	ours := unsignedTokenWithIssuer(t, "https://idp.tunetrail.example")
	if !a.looksLikeOurIssuer(ours) {
		t.Error("expected a token with the matching issuer to be recognized")
	}

	foreign := unsignedTokenWithIssuer(t, "https://accounts.example.com")
	if a.looksLikeOurIssuer(foreign) {
		t.Error("expected a token with a different issuer to be rejected")
	}

	if a.looksLikeOurIssuer("not-a-jwt") {
		t.Error("expected a malformed token to be rejected")
	}
}

func TestOIDCAuthenticatorAuthenticateNoCredentials(t *testing.T) {
	a := &OIDCAuthenticator{issuer: "https://idp.tunetrail.example"}
	req := httpRequestWithBearer(t, "")
	if _, err := a.Authenticate(req.Context(), req); err != ErrNoCredentials {
		t.Fatalf("expected ErrNoCredentials for an empty bearer token, got %v", err)
	}
}

func TestOIDCAuthenticatorAuthenticateForeignIssuerFallsThrough(t *testing.T) {
	a := &OIDCAuthenticator{issuer: "https://idp.tunetrail.example"}
	token := unsignedTokenWithIssuer(t, "https://not-us.example.com")
	req := httpRequestWithBearer(t, token)
	if _, err := a.Authenticate(req.Context(), req); err != ErrNoCredentials {
		t.Fatalf("expected a foreign-issuer token to fall through with ErrNoCredentials, got %v", err)
	}
}

func TestOIDCAuthenticatorMapScopes(t *testing.T) {
	a := &OIDCAuthenticator{
		rolesClaim: "roles",
		roleScopes: map[string][]string{
			"admin":  {"admin"},
			"viewer": {"read:recommendations", "read:tracks"},
		},
	}

	claims := &oidc.IDTokenClaims{
		TokenClaims: oidc.TokenClaims{Subject: "user-1"},
		Claims: map[string]interface{}{
			"roles": []interface{}{"viewer", "unmapped-role"},
		},
	}
	got := a.mapScopes(claims)
	want := models.ScopeSet{models.ScopeReadRecommendations, models.ScopeReadTracks}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func httpRequestWithBearer(t *testing.T, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/recommendations", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func unsignedTokenWithIssuer(t *testing.T, issuer string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-signing-key-not-verified-by-peek"))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return signed
}
