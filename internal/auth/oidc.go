// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package auth's OIDC support authenticates enterprise single-sign-on
// callers through the certified zitadel/oidc relying-party client, the
// same library the credential verifier already used for JWKS-backed
// bearer token verification. It sits alongside JWTAuthenticator and
// APIKeyAuthenticator in the MultiAuthenticator chain rather than
// replacing either: an org may mix session logins, API keys, and OIDC
// SSO across its members.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/repository"
)

// OIDCConfig configures the relying party and its claim-to-Principal
// mapping. Mirrors config.OIDCConfig field-for-field; kept as a separate
// type so this package does not import internal/config.
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	PKCEEnabled  bool

	OrgClaim   string
	RolesClaim string
	RoleScopes map[string][]string
}

// OIDCAuthenticator resolves a Principal from an OIDC ID token, verified
// through zitadel/oidc's certified relying party (JWKS signature check,
// issuer, audience, and expiration validation).
type OIDCAuthenticator struct {
	relyingParty rp.RelyingParty
	issuer       string
	orgClaim     string
	rolesClaim   string
	roleScopes   map[string][]string
	orgs         repository.Organizations
}

// NewOIDCAuthenticator performs OIDC discovery against cfg.IssuerURL and
// returns an authenticator ready to verify bearer ID tokens. orgs
// resolves the caller's current billing plan the same way
// APIKeyAuthenticator does, since an OIDC role grants scopes but never a
// plan.
func NewOIDCAuthenticator(ctx context.Context, cfg OIDCConfig, orgs repository.Organizations) (*OIDCAuthenticator, error) {
	if cfg.IssuerURL == "" {
		return nil, fmt.Errorf("auth: oidc issuer_url is required")
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "profile", "email"}
	}

	options := []rp.Option{rp.WithHTTPClient(oidcHTTPClient)}
	if cfg.PKCEEnabled {
		options = append(options, rp.WithPKCE(nil))
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx, cfg.IssuerURL, cfg.ClientID, cfg.ClientSecret, cfg.RedirectURL, scopes, options...)
	if err != nil {
		return nil, fmt.Errorf("auth: create oidc relying party: %w", err)
	}

	orgClaim := cfg.OrgClaim
	if orgClaim == "" {
		orgClaim = "org_id"
	}
	rolesClaim := cfg.RolesClaim
	if rolesClaim == "" {
		rolesClaim = "roles"
	}

	return &OIDCAuthenticator{
		relyingParty: relyingParty,
		issuer:       relyingParty.Issuer(),
		orgClaim:     orgClaim,
		rolesClaim:   rolesClaim,
		roleScopes:   cfg.RoleScopes,
		orgs:         orgs,
	}, nil
}

func (a *OIDCAuthenticator) Name() string { return "oidc" }

// Priority runs OIDC ahead of session tokens (10), so a bearer token from
// the configured issuer is verified here first; any other token gets
// ErrNoCredentials and falls through to the next authenticator.
func (a *OIDCAuthenticator) Priority() int { return 5 }

func (a *OIDCAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*models.Principal, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, ErrNoCredentials
	}
	if !a.looksLikeOurIssuer(token) {
		return nil, ErrNoCredentials
	}

	claims, err := rp.VerifyIDToken[*oidc.IDTokenClaims](ctx, token, a.relyingParty.IDTokenVerifier())
	if err != nil {
		return nil, apierr.Wrap(apierr.KindMalformedCredential, "invalid oidc token", err)
	}

	orgID, _ := claims.Claims[a.orgClaim].(string)
	if orgID == "" {
		return nil, apierr.New(apierr.KindMalformedCredential, "oidc token missing organization claim")
	}

	plan := models.PlanFree
	if a.orgs != nil {
		if org, err := a.orgs.GetOrganization(ctx, orgID); err == nil {
			plan = org.Plan
		}
	}

	return &models.Principal{
		UserID:     claims.GetSubject(),
		OrgID:      orgID,
		Plan:       models.NormalizePlan(plan),
		Scopes:     a.mapScopes(claims),
		AuthMethod: models.AuthMethodOIDC,
	}, nil
}

// looksLikeOurIssuer peeks the token's claims without verifying its
// signature, purely to decide whether this authenticator or the local
// session verifier owns it. A forged or malformed issuer claim still
// fails cleanly at full verification below.
func (a *OIDCAuthenticator) looksLikeOurIssuer(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	iss, _ := claims["iss"].(string)
	return iss != "" && iss == a.issuer
}

// mapScopes translates the roles claim into a scope set via RoleScopes,
// deduplicating and dropping any role with no configured mapping.
func (a *OIDCAuthenticator) mapScopes(claims *oidc.IDTokenClaims) models.ScopeSet {
	roles := stringSliceClaim(claims.Claims[a.rolesClaim])
	seen := make(map[models.Scope]bool)
	var scopes models.ScopeSet
	for _, role := range roles {
		for _, s := range a.roleScopes[role] {
			scope := models.Scope(s)
			if !seen[scope] {
				seen[scope] = true
				scopes = append(scopes, scope)
			}
		}
	}
	return scopes
}

// stringSliceClaim tolerates the two shapes an OIDC claim commonly takes
// on the wire: a JSON array of strings, or (some IdPs, single-role
// tokens) a bare string.
func stringSliceClaim(v interface{}) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	default:
		return nil
	}
}

// oidcHTTPClient is the discovery/token-exchange client timeout shared
// with the teacher's relying party defaults.
var oidcHTTPClient = &http.Client{Timeout: 30 * time.Second}

var _ Authenticator = (*OIDCAuthenticator)(nil)
