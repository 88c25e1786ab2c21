// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package auth

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/repository"
)

// ErrNoCredentials indicates the request carried no credential this
// authenticator recognizes; the chain should try the next one.
var ErrNoCredentials = errors.New("auth: no credentials presented")

// Authenticator resolves a Principal from an inbound request, or reports
// why it could not.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) (*models.Principal, error)
	Name() string
	Priority() int
}

// MultiAuthenticator tries each Authenticator in priority order (lower
// first), stopping at the first success or the first fatal (non-
// ErrNoCredentials) error.
type MultiAuthenticator struct {
	authenticators []Authenticator
}

// NewMultiAuthenticator builds a chain sorted by Priority ascending.
func NewMultiAuthenticator(authenticators ...Authenticator) *MultiAuthenticator {
	sorted := make([]Authenticator, len(authenticators))
	copy(sorted, authenticators)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Priority() < sorted[j].Priority() })
	return &MultiAuthenticator{authenticators: sorted}
}

// Authenticate runs the chain, returning the typed *apierr.Error a
// fatal result carries, or apierr.KindMalformedCredential if nothing in
// the chain recognized the request at all.
func (m *MultiAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*models.Principal, error) {
	if len(m.authenticators) == 0 {
		return nil, apierr.New(apierr.KindMalformedCredential, "no authenticators configured")
	}

	var lastErr error = ErrNoCredentials
	for _, a := range m.authenticators {
		principal, err := a.Authenticate(ctx, r)
		if err == nil {
			return principal, nil
		}
		lastErr = err
		if errors.Is(err, ErrNoCredentials) {
			continue
		}
		return nil, err
	}

	if errors.Is(lastErr, ErrNoCredentials) {
		return nil, apierr.New(apierr.KindMalformedCredential, "no credentials presented")
	}
	return nil, lastErr
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header, or "" if absent/malformed.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// JWTAuthenticator resolves a Principal from a session bearer token.
type JWTAuthenticator struct {
	manager *JWTManager
}

// NewJWTAuthenticator constructs a JWTAuthenticator.
func NewJWTAuthenticator(manager *JWTManager) *JWTAuthenticator {
	return &JWTAuthenticator{manager: manager}
}

func (a *JWTAuthenticator) Name() string { return "jwt" }
func (a *JWTAuthenticator) Priority() int { return 10 }

func (a *JWTAuthenticator) Authenticate(_ context.Context, r *http.Request) (*models.Principal, error) {
	token := bearerToken(r)
	if token == "" || strings.HasPrefix(token, models.APIKeyPrefix) {
		return nil, ErrNoCredentials
	}
	claims, err := a.manager.Validate(token)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindMalformedCredential, "invalid session token", err)
	}
	return &models.Principal{
		UserID:     claims.UserID,
		OrgID:      claims.OrgID,
		Plan:       models.NormalizePlan(claims.Plan),
		Scopes:     claims.Scopes,
		AuthMethod: models.AuthMethodSession,
	}, nil
}

// APIKeyAuthenticator resolves a Principal from a long-lived API key.
type APIKeyAuthenticator struct {
	manager *APIKeyManager
	orgs    repository.Organizations
}

// NewAPIKeyAuthenticator constructs an APIKeyAuthenticator. orgs is used
// to resolve the key's current org plan (an org may upgrade/downgrade
// after a key was issued).
func NewAPIKeyAuthenticator(manager *APIKeyManager, orgs repository.Organizations) *APIKeyAuthenticator {
	return &APIKeyAuthenticator{manager: manager, orgs: orgs}
}

func (a *APIKeyAuthenticator) Name() string { return "api_key" }
func (a *APIKeyAuthenticator) Priority() int { return 20 }

func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*models.Principal, error) {
	token := bearerToken(r)
	if token == "" {
		token = r.Header.Get("X-Api-Key")
	}
	if token == "" || !strings.HasPrefix(token, models.APIKeyPrefix) {
		return nil, ErrNoCredentials
	}

	clientIP := clientIPFromRequest(r)
	key, err := a.manager.Verify(ctx, token, clientIP)
	switch {
	case errors.Is(err, ErrUnknownKey):
		return nil, apierr.New(apierr.KindUnknownCredential, "unknown api key")
	case errors.Is(err, ErrKeyRevoked):
		return nil, apierr.New(apierr.KindRevokedCredential, "api key has been revoked")
	case errors.Is(err, ErrKeyExpired):
		return nil, apierr.New(apierr.KindExpiredCredential, "api key has expired")
	case errors.Is(err, ErrIPNotAllowed):
		return nil, apierr.New(apierr.KindIPNotAllowed, "client ip not permitted for this api key")
	case err != nil:
		return nil, apierr.Wrap(apierr.KindMalformedCredential, "api key verification failed", err)
	}

	plan := models.PlanFree
	if org, err := a.orgs.GetOrganization(ctx, key.OrgID); err == nil {
		plan = org.Plan
	}

	return &models.Principal{
		UserID:     key.OwnerUserID,
		OrgID:      key.OrgID,
		Plan:       models.NormalizePlan(plan),
		Scopes:     key.Scopes,
		AuthMethod: models.AuthMethodAPIKey,
		KeyID:      key.ID,
	}, nil
}

func clientIPFromRequest(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		return host[:idx]
	}
	return host
}
