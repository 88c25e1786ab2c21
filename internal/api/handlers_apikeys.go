// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/repository"
)

// CreateAPIKey issues a new API key scoped to the caller's organization,
// owned by the authenticated principal.
func (s *Server) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		s.writeError(w, r, apierr.New(apierr.KindMalformedCredential, "no authenticated principal"))
		return
	}

	var req models.CreateApiKeyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	key, plaintext, err := s.apiKeys.Issue(r.Context(), principal.UserID, principal.OrgID, req)
	if err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return
	}

	NewResponseWriter(w, r).Created(models.CreateApiKeyResponse{
		Key:          *key,
		PlaintextKey: plaintext,
	})
}

// ListAPIKeys lists the API keys owned by the authenticated principal.
// Hashes never leave the repository layer; models.ApiKey.Hash is tagged
// json:"-".
func (s *Server) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		s.writeError(w, r, apierr.New(apierr.KindMalformedCredential, "no authenticated principal"))
		return
	}

	keys, err := s.apiKeysRepo.ListApiKeysByOwner(r.Context(), principal.UserID)
	if err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return
	}

	NewResponseWriter(w, r).Success(keys)
}

// RotateAPIKey issues a replacement key and schedules the presented key
// for revocation after the configured grace period, then invalidates any
// cached authorization decisions for the old key so a following request
// on it re-evaluates scopes immediately rather than waiting out the
// authorization cache TTL.
func (s *Server) RotateAPIKey(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "id")

	next, plaintext, err := s.apiKeys.Rotate(r.Context(), keyID, s.apiKeyRotationGraceSeconds)
	if errors.Is(err, repository.ErrNotFound) {
		s.writeError(w, r, apierr.NotFound("api key"))
		return
	}
	if err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return
	}

	s.authz.InvalidatePrincipal(&models.Principal{AuthMethod: models.AuthMethodAPIKey, KeyID: keyID})

	NewResponseWriter(w, r).Success(models.RotateApiKeyResponse{
		OldKeyID:     keyID,
		NewKey:       *next,
		PlaintextKey: plaintext,
		GraceUntil:   s.clock.Now().Add(time.Duration(s.apiKeyRotationGraceSeconds) * time.Second),
	})
}

// RevokeAPIKey immediately revokes the presented key.
func (s *Server) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "id")

	var req models.RevokeApiKeyRequest
	if r.ContentLength != 0 {
		if !decodeAndValidate(w, r, &req) {
			return
		}
	}

	if err := s.apiKeys.Revoke(r.Context(), keyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.writeError(w, r, apierr.NotFound("api key"))
			return
		}
		NewResponseWriter(w, r).InternalError(err)
		return
	}

	s.authz.InvalidatePrincipal(&models.Principal{AuthMethod: models.AuthMethodAPIKey, KeyID: keyID})

	NewResponseWriter(w, r).NoContent()
}

// APIKeyUsage reports aggregated usage for the presented key.
func (s *Server) APIKeyUsage(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "id")

	summary, err := s.apiKeysRepo.SummarizeApiKeyUsage(r.Context(), keyID)
	if errors.Is(err, repository.ErrNotFound) {
		s.writeError(w, r, apierr.NotFound("api key"))
		return
	}
	if err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return
	}

	NewResponseWriter(w, r).Success(summary)
}

