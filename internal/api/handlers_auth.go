// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/auth"
	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/repository"
)

// Register creates a brand-new organization together with its first
// user, who becomes that organization's Owner, then issues a session
// bearer token exactly as Login would.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	slug := normalizeSlug(req.OrgSlug)
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		NewResponseWriter(w, r).ValidationFailed(err.Error(), nil)
		return
	}

	now := s.clock.Now()
	org := &models.Organization{
		ID:        s.ids.NewID(),
		Slug:      slug,
		Plan:      models.PlanFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orgs.CreateOrganization(r.Context(), org); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			NewResponseWriter(w, r).ValidationFailed("organization slug is already taken", nil)
			return
		}
		NewResponseWriter(w, r).InternalError(err)
		return
	}

	user := &models.User{
		ID:           s.ids.NewID(),
		OrgID:        org.ID,
		Email:        models.NormalizeEmail(req.Email),
		Username:     req.Username,
		PasswordHash: passwordHash,
		Role:         models.RoleOwner,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			NewResponseWriter(w, r).ValidationFailed("email is already registered", nil)
			return
		}
		NewResponseWriter(w, r).InternalError(err)
		return
	}

	s.issueSession(w, r, user, org)
}

// Login authenticates an existing user against their organization's
// credential store and issues a session bearer token.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	org, err := s.orgs.GetOrganizationBySlug(r.Context(), normalizeSlug(req.OrgSlug))
	if errors.Is(err, repository.ErrNotFound) {
		s.writeError(w, r, invalidLoginCredentials())
		return
	}
	if err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return
	}

	user, err := s.users.GetUserByEmail(r.Context(), org.ID, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		s.writeError(w, r, invalidLoginCredentials())
		return
	}
	if err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return
	}
	if !user.IsActive {
		s.writeError(w, r, invalidLoginCredentials())
		return
	}
	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		s.writeError(w, r, invalidLoginCredentials())
		return
	}

	s.issueSession(w, r, user, org)
}

// issueSession mints a JWT for user/org and writes the AuthTokenResponse.
func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, user *models.User, org *models.Organization) {
	token, expiresAt, err := s.jwt.Issue(user.ID, org.ID, org.Plan, user.DefaultScopes())
	if err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return
	}
	NewResponseWriter(w, r).Created(models.AuthTokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        *user,
		Org:         *org,
	})
}

// invalidLoginCredentials is deliberately indistinguishable between
// "unknown org", "unknown email", and "wrong password" so login cannot be
// used to enumerate either organizations or accounts.
func invalidLoginCredentials() *apierr.Error {
	return apierr.New(apierr.KindMalformedCredential, "invalid organization, email, or password")
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
