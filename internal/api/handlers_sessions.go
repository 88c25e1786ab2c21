// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/session"
)

// StartSession serves POST /sessions/start. Starting a session for a
// device that already has one active transitions the prior session to
// Expired with reason EndedByReplace before the new one is created.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		s.writeError(w, r, apierr.New(apierr.KindMalformedCredential, "no authenticated principal"))
		return
	}

	var req models.StartSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sess, err := s.sessions.Start(r.Context(), principal.UserID, req)
	if err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return
	}

	NewResponseWriter(w, r).Created(sess)
}

// HeartbeatSession serves PUT /sessions/{id}/heartbeat.
func (s *Server) HeartbeatSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req models.HeartbeatRequest
	if r.ContentLength != 0 {
		if !decodeAndValidate(w, r, &req) {
			return
		}
	}

	err := s.sessions.Heartbeat(r.Context(), sessionID, req)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		s.writeError(w, r, apierr.NotFound("session"))
		return
	case errors.Is(err, session.ErrSessionEnded):
		s.writeError(w, r, apierr.New(apierr.KindStaleEvent, "session has already ended"))
		return
	case err != nil:
		NewResponseWriter(w, r).InternalError(err)
		return
	}

	NewResponseWriter(w, r).NoContent()
}

// EndSession serves POST /sessions/{id}/end. Ending is idempotent: ending
// an already-ended session returns its existing summary rather than an
// error.
func (s *Server) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req models.EndSessionRequest
	if r.ContentLength != 0 {
		if !decodeAndValidate(w, r, &req) {
			return
		}
	}
	reason := req.Reason
	if reason == "" {
		reason = models.EndedByUser
	}

	sess, err := s.sessions.End(r.Context(), sessionID, reason)
	if errors.Is(err, session.ErrSessionNotFound) {
		s.writeError(w, r, apierr.NotFound("session"))
		return
	}
	if err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return
	}

	NewResponseWriter(w, r).Success(sess)
}
