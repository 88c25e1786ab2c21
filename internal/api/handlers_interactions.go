// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"net/http"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/livefeed"
	"github.com/tunetrail/serving/internal/models"
)

// CreateInteraction serves POST /interactions, a single play/skip/like/
// save event.
func (s *Server) CreateInteraction(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		s.writeError(w, r, apierr.New(apierr.KindMalformedCredential, "no authenticated principal"))
		return
	}

	var req models.IngestInteractionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.ingestor.Ingest(r.Context(), principal, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.broadcastLive(livefeed.EventInteraction, req)

	NewResponseWriter(w, r).Created(result)
}

// CreateInteractionBatch serves POST /interactions/batch. Events are
// applied in order; a hard failure (invalid event, stale client_seq)
// stops the batch at that event, while a soft duration-based downgrade
// never does.
func (s *Server) CreateInteractionBatch(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		s.writeError(w, r, apierr.New(apierr.KindMalformedCredential, "no authenticated principal"))
		return
	}

	var req models.IngestBatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.ingestor.IngestBatch(r.Context(), principal, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	NewResponseWriter(w, r).Created(result)
}
