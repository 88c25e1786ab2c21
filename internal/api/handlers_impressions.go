// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"net/http"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/models"
)

// CreateImpressionBatch serves POST /impressions/recommendations. This is
// the out-of-band twin of the recording the Recommendation Dispatcher
// does automatically on every Recommend call: it exists for callers (an
// offline batch recommender, a test harness) that produce rankings
// without going through the Dispatcher itself.
func (s *Server) CreateImpressionBatch(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		s.writeError(w, r, apierr.New(apierr.KindMalformedCredential, "no authenticated principal"))
		return
	}

	var req models.ImpressionBatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	now := s.clock.Now()
	impressions := make([]*models.Impression, 0, len(req.Tracks))
	for _, t := range req.Tracks {
		impressions = append(impressions, &models.Impression{
			ID:               s.ids.NewID(),
			UserID:           principal.UserID,
			TrackID:          t.TrackID,
			RecommendationID: req.RecommendationID,
			ModelType:        req.ModelType,
			ModelVersion:     req.ModelVersion,
			Score:            t.Score,
			Position:         t.Position,
			Reason:           t.Reason,
			ShownAt:          now,
		})
	}

	if err := s.impressions.CreateImpressions(r.Context(), impressions); err != nil {
		NewResponseWriter(w, r).InternalError(err)
		return
	}

	NewResponseWriter(w, r).Created(impressions)
}
