// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/livefeed"
	"github.com/tunetrail/serving/internal/models"
)

const defaultRecommendationLimit = 20

// recommendationQueryParams parses the shared ?limit=&model_tier_hint=
// query shape used by every recommendation-surface endpoint.
func recommendationQueryParams(r *http.Request) models.RecommendationQueryParams {
	params := models.RecommendationQueryParams{Limit: defaultRecommendationLimit}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			params.Limit = n
		}
	}
	if v := r.URL.Query().Get("model_tier_hint"); v != "" {
		hint := models.ModelTier(v)
		params.ModelTierHint = &hint
	}
	params.Seed = r.URL.Query().Get("seed")
	return params
}

func (s *Server) respondRecommendation(w http.ResponseWriter, r *http.Request, kind models.RecommendationKind, userID, seed string, limit int, hint *models.ModelTier) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		s.writeError(w, r, apierr.New(apierr.KindMalformedCredential, "no authenticated principal"))
		return
	}

	tier := models.ModelTierForPlan(principal.Plan)
	req := models.RecommendationRequest{
		Kind:          kind,
		UserID:        userID,
		Seed:          seed,
		Limit:         limit,
		ModelTier:     tier,
		ModelTierHint: hint,
	}

	result, err := s.recommend.Recommend(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	NewResponseWriter(w, r).Success(models.RankedTracks{
		Tracks:       result.Tracks,
		ModelType:    result.ModelType,
		ModelVersion: result.ModelVersion,
	})
}

// GetRecommendations serves GET /recommendations: a user's personalized
// feed.
func (s *Server) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		s.writeError(w, r, apierr.New(apierr.KindMalformedCredential, "no authenticated principal"))
		return
	}
	params := recommendationQueryParams(r)
	s.respondRecommendation(w, r, models.KindUserPersonal, principal.UserID, "", params.Limit, params.ModelTierHint)
}

// GetSimilarTracks serves GET /recommendations/similar/{track_id}.
func (s *Server) GetSimilarTracks(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		s.writeError(w, r, apierr.New(apierr.KindMalformedCredential, "no authenticated principal"))
		return
	}
	trackID := chi.URLParam(r, "track_id")
	params := recommendationQueryParams(r)
	s.respondRecommendation(w, r, models.KindSimilarToTrack, principal.UserID, trackID, params.Limit, params.ModelTierHint)
}

// GetDailyMix serves GET /ml/daily-mix, the Starter-plan-and-up curated
// daily playlist.
func (s *Server) GetDailyMix(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		s.writeError(w, r, apierr.New(apierr.KindMalformedCredential, "no authenticated principal"))
		return
	}
	params := recommendationQueryParams(r)
	s.respondRecommendation(w, r, models.KindDailyMix, principal.UserID, "", params.Limit, params.ModelTierHint)
}

// PostRadio serves POST /ml/radio, a seeded endless station.
func (s *Server) PostRadio(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		s.writeError(w, r, apierr.New(apierr.KindMalformedCredential, "no authenticated principal"))
		return
	}

	var body struct {
		Seed  string `json:"seed" validate:"required"`
		Limit int    `json:"limit,omitempty" validate:"omitempty,min=1,max=200"`
	}
	if !decodeAndValidate(w, r, &body) {
		return
	}
	limit := body.Limit
	if limit == 0 {
		limit = defaultRecommendationLimit
	}

	s.respondRecommendation(w, r, models.KindRadioSeed, principal.UserID, body.Seed, limit, nil)
}

// GetTasteProfile serves GET /ml/taste-profile, a Pro-plan-and-up summary
// of a listener's modeled preferences.
func (s *Server) GetTasteProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		s.writeError(w, r, apierr.New(apierr.KindMalformedCredential, "no authenticated principal"))
		return
	}
	params := recommendationQueryParams(r)
	s.respondRecommendation(w, r, models.KindTasteProfile, principal.UserID, "", params.Limit, params.ModelTierHint)
}

// PostRecommendationFeedback serves POST /ml/recommendations/feedback.
func (s *Server) PostRecommendationFeedback(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		s.writeError(w, r, apierr.New(apierr.KindMalformedCredential, "no authenticated principal"))
		return
	}

	var req models.FeedbackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.recommend.Feedback(r.Context(), principal, req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.broadcastLive(livefeed.EventFeedback, req)

	NewResponseWriter(w, r).NoContent()
}
