// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package models

import "time"

// Impression is an append-only record that a specific track was shown to
// a user as part of a recommendation. Post-hoc flags (Clicked/Played/
// Liked) are updated — atomically, idempotently, set-true-once — by the
// Interaction Ingestor when a matching event references RecommendationID.
type Impression struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	TrackID          string `json:"track_id"`
	RecommendationID string `json:"recommendation_id"`

	ModelType    string  `json:"model_type"`
	ModelVersion string  `json:"model_version"`
	Score        float64 `json:"score"`
	Position     int     `json:"position"`
	Reason       string  `json:"reason,omitempty"`

	Context map[string]string `json:"context,omitempty"`

	ShownAt time.Time `json:"shown_at"`

	Clicked bool `json:"clicked"`
	Played  bool `json:"played"`
	Liked   bool `json:"liked"`
}

// ApplyFeedback sets Clicked/Played/Liked true-once according to signal.
// Returns whether any flag transitioned (false if already set, making the
// caller's write idempotent).
func (imp *Impression) ApplyFeedback(signal FeedbackSignal) bool {
	switch signal {
	case FeedbackAccept:
		if imp.Clicked {
			return false
		}
		imp.Clicked = true
		return true
	case FeedbackPlayed:
		if imp.Played {
			return false
		}
		imp.Played = true
		return true
	case FeedbackSaved:
		if imp.Liked {
			return false
		}
		imp.Liked = true
		return true
	default:
		return false
	}
}

// FeedbackSignal is the closed set of signals the feedback endpoint
// accepts.
type FeedbackSignal string

const (
	FeedbackAccept   FeedbackSignal = "accept"
	FeedbackReject   FeedbackSignal = "reject"
	FeedbackPlayed   FeedbackSignal = "played"
	FeedbackSaved    FeedbackSignal = "saved"
	FeedbackDismissed FeedbackSignal = "dismissed"
)

// IsValidFeedbackSignal reports whether s is a known feedback signal.
func IsValidFeedbackSignal(s FeedbackSignal) bool {
	switch s {
	case FeedbackAccept, FeedbackReject, FeedbackPlayed, FeedbackSaved, FeedbackDismissed:
		return true
	}
	return false
}

// FeedbackRequest is the body of POST /ml/recommendations/feedback.
type FeedbackRequest struct {
	RecommendationID string         `json:"recommendation_id" validate:"required"`
	Signal           FeedbackSignal `json:"signal" validate:"required"`
	Reason           string         `json:"reason,omitempty" validate:"max=500"`
}

// ImpressionBatchRequest is the body of POST /impressions/recommendations,
// used by the engine boundary (or a test harness) to record impressions
// out of band from a live Recommend call.
type ImpressionBatchRequest struct {
	RecommendationID string              `json:"recommendation_id" validate:"required"`
	ModelType        string              `json:"model_type" validate:"required"`
	ModelVersion     string              `json:"model_version" validate:"required"`
	Tracks           []ImpressionTrack   `json:"tracks" validate:"required,min=1,dive"`
}

// ImpressionTrack is one ranked entry within an impression batch.
type ImpressionTrack struct {
	TrackID  string  `json:"track_id" validate:"required"`
	Score    float64 `json:"score"`
	Position int     `json:"position" validate:"min=1"`
	Reason   string  `json:"reason,omitempty"`
}
