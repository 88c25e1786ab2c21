// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package engine defines the recommendation-engine boundary the
// Dispatcher calls through; the actual ranking models run out of
// process in production and are out of scope for this serving plane.
// Engine is the seam a real model-serving backend plugs into; Static is
// a reference implementation good enough for local development and
// tests: train from interactions, predict against a candidate set
// using popularity and co-visitation.
package engine

import (
	"context"
	"time"

	"github.com/tunetrail/serving/internal/models"
)

// Engine produces ranked tracks for a single recommendation request. A
// call must return within the Dispatcher's bounded timeout; Engine
// implementations should respect ctx cancellation rather than relying on
// the caller to abandon a slow call.
type Engine interface {
	Recommend(ctx context.Context, req models.RecommendationRequest) (models.RankedTracks, error)
}

// Interaction is the minimal shape the Static engine trains on, decoupled
// from models.Interaction so the engine boundary does not require a
// Repository dependency.
type Interaction struct {
	UserID     string
	TrackID    string
	Type       models.InteractionType
	Confidence float64
	Timestamp  time.Time
}
