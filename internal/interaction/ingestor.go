// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package interaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/clock"
	"github.com/tunetrail/serving/internal/idgen"
	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/repository"
)

// eventPublishTimeout bounds the best-effort external publish triggered
// by a successful Ingest; it never blocks the caller's response.
const eventPublishTimeout = 5 * time.Second

// EventPublisher is the external event-stream boundary an accepted
// interaction is best-effort published to, for consumers outside the
// serving plane (model training, analytics warehouses). Optional: a nil
// EventPublisher (the default) disables publishing entirely.
type EventPublisher interface {
	PublishInteraction(ctx context.Context, i *models.Interaction) error
}

// completeThreshold/skipThreshold are the duration-fraction cutoffs from
// the validation rules: below 0.8x duration a "complete" event downgrades
// to "play"; at/above 0.5x duration a "skip" event downgrades to "play".
const (
	completeThreshold = 0.8
	skipThreshold     = 0.5
	maxDurationFactor = 2.0
)

// Store is the repository surface the Ingestor needs.
type Store interface {
	repository.Sessions
	repository.Interactions
	repository.Impressions
}

// Ingestor implements the validated interaction write path.
type Ingestor struct {
	repo   Store
	tracks repository.TrackCatalog
	ids    idgen.Generator
	clock  clock.Clock
	events EventPublisher
}

// NewIngestor constructs an Ingestor.
func NewIngestor(repo Store, tracks repository.TrackCatalog, ids idgen.Generator, clk clock.Clock) *Ingestor {
	return &Ingestor{repo: repo, tracks: tracks, ids: ids, clock: clk}
}

// SetEventPublisher wires an external event stream to publish accepted
// interactions to. Unset by default, matching auth.APIKeyManager's
// SetLastUsedWriter: the constructor signature stays stable while the
// dependency stays optional.
func (g *Ingestor) SetEventPublisher(p EventPublisher) {
	g.events = p
}

// Ingest validates and persists a single interaction event.
func (g *Ingestor) Ingest(ctx context.Context, principal *models.Principal, req models.IngestInteractionRequest) (models.IngestResult, error) {
	if err := g.checkSessionOwnership(ctx, principal, req.SessionID, req.ClientSeq); err != nil {
		return models.IngestResult{}, err
	}

	eventType, completionOverride, downgraded, downgradedFrom, err := g.applyDurationRules(ctx, req)
	if err != nil {
		return models.IngestResult{}, err
	}

	if req.RecommendationID != "" {
		if err := g.applyImpressionFeedback(ctx, principal, req.RecommendationID, eventType); err != nil {
			return models.IngestResult{}, err
		}
	}

	rec := &models.Interaction{
		ID:                 g.ids.NewID(),
		UserID:             principal.UserID,
		TrackID:            req.TrackID,
		SessionID:          req.SessionID,
		Type:               eventType,
		CreatedAt:          g.clock.Now(),
		PlayDurationMS:     req.PlayDurationMS,
		PositionMS:         req.PositionMS,
		Source:             req.Source,
		SourceID:           req.SourceID,
		RecommendationID:   req.RecommendationID,
		DeviceType:         req.DeviceType,
		SkipReason:         req.SkipReason,
		Mood:               req.Mood,
		Activity:           req.Activity,
		CompletionOverride: completionOverride,
		ClientSeq:          req.ClientSeq,
		Extensions:         req.Extensions,
	}
	if err := g.repo.CreateInteraction(ctx, rec); err != nil {
		return models.IngestResult{}, fmt.Errorf("interaction: create: %w", err)
	}

	if g.events != nil {
		go func() {
			publishCtx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
			defer cancel()
			_ = g.events.PublishInteraction(publishCtx, rec)
		}()
	}

	return models.IngestResult{ID: rec.ID, Downgraded: downgraded, DowngradedFromType: downgradedFrom}, nil
}

// IngestBatch processes events in order, persisting each as it passes
// validation and stopping at the first hard error. Downgrades are soft
// and never stop the batch.
func (g *Ingestor) IngestBatch(ctx context.Context, principal *models.Principal, req models.IngestBatchRequest) (models.IngestBatchResult, error) {
	result := models.IngestBatchResult{}
	for _, event := range req.Events {
		r, err := g.Ingest(ctx, principal, event)
		if err != nil {
			return result, err
		}
		result.Accepted++
		result.Results = append(result.Results, r)
	}
	return result, nil
}

func (g *Ingestor) checkSessionOwnership(ctx context.Context, principal *models.Principal, sessionID string, clientSeq int64) error {
	if sessionID == "" {
		return nil
	}

	sess, err := g.repo.GetSession(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return apierr.New(apierr.KindValidationFailed, "unknown session_id")
	}
	if err != nil {
		return fmt.Errorf("interaction: get session: %w", err)
	}
	if sess.UserID != principal.UserID {
		return apierr.New(apierr.KindValidationFailed, "session_id does not belong to caller")
	}

	if clientSeq != 0 {
		lastSeq, err := g.repo.LastClientSeq(ctx, sessionID)
		if err == nil && clientSeq <= lastSeq {
			return apierr.New(apierr.KindStaleEvent, "client sequence number is not monotonic")
		}
	}
	return nil
}

// applyDurationRules bounds play_duration_ms against track duration (when
// known) and applies the complete->play / skip->play downgrade rules.
// A track with no registered duration skips bounds checking entirely:
// there is nothing to bound against.
func (g *Ingestor) applyDurationRules(ctx context.Context, req models.IngestInteractionRequest) (eventType models.InteractionType, completionOverride *bool, downgraded bool, downgradedFrom models.InteractionType, err error) {
	eventType = req.Type

	duration, durErr := g.tracks.GetTrackDurationMS(ctx, req.TrackID)
	if durErr != nil || req.PlayDurationMS == nil || duration <= 0 {
		return eventType, nil, false, "", nil
	}

	playMS := *req.PlayDurationMS
	if playMS < 0 || float64(playMS) > maxDurationFactor*float64(duration) {
		return eventType, nil, false, "", apierr.New(apierr.KindValidationFailed, "play_duration_ms out of bounds for track duration")
	}

	switch eventType {
	case models.InteractionComplete:
		if float64(playMS) < completeThreshold*float64(duration) {
			f := false
			return models.InteractionPlay, &f, true, models.InteractionComplete, nil
		}
	case models.InteractionSkip:
		if float64(playMS) >= skipThreshold*float64(duration) {
			return models.InteractionPlay, nil, true, models.InteractionSkip, nil
		}
	}
	return eventType, nil, false, "", nil
}

// applyImpressionFeedback links an interaction back to the impression it
// resulted from, set-true-once per feedback flag.
func (g *Ingestor) applyImpressionFeedback(ctx context.Context, principal *models.Principal, recommendationID string, eventType models.InteractionType) error {
	impressions, err := g.repo.GetImpressionsByRecommendation(ctx, recommendationID)
	if err != nil || len(impressions) == 0 {
		return apierr.New(apierr.KindValidationFailed, "unknown recommendation_id")
	}

	owned := false
	for _, imp := range impressions {
		if imp.UserID == principal.UserID {
			owned = true
			break
		}
	}
	if !owned {
		return apierr.New(apierr.KindValidationFailed, "recommendation_id does not belong to caller")
	}

	for _, signal := range feedbackSignalsFor(eventType) {
		if _, err := g.repo.ApplyImpressionFeedback(ctx, recommendationID, signal); err != nil {
			return fmt.Errorf("interaction: apply impression feedback: %w", err)
		}
	}
	return nil
}

// feedbackSignalsFor maps an accepted interaction type to the impression
// feedback flags it satisfies. Every event referencing a recommendation
// counts as having been clicked through to; play/complete additionally
// mark played, like/save additionally mark liked.
func feedbackSignalsFor(t models.InteractionType) []models.FeedbackSignal {
	switch t {
	case models.InteractionPlay, models.InteractionComplete:
		return []models.FeedbackSignal{models.FeedbackAccept, models.FeedbackPlayed}
	case models.InteractionLike, models.InteractionSave:
		return []models.FeedbackSignal{models.FeedbackAccept, models.FeedbackSaved}
	default:
		return []models.FeedbackSignal{models.FeedbackAccept}
	}
}
