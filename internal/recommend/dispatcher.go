// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/cache"
	"github.com/tunetrail/serving/internal/clock"
	"github.com/tunetrail/serving/internal/engine"
	"github.com/tunetrail/serving/internal/idgen"
	"github.com/tunetrail/serving/internal/metrics"
	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/repository"
)

// engineBreakerName identifies the recommendation engine's circuit
// breaker in both its own Settings.Name and in circuit-breaker metrics.
const engineBreakerName = "recommendation-engine"

// DefaultFreshTTL is how long a cache entry is served without recomputation.
const DefaultFreshTTL = 5 * time.Minute

// DefaultStaleWhileError is how long past its fresh TTL a cache entry may
// still be served when the engine call fails or times out.
const DefaultStaleWhileError = time.Hour

// retryBackoffBase and retryBackoffJitter bound the single retry
// computeOrFallback attempts before giving up on an engine call: a short
// fixed wait plus up to retryBackoffJitter of random jitter, so a
// transient blip (a GC pause, a momentary connection hiccup) doesn't
// immediately trip the breaker or fall back to stale data.
const (
	retryBackoffBase   = 20 * time.Millisecond
	retryBackoffJitter = 30 * time.Millisecond
)

// Result is what the Dispatcher returns for a single Recommend call. A new
// RecommendationID is minted on every call (even a cache hit), since it
// identifies this particular showing of tracks for impression and
// feedback purposes, not the underlying ranking.
type Result struct {
	RecommendationID string
	Tracks           []models.ScoredTrack
	ModelType        string
	ModelVersion     string
	Stale            bool
}

// Store is the repository surface the Dispatcher needs: the impression
// log it records against and writes feedback onto, plus the interaction
// log a feedback signal also produces a record in.
type Store interface {
	repository.Impressions
	repository.Interactions
}

// Dispatcher implements the Recommendation Dispatcher: fingerprint, cache
// lookup, single-flighted engine call with stale-while-error fallback, and
// best-effort impression recording.
type Dispatcher struct {
	cache       *cache.Cache
	engine      engine.Engine
	buffer      *ImpressionBuffer
	impressions Store
	ids         idgen.Generator
	clock       clock.Clock

	timeouts        Timeouts
	freshTTL        time.Duration
	staleWhileError time.Duration

	sf      singleflight.Group
	breaker *gobreaker.CircuitBreaker[models.RankedTracks]
}

// NewDispatcher constructs a Dispatcher. A nil/zero timeouts, freshTTL, or
// staleWhileError falls back to its documented default.
func NewDispatcher(c *cache.Cache, eng engine.Engine, buffer *ImpressionBuffer, impressions Store, ids idgen.Generator, clk clock.Clock, timeouts Timeouts, freshTTL, staleWhileError time.Duration) *Dispatcher {
	if timeouts == nil {
		timeouts = DefaultTimeouts()
	}
	if freshTTL <= 0 {
		freshTTL = DefaultFreshTTL
	}
	if staleWhileError <= 0 {
		staleWhileError = DefaultStaleWhileError
	}
	return &Dispatcher{
		cache:           c,
		engine:          eng,
		buffer:          buffer,
		impressions:     impressions,
		ids:             ids,
		clock:           clk,
		timeouts:        timeouts,
		freshTTL:        freshTTL,
		staleWhileError: staleWhileError,
		breaker:         newEngineBreaker(),
	}
}

// newEngineBreaker trips open after 5 consecutive engine failures and
// stays open for 30s before allowing a single probe request through.
func newEngineBreaker() *gobreaker.CircuitBreaker[models.RankedTracks] {
	return gobreaker.NewCircuitBreaker[models.RankedTracks](gobreaker.Settings{
		Name:        engineBreakerName,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})
}

// Recommend implements the dispatch flow: fingerprint, cache lookup,
// single-flighted engine call on miss, stale fallback on engine failure,
// then a best-effort impression write for every returned track.
func (d *Dispatcher) Recommend(ctx context.Context, req models.RecommendationRequest) (Result, error) {
	key := fingerprint(req)

	if entry, ok := d.lookupFresh(key); ok {
		return d.recordAndRespond(req, entry, false), nil
	}

	v, err, _ := d.sf.Do(key, func() (interface{}, error) {
		return d.computeOrFallback(ctx, key, req)
	})
	if err != nil {
		return Result{}, err
	}

	entry := v.(*models.RecommendationCacheEntry)
	stale := !entry.IsFresh(d.clock.Now())
	return d.recordAndRespond(req, entry, stale), nil
}

// computeOrFallback runs inside the single-flight group: only one caller
// per fingerprint executes this at a time.
func (d *Dispatcher) computeOrFallback(ctx context.Context, key string, req models.RecommendationRequest) (*models.RecommendationCacheEntry, error) {
	// A concurrent computation may have completed and populated the cache
	// while this caller waited to enter the group.
	if entry, ok := d.lookupFresh(key); ok {
		return entry, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeouts.For(req.Kind))
	defer cancel()

	ranked, err := d.callEngine(callCtx, req)
	if err != nil {
		return d.staleFallback(key, err)
	}

	entry := &models.RecommendationCacheEntry{
		Key:          key,
		Tracks:       ranked.Tracks,
		ModelType:    ranked.ModelType,
		ModelVersion: ranked.ModelVersion,
		ProducedAt:   d.clock.Now(),
		TTL:          d.freshTTL,
	}
	// The cache entry must outlive its fresh TTL by the stale-while-error
	// horizon, otherwise it would be evicted before a later engine failure
	// could fall back to it.
	d.cache.SetWithTTL(key, entry, d.freshTTL+d.staleWhileError)
	return entry, nil
}

// callEngine runs the engine call through the circuit breaker. While the
// breaker is closed, a failed attempt is retried once after a short
// jittered backoff before counting against the breaker, since most
// engine failures at this layer are transient. An open breaker rejects
// immediately with gobreaker.ErrOpenState, short-circuiting straight to
// staleFallback instead of waiting out the timeout on a backend that is
// already known to be down.
func (d *Dispatcher) callEngine(ctx context.Context, req models.RecommendationRequest) (models.RankedTracks, error) {
	ranked, err := d.breaker.Execute(func() (models.RankedTracks, error) {
		ranked, err := d.engine.Recommend(ctx, req)
		if err == nil {
			return ranked, nil
		}
		if ctx.Err() != nil {
			return models.RankedTracks{}, err
		}

		jitter := time.Duration(rand.Int63n(int64(retryBackoffJitter)))
		select {
		case <-time.After(retryBackoffBase + jitter):
		case <-ctx.Done():
			return models.RankedTracks{}, err
		}
		return d.engine.Recommend(ctx, req)
	})

	switch {
	case err == nil:
		metrics.RecordCircuitBreakerRequest(engineBreakerName, "success")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordCircuitBreakerRequest(engineBreakerName, "rejected")
	default:
		metrics.RecordCircuitBreakerRequest(engineBreakerName, "failure")
	}
	return ranked, err
}

func (d *Dispatcher) staleFallback(key string, cause error) (*models.RecommendationCacheEntry, error) {
	raw, ok := d.cache.Get(key)
	if ok {
		if entry, ok := raw.(*models.RecommendationCacheEntry); ok && entry.IsStaleWithinHorizon(d.clock.Now(), d.staleWhileError) {
			return entry, nil
		}
	}
	return nil, apierr.Wrap(apierr.KindUpstreamUnavailable, "recommendation engine unavailable", cause)
}

func (d *Dispatcher) lookupFresh(key string) (*models.RecommendationCacheEntry, bool) {
	raw, ok := d.cache.Get(key)
	if !ok {
		return nil, false
	}
	entry, ok := raw.(*models.RecommendationCacheEntry)
	if !ok || !entry.IsFresh(d.clock.Now()) {
		return nil, false
	}
	return entry, true
}

// recordAndRespond mints a fresh RecommendationID for this showing, queues
// an Impression per track, and builds the Result. The impression write is
// enqueued to the buffer, never performed inline, so it cannot delay the
// response.
func (d *Dispatcher) recordAndRespond(req models.RecommendationRequest, entry *models.RecommendationCacheEntry, stale bool) Result {
	recID := d.ids.NewID()
	now := d.clock.Now()

	batch := make([]*models.Impression, 0, len(entry.Tracks))
	for i, t := range entry.Tracks {
		batch = append(batch, &models.Impression{
			ID:               d.ids.NewID(),
			UserID:           req.UserID,
			TrackID:          t.TrackID,
			RecommendationID: recID,
			ModelType:        entry.ModelType,
			ModelVersion:     entry.ModelVersion,
			Score:            t.Score,
			Position:         i + 1,
			Reason:           t.Reason,
			ShownAt:          now,
		})
	}
	d.buffer.Enqueue(batch...)

	return Result{
		RecommendationID: recID,
		Tracks:           entry.Tracks,
		ModelType:        entry.ModelType,
		ModelVersion:     entry.ModelVersion,
		Stale:            stale,
	}
}

// Feedback applies a client-reported feedback signal directly to the
// impression batch a recommendation produced. Unlike the Interaction
// Ingestor's write path, feedback signals are not derived from playback
// behavior and carry no session or duration validation; it never blocks on
// ML-side processing, so it writes through immediately.
func (d *Dispatcher) Feedback(ctx context.Context, principal *models.Principal, req models.FeedbackRequest) error {
	impressions, err := d.impressions.GetImpressionsByRecommendation(ctx, req.RecommendationID)
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

	changed, err := d.impressions.ApplyImpressionFeedback(ctx, req.RecommendationID, req.Signal)
	if err != nil {
		return fmt.Errorf("recommend: apply feedback: %w", err)
	}
	// A signal that didn't change any flag has already been recorded by an
	// earlier call (ApplyFeedback's set-true-once semantics); skip the
	// Interaction write so a retried feedback call yields a single record.
	if !changed {
		return nil
	}

	interactionType, ok := interactionTypeForSignal(req.Signal)
	if !ok {
		return nil
	}
	rec := &models.Interaction{
		ID:               d.ids.NewID(),
		UserID:           principal.UserID,
		TrackID:          impressions[0].TrackID,
		Type:             interactionType,
		CreatedAt:        d.clock.Now(),
		Source:           models.SourceRecommendation,
		RecommendationID: req.RecommendationID,
	}
	if err := d.impressions.CreateInteraction(ctx, rec); err != nil {
		return fmt.Errorf("recommend: record feedback interaction: %w", err)
	}
	return nil
}

// interactionTypeForSignal maps a feedback signal to the Interaction type
// it produces. "accept" and "dismissed" are impression-only acknowledgments
// and never materialize an Interaction of their own.
func interactionTypeForSignal(signal models.FeedbackSignal) (models.InteractionType, bool) {
	switch signal {
	case models.FeedbackPlayed:
		return models.InteractionPlay, true
	case models.FeedbackSaved:
		return models.InteractionSave, true
	case models.FeedbackReject:
		return models.InteractionDislike, true
	default:
		return "", false
	}
}
