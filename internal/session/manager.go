// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tunetrail/serving/internal/cache"
	"github.com/tunetrail/serving/internal/clock"
	"github.com/tunetrail/serving/internal/idgen"
	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/repository"
)

// DefaultIdleTimeout is the "no heartbeat within" window after which an
// Active session is considered Expired.
const DefaultIdleTimeout = 15 * time.Minute

// DefaultSweepInterval is how often SweeperService scans for expired
// sessions.
const DefaultSweepInterval = 60 * time.Second

// activeKeyPrefix tags cache entries the sweeper enumerates. The TTL on
// these entries is deliberately longer than idleTimeout (a safety margin
// over one sweep interval) so a session survives in the index until the
// sweeper has a chance to examine and expire it; the sweeper, not cache
// expiry, is what authoritatively decides a session is stale.
const activeKeyPrefix = "session:active:"

// ErrSessionNotFound is returned when the referenced session does not exist.
var ErrSessionNotFound = errors.New("session: not found")

// ErrSessionEnded is returned by Heartbeat against a session that is no
// longer Active.
var ErrSessionEnded = errors.New("session: already ended")

// Manager implements the Session Manager: Start/Heartbeat/End plus the
// summary computation the sweeper also uses on expiry.
type Manager struct {
	repo        repository.Sessions
	interactions repository.Interactions
	cache       *cache.Cache
	ids         idgen.Generator
	clock       clock.Clock
	idleTimeout time.Duration
}

// Store is the narrow repository surface Manager needs: session
// persistence plus read access to a session's interactions for summary
// computation.
type Store interface {
	repository.Sessions
	repository.Interactions
}

// NewManager constructs a Manager. idleTimeout <= 0 uses DefaultIdleTimeout.
func NewManager(store Store, c *cache.Cache, ids idgen.Generator, clk clock.Clock, idleTimeout time.Duration) *Manager {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Manager{repo: store, interactions: store, cache: c, ids: ids, clock: clk, idleTimeout: idleTimeout}
}

func (m *Manager) activeKey(sessionID string) string {
	return activeKeyPrefix + sessionID
}

func (m *Manager) cacheTTL() time.Duration {
	return m.idleTimeout + 5*DefaultSweepInterval
}

// Start begins a new listening session. If an Active session already
// exists for (userID, deviceID), it is transitioned to Expired first
// (EndedByReplace) and its summary finalized before the new one begins.
func (m *Manager) Start(ctx context.Context, userID string, req models.StartSessionRequest) (*models.Session, error) {
	if prior, err := m.repo.GetActiveSessionByDevice(ctx, userID, req.DeviceID); err == nil {
		m.expire(ctx, prior, models.EndedByReplace)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("session: lookup active session: %w", err)
	}

	now := m.clock.Now()
	s := &models.Session{
		ID:              m.ids.NewID(),
		UserID:          userID,
		DeviceID:        req.DeviceID,
		State:           models.SessionActive,
		StartedAt:       now,
		LastHeartbeatAt: now,
		DeviceType:      req.DeviceType,
		ClientContext:   req.ClientContext,
	}
	if err := m.repo.CreateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("session: create: %w", err)
	}
	m.cache.SetWithTTL(m.activeKey(s.ID), s.ID, m.cacheTTL())
	return s, nil
}

// Heartbeat refreshes a session's liveness and, if provided, its
// last-known playback position.
func (m *Manager) Heartbeat(ctx context.Context, sessionID string, req models.HeartbeatRequest) error {
	s, err := m.repo.GetSession(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("session: get: %w", err)
	}
	if s.State != models.SessionActive || s.EndedAt != nil {
		return ErrSessionEnded
	}

	var trackID string
	if req.CurrentTrackID != nil {
		trackID = *req.CurrentTrackID
	}
	var position int64
	if req.PositionMS != nil {
		position = *req.PositionMS
	}
	if err := m.repo.UpdateSessionHeartbeat(ctx, sessionID, trackID, position); err != nil {
		return fmt.Errorf("session: update heartbeat: %w", err)
	}
	m.cache.SetWithTTL(m.activeKey(sessionID), sessionID, m.cacheTTL())
	return nil
}

// End finalizes a session. Idempotent: ending an already-ended session
// returns the existing record without error. A session already idle past
// idleTimeout is finalized as EndedByTimeout/Expired regardless of the
// caller-supplied reason: the caller's End call didn't arrive in time to
// prevent the sweep from being the true cause, it just happened to
// observe it first.
func (m *Manager) End(ctx context.Context, sessionID string, reason models.EndedBy) (*models.Session, error) {
	s, err := m.repo.GetSession(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}
	if reason == "" {
		reason = models.EndedByUser
	}

	state := models.SessionEnded
	if m.clock.Now().Sub(s.LastHeartbeatAt) >= m.idleTimeout {
		state = models.SessionExpired
		reason = models.EndedByTimeout
	}

	if s.EndedAt == nil {
		summary := m.summarize(ctx, s)
		if err := m.repo.FinalizeSession(ctx, sessionID, state, reason, summary); err != nil {
			return nil, fmt.Errorf("session: finalize: %w", err)
		}
	}
	m.cache.Delete(m.activeKey(sessionID))
	return m.repo.GetSession(ctx, sessionID)
}

// expire finalizes a session as Expired, swallowing lookup/finalize
// errors since the caller (Start, or the sweeper) has no recovery path
// beyond logging; both call sites treat a stale session record as
// best-effort cleanup, not a hard dependency.
func (m *Manager) expire(ctx context.Context, s *models.Session, endedBy models.EndedBy) {
	summary := m.summarize(ctx, s)
	_ = m.repo.FinalizeSession(ctx, s.ID, models.SessionExpired, endedBy, summary)
	m.cache.Delete(m.activeKey(s.ID))
}

// summarize computes total_duration_ms, tracks_played, tracks_skipped,
// and completion_rate from interactions joined to the session.
func (m *Manager) summarize(ctx context.Context, s *models.Session) *models.SessionSummary {
	events, err := m.interactions.ListInteractionsBySession(ctx, s.ID)
	if err != nil {
		events = nil
	}

	var totalDurationMS int64
	var played, skipped, completed int
	for _, e := range events {
		var durationMS int64
		if e.PlayDurationMS != nil {
			durationMS = *e.PlayDurationMS
		}
		switch e.Type {
		case models.InteractionPlay:
			played++
			totalDurationMS += durationMS
		case models.InteractionComplete:
			played++
			completed++
			totalDurationMS += durationMS
		case models.InteractionSkip:
			skipped++
			totalDurationMS += durationMS
		}
	}

	var completionRate float64
	if attempts := played + skipped; attempts > 0 {
		completionRate = float64(completed) / float64(attempts)
	}

	return &models.SessionSummary{
		TotalDurationMS: totalDurationMS,
		TracksPlayed:    played,
		TracksSkipped:   skipped,
		CompletionRate:  completionRate,
		FinalizedAt:     m.clock.Now(),
	}
}
