// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/repository"
)

// SweeperService is the background expiry sweep: every interval it
// enumerates cache entries tagged session:active:* and expires any
// session whose last heartbeat is older than idleTimeout. It implements
// suture.Service so the supervisor tree's background layer can own its
// lifecycle and restart it on panic/crash without affecting the API
// layer's ability to keep serving cached recommendations.
type SweeperService struct {
	manager  *Manager
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeperService constructs a SweeperService. interval <= 0 uses
// DefaultSweepInterval.
func NewSweeperService(manager *Manager, interval time.Duration, logger *slog.Logger) *SweeperService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SweeperService{manager: manager, interval: interval, logger: logger}
}

// String satisfies suture's named-service convention for log output.
func (s *SweeperService) String() string {
	return "session.SweeperService"
}

// Serve runs the sweep loop until ctx is cancelled.
func (s *SweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *SweeperService) sweepOnce(ctx context.Context) {
	keys := s.manager.cache.KeysByPrefix(activeKeyPrefix)
	now := s.manager.clock.Now()

	for _, key := range keys {
		sessionID := strings.TrimPrefix(key, activeKeyPrefix)
		sess, err := s.manager.repo.GetSession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.manager.cache.Delete(key)
			}
			continue
		}
		if sess.EndedAt != nil {
			s.manager.cache.Delete(key)
			continue
		}
		if now.Sub(sess.LastHeartbeatAt) < s.manager.idleTimeout {
			continue
		}
		s.manager.expire(ctx, sess, models.EndedByTimeout)
		s.logger.Info("session expired by sweep", "session_id", sessionID, "idle_for", now.Sub(sess.LastHeartbeatAt))
	}
}
