// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/tunetrail/serving/internal/repository"
)

// DefaultLastUsedQueueSize bounds the in-flight last-used-at updates
// LastUsedWriterService holds before Enqueue starts dropping.
const DefaultLastUsedQueueSize = 256

// lastUsedWriteTimeout bounds a single UpdateApiKeyLastUsed call.
const lastUsedWriteTimeout = 5 * time.Second

// lastUsedUpdate is one queued last-used-at write.
type lastUsedUpdate struct {
	keyID    string
	clientIP string
	at       time.Time
}

// LastUsedWriterService is the background consumer of API-key last-used-at
// updates: Verify enqueues one per successful authentication instead of
// writing inline, and this service drains the queue on its own schedule. It
// implements suture.Service so the supervisor tree's background layer owns
// its lifecycle, the same shape as recommend.FlusherService and
// session.SweeperService.
type LastUsedWriterService struct {
	repo   repository.ApiKeys
	queue  chan lastUsedUpdate
	logger *slog.Logger
}

// NewLastUsedWriterService constructs a LastUsedWriterService. queueSize <=
// 0 uses DefaultLastUsedQueueSize.
func NewLastUsedWriterService(repo repository.ApiKeys, queueSize int, logger *slog.Logger) *LastUsedWriterService {
	if queueSize <= 0 {
		queueSize = DefaultLastUsedQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LastUsedWriterService{
		repo:   repo,
		queue:  make(chan lastUsedUpdate, queueSize),
		logger: logger,
	}
}

// String satisfies suture's named-service convention for log output.
func (w *LastUsedWriterService) String() string {
	return "auth.LastUsedWriterService"
}

// Enqueue submits a last-used-at update. The queue is bounded; a full queue
// drops the update rather than block the authentication hot path, the same
// trade-off the impression buffer makes under overflow.
func (w *LastUsedWriterService) Enqueue(keyID, clientIP string, at time.Time) {
	select {
	case w.queue <- lastUsedUpdate{keyID: keyID, clientIP: clientIP, at: at}:
	default:
		w.logger.Warn("last-used-at update queue full, dropping", "key_id", keyID)
	}
}

// Serve drains the queue until ctx is cancelled, then drains whatever
// remains buffered before returning.
func (w *LastUsedWriterService) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drainRemaining()
			return nil
		case u := <-w.queue:
			w.writeOne(u)
		}
	}
}

func (w *LastUsedWriterService) drainRemaining() {
	for {
		select {
		case u := <-w.queue:
			w.writeOne(u)
		default:
			return
		}
	}
}

func (w *LastUsedWriterService) writeOne(u lastUsedUpdate) {
	writeCtx, cancel := context.WithTimeout(context.Background(), lastUsedWriteTimeout)
	defer cancel()
	if err := w.repo.UpdateApiKeyLastUsed(writeCtx, u.keyID, u.clientIP); err != nil {
		w.logger.Error("api key last-used update failed", "key_id", u.keyID, "error", err)
	}
}
