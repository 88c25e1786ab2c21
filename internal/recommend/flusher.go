// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend

import (
	"context"
	"log/slog"
	"time"

	"github.com/tunetrail/serving/internal/repository"
)

// DefaultFlushInterval is how often FlusherService drains the impression
// buffer to the Repository.
const DefaultFlushInterval = 5 * time.Second

// shutdownFlushTimeout bounds the final drain performed when Serve's
// context is cancelled, consistent with the supervisor tree's default
// shutdown deadline.
const shutdownFlushTimeout = 10 * time.Second

// FlusherService is the background consumer of the impression buffer. It
// implements suture.Service so the supervisor tree's background layer owns
// its lifecycle independently of the API layer.
type FlusherService struct {
	buffer   *ImpressionBuffer
	repo     repository.Impressions
	interval time.Duration
	logger   *slog.Logger
}

// NewFlusherService constructs a FlusherService. interval <= 0 uses
// DefaultFlushInterval.
func NewFlusherService(buffer *ImpressionBuffer, repo repository.Impressions, interval time.Duration, logger *slog.Logger) *FlusherService {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FlusherService{buffer: buffer, repo: repo, interval: interval, logger: logger}
}

// String satisfies suture's named-service convention for log output.
func (f *FlusherService) String() string {
	return "recommend.FlusherService"
}

// Serve drains the buffer on a fixed interval until ctx is cancelled, then
// performs one final bounded drain before returning.
func (f *FlusherService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
			f.flushOnce(shutdownCtx)
			cancel()
			return nil
		case <-ticker.C:
			f.flushOnce(ctx)
		}
	}
}

func (f *FlusherService) flushOnce(ctx context.Context) {
	batch := f.buffer.Drain()
	if len(batch) == 0 {
		return
	}
	if err := f.repo.CreateImpressions(ctx, batch); err != nil {
		f.logger.Error("impression flush failed", "count", len(batch), "error", err)
		return
	}
	if dropped := f.buffer.Dropped(); dropped > 0 {
		f.logger.Warn("impression buffer has dropped entries since startup", "dropped_total", dropped)
	}
}
