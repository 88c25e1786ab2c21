// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/repository"
)

const DefaultUsageQueueSize = 512
const usageWriteTimeout = 5 * time.Second

// UsageRecord is one request's worth of API-key usage, as observed by
// the HTTP layer.
type UsageRecord struct {
	KeyID          string
	Timestamp      time.Time
	Endpoint       string
	Method         string
	StatusCode     int
	IPAddress      string
	ResponseTimeMS int
}

// UsageWriterService drains a bounded queue of per-request usage records
// into the Repository's usage log, same shape as LastUsedWriterService:
// the HTTP handler's hot path only ever does a non-blocking channel
// send, and a dropped record under backpressure costs nothing but a
// gap in an aggregate count nobody pages on.
type UsageWriterService struct {
	repo   repository.ApiKeys
	queue  chan UsageRecord
	logger *slog.Logger
}

func NewUsageWriterService(repo repository.ApiKeys, queueSize int, logger *slog.Logger) *UsageWriterService {
	if queueSize <= 0 {
		queueSize = DefaultUsageQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UsageWriterService{repo: repo, queue: make(chan UsageRecord, queueSize), logger: logger}
}

func (w *UsageWriterService) String() string { return "auth.UsageWriterService" }

// Enqueue submits rec for persistence. Non-blocking: a full queue drops
// rec and logs a warning rather than stalling the caller's request.
func (w *UsageWriterService) Enqueue(rec UsageRecord) {
	select {
	case w.queue <- rec:
	default:
		w.logger.Warn("api key usage queue full, dropping", "key_id", rec.KeyID)
	}
}

func (w *UsageWriterService) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drainRemaining()
			return nil
		case rec := <-w.queue:
			w.writeOne(rec)
		}
	}
}

func (w *UsageWriterService) drainRemaining() {
	for {
		select {
		case rec := <-w.queue:
			w.writeOne(rec)
		default:
			return
		}
	}
}

func (w *UsageWriterService) writeOne(rec UsageRecord) {
	writeCtx, cancel := context.WithTimeout(context.Background(), usageWriteTimeout)
	defer cancel()
	entry := &models.ApiKeyUsageEntry{
		KeyID: rec.KeyID, Timestamp: rec.Timestamp, Endpoint: rec.Endpoint,
		Method: rec.Method, StatusCode: rec.StatusCode, IPAddress: rec.IPAddress,
		ResponseTimeMS: rec.ResponseTimeMS,
	}
	if err := w.repo.AppendApiKeyUsage(writeCtx, entry); err != nil {
		w.logger.Error("api key usage append failed", "key_id", rec.KeyID, "error", err)
	}
}
