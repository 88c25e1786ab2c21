// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tunetrail/serving/internal/models"
)

// OpenDuckDB opens (or creates) a DuckDB file at path for API-key usage
// aggregation. A path of ":memory:" is valid and useful for tests.
func OpenDuckDB(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("repository: open duckdb at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("repository: ping duckdb at %s: %w", path, err)
	}
	return db, nil
}

// DuckDBUsageStore persists the API-key usage log to DuckDB and answers
// GET /api-keys/{id}/usage with an aggregate query instead of an
// in-process scan, so the log can grow past what Memory's per-process
// slice is suited to hold.
type DuckDBUsageStore struct {
	db *sql.DB
}

// NewDuckDBUsageStore wraps db. The caller must call CreateTable once
// before first use.
func NewDuckDBUsageStore(db *sql.DB) *DuckDBUsageStore {
	return &DuckDBUsageStore{db: db}
}

// CreateTable creates the api_key_usage table if it doesn't exist.
func (s *DuckDBUsageStore) CreateTable(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS api_key_usage (
			key_id           TEXT NOT NULL,
			timestamp        TIMESTAMPTZ NOT NULL,
			endpoint         TEXT NOT NULL,
			method           TEXT NOT NULL,
			status_code      INTEGER NOT NULL,
			ip_address       TEXT,
			response_time_ms INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_api_key_usage_key_id ON api_key_usage(key_id);
		CREATE INDEX IF NOT EXISTS idx_api_key_usage_timestamp ON api_key_usage(timestamp DESC);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("repository: create api_key_usage table: %w", err)
	}
	return nil
}

// Append inserts one usage log row.
func (s *DuckDBUsageStore) Append(ctx context.Context, entry *models.ApiKeyUsageEntry) error {
	const insert = `
		INSERT INTO api_key_usage (key_id, timestamp, endpoint, method, status_code, ip_address, response_time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, insert,
		entry.KeyID, entry.Timestamp, entry.Endpoint, entry.Method,
		entry.StatusCode, entry.IPAddress, entry.ResponseTimeMS,
	)
	if err != nil {
		return fmt.Errorf("repository: append api key usage: %w", err)
	}
	return nil
}

// Summarize aggregates the usage log for keyID with a single GROUP-BY-free
// aggregate query: total requests, error count, and the window the log
// spans, plus the timestamp of the most recent row.
func (s *DuckDBUsageStore) Summarize(ctx context.Context, keyID string) (*models.ApiKeyUsageSummary, error) {
	const query = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status_code >= 400),
			MIN(timestamp),
			MAX(timestamp)
		FROM api_key_usage
		WHERE key_id = ?
	`
	summary := &models.ApiKeyUsageSummary{KeyID: keyID}

	var windowStart, windowEnd sql.NullTime
	row := s.db.QueryRowContext(ctx, query, keyID)
	if err := row.Scan(&summary.TotalRequests, &summary.ErrorCount, &windowStart, &windowEnd); err != nil {
		return nil, fmt.Errorf("repository: summarize api key usage: %w", err)
	}
	if summary.TotalRequests == 0 {
		return summary, nil
	}
	summary.WindowStart = windowStart.Time
	summary.WindowEnd = windowEnd.Time
	last := windowEnd.Time
	summary.LastUsedAt = &last
	return summary, nil
}

// duckDBUsageRepository decorates a Repository, routing the API-key
// usage log through DuckDB while leaving every other entity on the
// wrapped Repository unchanged.
type duckDBUsageRepository struct {
	Repository
	usage *DuckDBUsageStore
}

// NewDuckDBUsageRepository decorates inner so AppendApiKeyUsage and
// SummarizeApiKeyUsage are served by usage instead of inner's own
// implementation. Every other method is promoted from inner untouched.
func NewDuckDBUsageRepository(inner Repository, usage *DuckDBUsageStore) Repository {
	return &duckDBUsageRepository{Repository: inner, usage: usage}
}

func (d *duckDBUsageRepository) AppendApiKeyUsage(ctx context.Context, entry *models.ApiKeyUsageEntry) error {
	return d.usage.Append(ctx, entry)
}

func (d *duckDBUsageRepository) SummarizeApiKeyUsage(ctx context.Context, keyID string) (*models.ApiKeyUsageSummary, error) {
	return d.usage.Summarize(ctx, keyID)
}
