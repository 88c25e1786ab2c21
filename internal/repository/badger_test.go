// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/tunetrail/serving/internal/models"
)

func newTestBadger(t *testing.T) *Badger {
	t.Helper()
	b, err := NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error opening badger store: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBadgerSessionRoundTrip(t *testing.T) {
	b := newTestBadger(t)
	ctx := context.Background()

	s := &models.Session{
		ID:              "sess_1",
		UserID:          "user_1",
		DeviceID:        "device_1",
		State:           models.SessionActive,
		StartedAt:       time.Now(),
		LastHeartbeatAt: time.Now(),
	}
	if err := b.CreateSession(ctx, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := b.GetSession(ctx, "sess_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != "user_1" {
		t.Errorf("expected user_1, got %s", got.UserID)
	}

	active, err := b.GetActiveSessionByDevice(ctx, "user_1", "device_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active.ID != "sess_1" {
		t.Errorf("expected sess_1, got %s", active.ID)
	}

	if err := b.UpdateSessionHeartbeat(ctx, "sess_1", "track_9", 4200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = b.GetSession(ctx, "sess_1")
	if got.LastKnownTrackID != "track_9" || got.LastPositionMS != 4200 {
		t.Errorf("heartbeat not applied: %+v", got)
	}

	if err := b.FinalizeSession(ctx, "sess_1", models.SessionEnded, models.EndedByUser, &models.SessionSummary{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = b.GetSession(ctx, "sess_1")
	if got.State != models.SessionEnded || got.EndedAt == nil {
		t.Errorf("expected finalized session, got %+v", got)
	}

	// A second finalize is a no-op, matching Memory's exactly-once rule.
	if err := b.FinalizeSession(ctx, "sess_1", models.SessionActive, models.EndedByTimeout, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = b.GetSession(ctx, "sess_1")
	if got.State != models.SessionEnded {
		t.Errorf("expected finalize to stay idempotent, got state %v", got.State)
	}
}

func TestBadgerGetActiveSessionByDeviceNotFoundAfterEnd(t *testing.T) {
	b := newTestBadger(t)
	ctx := context.Background()
	s := &models.Session{ID: "sess_2", UserID: "user_2", DeviceID: "device_2", State: models.SessionActive}
	if err := b.CreateSession(ctx, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.FinalizeSession(ctx, "sess_2", models.SessionEnded, models.EndedByUser, &models.SessionSummary{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.GetActiveSessionByDevice(ctx, "user_2", "device_2"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for ended session, got %v", err)
	}
}

func TestBadgerDelegatesOtherEntitiesToMemory(t *testing.T) {
	b := newTestBadger(t)
	ctx := context.Background()
	org := &models.Organization{ID: "org_1", Slug: "acme", Plan: models.PlanFree}
	if err := b.CreateOrganization(ctx, org); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := b.GetOrganization(ctx, "org_1")
	if err != nil || got.Slug != "acme" {
		t.Fatalf("expected delegated organization lookup to succeed, got %+v, err=%v", got, err)
	}
}
