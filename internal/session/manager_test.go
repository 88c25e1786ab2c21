// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package session

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock/testclock"

	"github.com/tunetrail/serving/internal/cache"
	"github.com/tunetrail/serving/internal/idgen"
	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/repository"
)

func newTestManager(t *testing.T, now time.Time) (*Manager, *testclock.Clock) {
	t.Helper()
	repo := repository.NewMemory()
	clk := testclock.NewClock(now)
	mgr := NewManager(repo, cache.New(time.Hour), &idgen.Sequential{Prefix: "sess_"}, clk, DefaultIdleTimeout)
	return mgr, clk
}

func TestStartThenHeartbeatKeepsSessionActive(t *testing.T) {
	mgr, clk := newTestManager(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	s, err := mgr.Start(ctx, "user_1", models.StartSessionRequest{DeviceID: "device_1", DeviceType: models.DeviceMobile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clk.Advance(5 * time.Minute)
	trackID := "track_1"
	position := int64(1000)
	if err := mgr.Heartbeat(ctx, s.ID, models.HeartbeatRequest{CurrentTrackID: &trackID, PositionMS: &position}); err != nil {
		t.Fatalf("unexpected heartbeat error: %v", err)
	}
}

func TestStartingNewSessionExpiresPriorActiveOnSameDevice(t *testing.T) {
	mgr, _ := newTestManager(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first, err := mgr.Start(ctx, "user_1", models.StartSessionRequest{DeviceID: "device_1", DeviceType: models.DeviceMobile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := mgr.Start(ctx, "user_1", models.StartSessionRequest{DeviceID: "device_1", DeviceType: models.DeviceMobile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("expected a new session id")
	}

	priorRow, err := mgr.repo.GetSession(ctx, first.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if priorRow.State != models.SessionExpired || priorRow.EndedBy != models.EndedByReplace {
		t.Errorf("expected prior session to be expired-by-replace, got state=%s endedBy=%s", priorRow.State, priorRow.EndedBy)
	}
}

func TestEndIsIdempotent(t *testing.T) {
	mgr, _ := newTestManager(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	s, err := mgr.Start(ctx, "user_1", models.StartSessionRequest{DeviceID: "device_1", DeviceType: models.DeviceMobile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := mgr.End(ctx, s.ID, models.EndedByUser); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := mgr.End(ctx, s.ID, models.EndedByUser)
	if err != nil {
		t.Fatalf("unexpected error on second end: %v", err)
	}
	if second.EndedBy != models.EndedByUser {
		t.Errorf("expected ended_by to remain %s, got %s", models.EndedByUser, second.EndedBy)
	}
}

func TestEndOnIdleSessionForcesTimeoutReason(t *testing.T) {
	mgr, clk := newTestManager(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	s, err := mgr.Start(ctx, "user_1", models.StartSessionRequest{DeviceID: "device_1", DeviceType: models.DeviceMobile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clk.Advance(DefaultIdleTimeout + time.Minute)

	ended, err := mgr.End(ctx, s.ID, models.EndedByUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ended.EndedBy != models.EndedByTimeout {
		t.Errorf("expected ended_by=%s for a session idle past timeout, got %s", models.EndedByTimeout, ended.EndedBy)
	}
	if ended.State != models.SessionExpired {
		t.Errorf("expected state=%s, got %s", models.SessionExpired, ended.State)
	}
}

func TestHeartbeatOnEndedSessionReturnsErrSessionEnded(t *testing.T) {
	mgr, _ := newTestManager(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	s, _ := mgr.Start(ctx, "user_1", models.StartSessionRequest{DeviceID: "device_1", DeviceType: models.DeviceMobile})
	if _, err := mgr.End(ctx, s.ID, models.EndedByUser); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mgr.Heartbeat(ctx, s.ID, models.HeartbeatRequest{}); err != ErrSessionEnded {
		t.Fatalf("expected ErrSessionEnded, got %v", err)
	}
}

func TestHeartbeatOnUnknownSessionReturnsErrSessionNotFound(t *testing.T) {
	mgr, _ := newTestManager(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := mgr.Heartbeat(context.Background(), "sess_missing", models.HeartbeatRequest{}); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSummarizeComputesCompletionRate(t *testing.T) {
	mgr, clk := newTestManager(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	s, _ := mgr.Start(ctx, "user_1", models.StartSessionRequest{DeviceID: "device_1", DeviceType: models.DeviceMobile})
	repo := mgr.repo.(*repository.Memory)
	completeMS, skipMS := int64(200000), int64(5000)
	_ = repo.CreateInteraction(ctx, &models.Interaction{ID: "i1", UserID: "user_1", TrackID: "t1", SessionID: s.ID, Type: models.InteractionComplete, CreatedAt: clk.Now(), PlayDurationMS: &completeMS})
	_ = repo.CreateInteraction(ctx, &models.Interaction{ID: "i2", UserID: "user_1", TrackID: "t2", SessionID: s.ID, Type: models.InteractionSkip, CreatedAt: clk.Now(), PlayDurationMS: &skipMS})

	ended, err := mgr.End(ctx, s.ID, models.EndedByUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ended.Summary == nil {
		t.Fatal("expected a summary to be computed")
	}
	if ended.Summary.TracksPlayed != 1 || ended.Summary.TracksSkipped != 1 {
		t.Errorf("unexpected summary: %+v", ended.Summary)
	}
	if ended.Summary.CompletionRate != 0.5 {
		t.Errorf("expected completion rate 0.5, got %f", ended.Summary.CompletionRate)
	}
}
