// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package session

import (
	"context"
	"testing"
	"time"

	"github.com/tunetrail/serving/internal/models"
)

func TestSweepOnceExpiresStaleSession(t *testing.T) {
	mgr, clk := newTestManager(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	s, err := mgr.Start(ctx, "user_1", models.StartSessionRequest{DeviceID: "device_1", DeviceType: models.DeviceMobile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clk.Advance(DefaultIdleTimeout + time.Minute)

	sweeper := NewSweeperService(mgr, DefaultSweepInterval, nil)
	sweeper.sweepOnce(ctx)

	row, err := mgr.repo.GetSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.State != models.SessionExpired || row.EndedBy != models.EndedByTimeout {
		t.Errorf("expected expired-by-timeout, got state=%s endedBy=%s", row.State, row.EndedBy)
	}
}

func TestSweepOnceLeavesFreshSessionActive(t *testing.T) {
	mgr, clk := newTestManager(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	s, err := mgr.Start(ctx, "user_1", models.StartSessionRequest{DeviceID: "device_1", DeviceType: models.DeviceMobile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clk.Advance(DefaultIdleTimeout - time.Minute)

	sweeper := NewSweeperService(mgr, DefaultSweepInterval, nil)
	sweeper.sweepOnce(ctx)

	row, err := mgr.repo.GetSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.State != models.SessionActive {
		t.Errorf("expected session still active, got %s", row.State)
	}
}
