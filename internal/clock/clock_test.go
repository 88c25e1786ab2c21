// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package clock

import (
	"testing"
	"time"
)

func TestWindowStartAndNextBoundaryAreAligned(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 3, 27, 0, time.UTC)
	window := time.Minute

	start := WindowStart(now, window)
	next := NextWindowBoundary(now, window)

	if start.Second() != 0 || start.Minute() != 3 {
		t.Errorf("expected window start aligned to 12:03:00, got %v", start)
	}
	if next.Second() != 0 || next.Minute() != 4 {
		t.Errorf("expected next boundary at 12:04:00, got %v", next)
	}
	if next.Sub(start) != window {
		t.Errorf("expected exactly one window between start and next boundary, got %v", next.Sub(start))
	}
}

func TestNextWindowBoundaryDailyPeriodIsUTCMidnight(t *testing.T) {
	now := time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)
	next := NextWindowBoundary(now, 24*time.Hour)
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestWallClockNotNil(t *testing.T) {
	c := Wall()
	if c.Now().IsZero() {
		t.Error("wall clock should report a non-zero time")
	}
}
