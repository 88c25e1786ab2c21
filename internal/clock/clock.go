// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package clock provides an injectable monotonic time source, letting
// tests exercise session idle-timeout, rate-limit window boundaries, and
// key-rotation grace periods deterministically instead of racing the wall
// clock. Production code wires the wall-clock implementation backed by
// github.com/juju/clock; tests use its in-memory testclock.Clock.
package clock

import (
	"time"

	jujuclock "github.com/juju/clock"
)

// Clock abstracts time access. It is a thin alias over jujuclock.Clock so
// the rest of the serving plane depends on this package, not directly on
// the third-party import path, while still getting a real, widely used
// fakeable clock rather than a hand-rolled one.
type Clock = jujuclock.Clock

// Wall returns the real wall-clock implementation.
func Wall() Clock {
	return jujuclock.WallClock
}

// After is a convenience wrapper around Clock.After for callers that only
// need a single timer without importing jujuclock directly.
func After(c Clock, d time.Duration) <-chan time.Time {
	return c.After(d)
}

// NextWindowBoundary returns the next aligned boundary for a fixed window
// of length window, measured from the Unix epoch — e.g. with a 1-minute
// window and now = 12:03:27, returns 12:04:00. Used by the Quota & Rate
// Gate to compute retry_after for QUOTA_EXCEEDED and by fixed-window
// counter key construction.
func NextWindowBoundary(now time.Time, window time.Duration) time.Time {
	if window <= 0 {
		return now
	}
	epoch := now.Unix()
	windowSecs := int64(window / time.Second)
	if windowSecs <= 0 {
		windowSecs = 1
	}
	nextAligned := ((epoch / windowSecs) + 1) * windowSecs
	return time.Unix(nextAligned, 0).UTC()
}

// WindowStart returns the start of the current aligned window containing
// now, used to build the `quota:{bucket}:{org_id}:{window-aligned-timestamp}`
// cache key.
func WindowStart(now time.Time, window time.Duration) time.Time {
	if window <= 0 {
		return now
	}
	windowSecs := int64(window / time.Second)
	if windowSecs <= 0 {
		windowSecs = 1
	}
	aligned := (now.Unix() / windowSecs) * windowSecs
	return time.Unix(aligned, 0).UTC()
}
