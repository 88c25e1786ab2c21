// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package recommend implements the Recommendation Dispatcher: fingerprint
// the request, serve a fresh cache entry if one exists, otherwise collapse
// concurrent callers for the same fingerprint onto a single engine call
// (golang.org/x/sync/singleflight), falling back to a stale cache entry
// when the engine call times out or errors. Every served track is recorded
// as an Impression through a bounded, best-effort buffer so the response
// never waits on that write; FlusherService drains the buffer on a
// background schedule.
package recommend
