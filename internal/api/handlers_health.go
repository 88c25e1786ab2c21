// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"net/http"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/livefeed"
)

// Health serves GET /health, an unauthenticated liveness probe.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "ok"})
}

// PerformanceStats serves GET /debug/performance: per-endpoint request
// count and latency percentiles collected since process start, for
// operators diagnosing a slow deploy without reaching for Prometheus.
func (s *Server) PerformanceStats(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(s.perfMon.GetStats())
}

// LiveFeed serves GET /debug/live-feed, upgrading to a WebSocket that
// streams interaction and feedback events as they're accepted. Disabled
// (404) when the server was built without a live-feed hub. A failed
// upgrade is handled by gorilla/websocket itself, which writes its own
// HTTP error response before returning.
func (s *Server) LiveFeed(w http.ResponseWriter, r *http.Request) {
	if s.liveFeed == nil {
		s.writeError(w, r, apierr.NotFound("live feed"))
		return
	}
	_ = livefeed.ServeWS(s.liveFeed, w, r)
}
