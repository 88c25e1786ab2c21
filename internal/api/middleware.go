// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"net/http"
	"time"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/auth"
	"github.com/tunetrail/serving/internal/authz"
	"github.com/tunetrail/serving/internal/models"
)

// chiMiddleware adapts an http.HandlerFunc-style middleware to chi's
// func(http.Handler) http.Handler, so handlers written against the
// simpler signature compose with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// authenticate resolves a Principal via the MultiAuthenticator chain and
// attaches it to the request context, or fails the request with the
// typed *apierr.Error the chain produced. For a key-authenticated
// request it also records a usage log entry, the same way
// middleware.PrometheusMetrics records a status-coded latency sample.
func (s *Server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := s.authenticator.Authenticate(r.Context(), r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if principal.AuthMethod != models.AuthMethodAPIKey || s.usageWriter == nil {
			next(w, r.WithContext(contextWithPrincipal(r.Context(), principal)))
			return
		}

		start := time.Now()
		sw := &statusCapturingWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(sw, r.WithContext(contextWithPrincipal(r.Context(), principal)))
		s.usageWriter.Enqueue(auth.UsageRecord{
			KeyID:          principal.KeyID,
			Timestamp:      s.clock.Now(),
			Endpoint:       r.URL.Path,
			Method:         r.Method,
			StatusCode:     sw.statusCode,
			IPAddress:      r.RemoteAddr,
			ResponseTimeMS: int(time.Since(start).Milliseconds()),
		})
	}
}

// statusCapturingWriter wraps an http.ResponseWriter to capture the
// status code written, the same shape as
// middleware.metricsResponseWriter but scoped to the api package since
// it only serves the API-key usage log, not the global Prometheus
// request histogram.
type statusCapturingWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusCapturingWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// gate enforces scope authorization and plan/feature/quota limits for op,
// writing the resulting rate-limit headers on success. Must run after
// authenticate, which is what places the Principal in context.
func (s *Server) gate(op authz.Operation) func(http.Handler) http.Handler {
	return chiMiddleware(func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal, ok := principalFromContext(r.Context())
			if !ok {
				s.writeError(w, r, apierr.New(apierr.KindMalformedCredential, "no authenticated principal"))
				return
			}

			if err := s.authz.Authorize(r.Context(), principal, op); err != nil {
				s.writeError(w, r, err)
				return
			}

			decision, err := s.quota.Check(r.Context(), principal, string(op))
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			writeRateLimitHeaders(w, decision)

			next(w, r)
		}
	})
}

// writeError renders err as an envelope, wrapping a non-*apierr.Error as
// an opaque internal error.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)
	if apiErr, ok := apierr.As(err); ok {
		rw.Fail(apiErr)
		return
	}
	rw.InternalError(err)
}
