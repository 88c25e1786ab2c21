// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/authz"
	"github.com/tunetrail/serving/internal/metrics"
	"github.com/tunetrail/serving/internal/middleware"
)

// Router builds the serving plane's HTTP surface: one route group per
// resource family, each wrapped in s.authenticate and the per-operation
// s.gate(op) that enforces scopes and quota.
func (s *Server) Router(corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack, applied to every route including
	// /metrics and /swagger.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(s.perfMon.Middleware)
	r.Use(chiMiddleware(middleware.Compression))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "X-Api-Key", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		// Unauthenticated: registration and login issue the session
		// bearer token everything else requires. IP-rate-limited since
		// there is no principal yet for the Quota & Rate Gate to key on.
		r.Group(func(r chi.Router) {
			if s.authRateLimitRequests > 0 {
				r.Use(httprate.Limit(
					s.authRateLimitRequests, s.authRateLimitWindow,
					httprate.WithKeyFuncs(httprate.KeyByIP),
					httprate.WithLimitHandler(authRateLimitExceeded),
				))
			}
			r.Post("/auth/register", s.Register)
			r.Post("/auth/login", s.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware(s.authenticate))

			r.With(s.gate(authz.OpApiKeyIssue)).Post("/api-keys", s.CreateAPIKey)
			r.With(s.gate(authz.OpApiKeyList)).Get("/api-keys", s.ListAPIKeys)
			r.With(s.gate(authz.OpApiKeyRotate)).Post("/api-keys/{id}/rotate", s.RotateAPIKey)
			r.With(s.gate(authz.OpApiKeyRevoke)).Post("/api-keys/{id}/revoke", s.RevokeAPIKey)
			r.With(s.gate(authz.OpApiKeyUsage)).Get("/api-keys/{id}/usage", s.APIKeyUsage)

			r.With(s.gate(authz.OpRecommendationsGet)).Get("/recommendations", s.GetRecommendations)
			r.With(s.gate(authz.OpRecommendationsSimilar)).Get("/recommendations/similar/{track_id}", s.GetSimilarTracks)
			r.With(s.gate(authz.OpDailyMix)).Get("/ml/daily-mix", s.GetDailyMix)
			r.With(s.gate(authz.OpRadio)).Post("/ml/radio", s.PostRadio)
			r.With(s.gate(authz.OpTasteProfile)).Get("/ml/taste-profile", s.GetTasteProfile)
			r.With(s.gate(authz.OpRecommendationFeedback)).Post("/ml/recommendations/feedback", s.PostRecommendationFeedback)

			r.With(s.gate(authz.OpSessionStart)).Post("/sessions/start", s.StartSession)
			r.With(s.gate(authz.OpSessionHeartbeat)).Put("/sessions/{id}/heartbeat", s.HeartbeatSession)
			r.With(s.gate(authz.OpSessionEnd)).Post("/sessions/{id}/end", s.EndSession)

			r.With(s.gate(authz.OpInteractionCreate)).Post("/interactions", s.CreateInteraction)
			r.With(s.gate(authz.OpInteractionBatch)).Post("/interactions/batch", s.CreateInteractionBatch)

			r.With(s.gate(authz.OpImpressionFeedback)).Post("/impressions/recommendations", s.CreateImpressionBatch)
		})
	})

	r.Get("/health", s.Health)
	r.Get("/debug/performance", s.PerformanceStats)
	r.Get("/debug/live-feed", s.LiveFeed)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}

// authRateLimitExceeded handles a request rejected by the pre-authentication
// per-IP limiter on /auth/register and /auth/login, where there is no
// Principal yet for the usual Quota & Rate Gate error path to key on.
func authRateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	metrics.RecordRateLimitHit("auth_ip")
	NewResponseWriter(w, r).Fail(&apierr.Error{
		Kind:       apierr.KindQuotaExceeded,
		Message:    "too many authentication attempts from this address, try again shortly",
		RetryAfter: time.Minute,
	})
}
