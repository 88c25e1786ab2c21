// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"time"

	"github.com/tunetrail/serving/internal/auth"
	"github.com/tunetrail/serving/internal/authz"
	"github.com/tunetrail/serving/internal/clock"
	"github.com/tunetrail/serving/internal/idgen"
	"github.com/tunetrail/serving/internal/interaction"
	"github.com/tunetrail/serving/internal/livefeed"
	"github.com/tunetrail/serving/internal/middleware"
	"github.com/tunetrail/serving/internal/quota"
	"github.com/tunetrail/serving/internal/recommend"
	"github.com/tunetrail/serving/internal/repository"
	"github.com/tunetrail/serving/internal/session"
)

// Server holds every dependency the HTTP handlers need: the
// authentication chain, the authorization and quota gates, and the
// domain services each endpoint delegates to.
type Server struct {
	authenticator *auth.MultiAuthenticator
	authz         *authz.Enforcer
	quota         *quota.Gate

	jwt       *auth.JWTManager
	apiKeys   *auth.APIKeyManager
	sessions  *session.Manager
	ingestor  *interaction.Ingestor
	recommend *recommend.Dispatcher

	orgs        repository.Organizations
	users       repository.Users
	apiKeysRepo repository.ApiKeys
	impressions repository.Impressions

	ids   idgen.Generator
	clock clock.Clock

	perfMon     *middleware.PerformanceMonitor
	liveFeed    *livefeed.Hub
	usageWriter *auth.UsageWriterService

	apiKeyRotationGraceSeconds int64
	authRateLimitRequests      int
	authRateLimitWindow        time.Duration
}

// perfMonWindowSize is how many recent requests the performance monitor
// keeps for percentile calculations.
const perfMonWindowSize = 2000

// ServerConfig bundles the constructed dependencies NewServer wires
// together. Construction of each dependency (repositories, caches,
// engine, buffers) happens in cmd/server, not here.
type ServerConfig struct {
	Authenticator *auth.MultiAuthenticator
	Authz         *authz.Enforcer
	Quota         *quota.Gate

	JWT       *auth.JWTManager
	APIKeys   *auth.APIKeyManager
	Sessions  *session.Manager
	Ingestor  *interaction.Ingestor
	Recommend *recommend.Dispatcher

	Orgs        repository.Organizations
	Users       repository.Users
	APIKeysRepo repository.ApiKeys
	Impressions repository.Impressions

	IDs   idgen.Generator
	Clock clock.Clock

	// LiveFeed broadcasts interaction and feedback events to connected
	// operator dashboards. Nil disables the feature entirely.
	LiveFeed *livefeed.Hub
	// UsageWriter records the API-key usage log GET /api-keys/{id}/usage
	// aggregates. Nil disables usage recording; the endpoint still
	// answers, just always with a zero summary.
	UsageWriter *auth.UsageWriterService

	APIKeyRotationGraceSeconds int64
	// AuthRateLimitRequests/Window bound calls to /auth/register and
	// /auth/login per source IP. AuthRateLimitRequests <= 0 disables the
	// limiter.
	AuthRateLimitRequests int
	AuthRateLimitWindow   time.Duration
}

// broadcastLive best-effort broadcasts an operational event to any
// connected live-feed dashboards. A nil liveFeed (the feature disabled, or
// a test harness with no hub configured) makes this a no-op.
func (s *Server) broadcastLive(eventType string, data interface{}) {
	if s.liveFeed == nil {
		return
	}
	s.liveFeed.Broadcast(livefeed.Message{Type: eventType, Data: data})
}

// NewServer constructs a Server ready to be mounted by Router.
func NewServer(cfg ServerConfig) *Server {
	return &Server{
		authenticator: cfg.Authenticator,
		authz:         cfg.Authz,
		quota:         cfg.Quota,
		jwt:           cfg.JWT,
		apiKeys:       cfg.APIKeys,
		sessions:      cfg.Sessions,
		ingestor:      cfg.Ingestor,
		recommend:     cfg.Recommend,
		orgs:          cfg.Orgs,
		users:         cfg.Users,
		apiKeysRepo:   cfg.APIKeysRepo,
		impressions:   cfg.Impressions,
		ids:           cfg.IDs,
		clock:         cfg.Clock,

		perfMon:     middleware.NewPerformanceMonitor(perfMonWindowSize),
		liveFeed:    cfg.LiveFeed,
		usageWriter: cfg.UsageWriter,

		apiKeyRotationGraceSeconds: cfg.APIKeyRotationGraceSeconds,
		authRateLimitRequests:      cfg.AuthRateLimitRequests,
		authRateLimitWindow:        cfg.AuthRateLimitWindow,
	}
}
