// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package main is the entry point for the TuneTrail serving plane.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, YAML file, environment variables (Koanf v2)
//  2. Repository: in-process Memory or disk-backed Badger, selected by DATABASE_DRIVER
//  3. Cache: the shared in-process TTL cache backing sessions and recommendations
//  4. Credential Verifier: JWT session tokens and API keys, chained by priority
//  5. Authorization Enforcer and Quota & Rate Gate
//  6. Session Manager, Interaction Ingestor, Recommendation Dispatcher
//  7. Supervisor tree: owns the session sweeper, impression flusher, API-key
//     last-used-at and usage-log writers, the live-feed hub, and the
//     HTTP server's lifecycle
//  8. HTTP server: REST API with Swagger documentation and Prometheus metrics
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tunetrail/serving/internal/api"
	"github.com/tunetrail/serving/internal/auth"
	"github.com/tunetrail/serving/internal/authz"
	"github.com/tunetrail/serving/internal/cache"
	"github.com/tunetrail/serving/internal/clock"
	"github.com/tunetrail/serving/internal/config"
	"github.com/tunetrail/serving/internal/engine"
	"github.com/tunetrail/serving/internal/eventbus"
	"github.com/tunetrail/serving/internal/idgen"
	"github.com/tunetrail/serving/internal/interaction"
	"github.com/tunetrail/serving/internal/livefeed"
	"github.com/tunetrail/serving/internal/logging"
	"github.com/tunetrail/serving/internal/metrics"
	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/quota"
	"github.com/tunetrail/serving/internal/recommend"
	"github.com/tunetrail/serving/internal/repository"
	"github.com/tunetrail/serving/internal/session"
	"github.com/tunetrail/serving/internal/supervisor"
	"github.com/tunetrail/serving/internal/supervisor/services"
)

// version is overridable at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Str("edition", string(cfg.Edition)).Msg("starting tunetrail serving plane")
	metrics.SetAppInfo(version, runtime.Version())
	startedAt := time.Now()
	go reportUptime(startedAt)

	repo, closeRepo, err := openRepository(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open repository")
	}
	defer closeRepo()

	clk := clock.Wall()
	ids := idgen.New()
	sharedCache := cache.New(cfg.Cache.DefaultTTL)

	jwtManager, err := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.SessionTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize jwt manager")
	}
	apiKeyManager := auth.NewAPIKeyManager(repo, ids, clk)
	lastUsedWriter := auth.NewLastUsedWriterService(repo, auth.DefaultLastUsedQueueSize, slog.Default())
	apiKeyManager.SetLastUsedWriter(lastUsedWriter)
	usageWriter := auth.NewUsageWriterService(repo, auth.DefaultUsageQueueSize, slog.Default())
	authChain := []auth.Authenticator{
		auth.NewJWTAuthenticator(jwtManager),
		auth.NewAPIKeyAuthenticator(apiKeyManager, repo),
	}
	if cfg.Security.OIDC.IssuerURL != "" {
		oidcAuth, err := auth.NewOIDCAuthenticator(context.Background(), oidcConfigFromApp(cfg.Security.OIDC), repo)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to initialize oidc authenticator")
		}
		authChain = append(authChain, oidcAuth)
	}
	authenticator := auth.NewMultiAuthenticator(authChain...)

	authEnforcer := authz.New(authz.DefaultCacheTTL)
	quotaGate := quota.NewGate(quota.DefaultPolicy(cfg.Quota.UpgradeURL), quota.NewCacheCounter(sharedCache), repo, clk)
	defer quotaGate.Close()

	sessionManager := session.NewManager(repo, sharedCache, ids, clk, cfg.Session.IdleTimeout)
	tracks, _ := repo.(repository.TrackCatalog)
	ingestor := interaction.NewIngestor(repo, tracks, ids, clk)

	eventPublisher, err := eventbus.NewPublisher(eventbus.DefaultConfig(cfg.EventBus.URL, cfg.EventBus.Subject))
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create event bus publisher")
	}
	if eventPublisher != nil {
		ingestor.SetEventPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	recEngine := engine.NewStatic()
	impressionBuffer := recommend.NewImpressionBuffer(cfg.Recommend.BufferCapacity)
	dispatcher := recommend.NewDispatcher(
		sharedCache, recEngine, impressionBuffer, repo, ids, clk,
		recommendTimeouts(cfg.Recommend),
		cfg.Recommend.FreshTTL, cfg.Recommend.StaleWhileError,
	)

	liveFeed := livefeed.NewHub()

	srv := api.NewServer(api.ServerConfig{
		Authenticator: authenticator,
		Authz:         authEnforcer,
		Quota:         quotaGate,
		JWT:           jwtManager,
		APIKeys:       apiKeyManager,
		Sessions:      sessionManager,
		Ingestor:      ingestor,
		Recommend:     dispatcher,
		Orgs:          repo,
		Users:         repo,
		APIKeysRepo:   repo,
		Impressions:   repo,
		IDs:           ids,
		Clock:         clk,
		LiveFeed:      liveFeed,
		UsageWriter:   usageWriter,

		APIKeyRotationGraceSeconds: cfg.Security.APIKeyRotationGraceSeconds,
		AuthRateLimitRequests:      cfg.Security.AuthRateLimitRequests,
		AuthRateLimitWindow:        cfg.Security.AuthRateLimitWindow,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Router(cfg.Security.CORSOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewSupervisorTree(slog.Default(), treeCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

	flushInterval := cfg.Recommend.FlushInterval
	tree.AddBackgroundService(recommend.NewFlusherService(impressionBuffer, repo, flushInterval, slog.Default()))
	tree.AddBackgroundService(session.NewSweeperService(sessionManager, cfg.Session.SweepInterval, slog.Default()))
	tree.AddBackgroundService(lastUsedWriter)
	tree.AddBackgroundService(usageWriter)
	tree.AddBackgroundService(liveFeed)
	tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Server.ShutdownTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", httpServer.Addr).Msg("serving plane ready")
	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	logging.Info().Msg("serving plane stopped gracefully")
}

// openRepository selects the Repository adapter named by cfg.Driver and
// returns a cleanup func to run on shutdown. When cfg.AnalyticsPath is
// set, the result is further decorated so the API-key usage log lives
// in DuckDB regardless of which Driver backs everything else.
func openRepository(cfg config.DatabaseConfig) (repository.Repository, func(), error) {
	var repo repository.Repository
	var cleanup func()

	switch cfg.Driver {
	case "badger":
		db, err := repository.NewBadger(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger repository: %w", err)
		}
		repo, cleanup = db, func() {
			if err := db.Close(); err != nil {
				logging.Error().Err(err).Msg("error closing repository")
			}
		}
	default:
		repo, cleanup = repository.NewMemory(), func() {}
	}

	if cfg.AnalyticsPath == "" {
		return repo, cleanup, nil
	}

	duck, err := repository.OpenDuckDB(cfg.AnalyticsPath)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("open analytics store: %w", err)
	}
	usage := repository.NewDuckDBUsageStore(duck)
	if err := usage.CreateTable(context.Background()); err != nil {
		duck.Close()
		cleanup()
		return nil, nil, fmt.Errorf("create analytics schema: %w", err)
	}
	return repository.NewDuckDBUsageRepository(repo, usage), func() {
		cleanup()
		if err := duck.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing analytics store")
		}
	}, nil
}

// oidcConfigFromApp maps config.OIDCConfig to auth.OIDCConfig so the auth
// package doesn't need to import internal/config.
func oidcConfigFromApp(cfg config.OIDCConfig) auth.OIDCConfig {
	return auth.OIDCConfig{
		IssuerURL:    cfg.IssuerURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		PKCEEnabled:  cfg.PKCEEnabled,
		OrgClaim:     cfg.OrgClaim,
		RolesClaim:   cfg.RolesClaim,
		RoleScopes:   cfg.RoleScopes,
	}
}

// reportUptime updates the app_uptime_seconds gauge every 15s until the
// process exits.
func reportUptime(startedAt time.Time) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		metrics.SetAppUptime(time.Since(startedAt).Seconds())
	}
}

// recommendTimeouts layers the configured per-kind overrides over the
// defaults, leaving any kind the operator didn't set at its default.
func recommendTimeouts(cfg config.RecommendConfig) recommend.Timeouts {
	t := recommend.DefaultTimeouts()
	overrides := map[models.RecommendationKind]time.Duration{
		models.KindUserPersonal:   cfg.UserPersonalTimeout,
		models.KindSimilarToTrack: cfg.SimilarToTrackTimeout,
		models.KindDailyMix:       cfg.DailyMixTimeout,
		models.KindRadioSeed:      cfg.RadioSeedTimeout,
		models.KindTasteProfile:   cfg.TasteProfileTimeout,
	}
	for kind, d := range overrides {
		if d > 0 {
			t[kind] = d
		}
	}
	return t
}
