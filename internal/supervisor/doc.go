// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package supervisor provides process supervision for the TuneTrail serving
plane using suture v4.

This package implements a hierarchical supervisor tree that manages the
lifecycle of all long-running services in the application. It provides
Erlang/OTP-style supervision with automatic restart, failure isolation, and
graceful shutdown.

# Overview

The supervisor tree organizes services into three layers for failure
isolation:

	RootSupervisor ("tunetrail-serving-plane")
	├── DataSupervisor ("data-layer")
	│   └── (no services registered by cmd/server)
	├── BackgroundSupervisor ("background-layer")
	│   ├── session.SweeperService   (listening-session expiry sweep)
	│   ├── recommend.FlusherService (impression buffer background writer)
	│   ├── auth.LastUsedWriterService (API-key last_used_at writer)
	│   ├── auth.UsageWriterService  (API-key usage log writer)
	│   └── livefeed.Hub             (operator live-feed broadcaster)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

This hierarchy ensures that a crash in a background worker never blocks the
API layer from continuing to serve cached recommendations and accept
interaction writes.

# Usage Example

	logger := slog.Default()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    log.Fatal(err)
	}

	tree.AddAPIService(httpServerService)
	tree.AddBackgroundService(sessionSweeperService)
	tree.AddBackgroundService(impressionFlusherService)
	tree.AddBackgroundService(lastUsedWriterService)

	if err := tree.Serve(ctx); err != nil {
	    log.Printf("supervisor stopped: %v", err)
	}

# Failure Handling

Each service failure increments an exponentially decaying counter; once the
counter exceeds FailureThreshold the supervisor enters FailureBackoff before
attempting another restart. Defaults mirror suture's own production
defaults (5 failures / 30s decay / 15s backoff / 10s shutdown timeout).

# Service Interface

Services implement suture.Service: `Serve(ctx context.Context) error`.
Returning nil means clean stop (not restarted); returning an error means
crash (will be restarted, subject to backoff); context cancellation means
shutdown requested — return promptly, draining any bounded in-memory queue
first (impression buffer, last-used-at write queue) within the shutdown
deadline.
*/
package supervisor
