// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package models provides the data structures for the TuneTrail serving
// plane: organizations, users, API keys, sessions, interactions,
// impressions, recommendation cache entries, and append-only telemetry.
//
// Fields that would otherwise be free-form JSON blobs are modeled here
// as closed string-enum types with validated constructors, plus an
// Extensions map for genuinely open-ended attributes.
package models
