// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package config loads the serving plane's configuration using Koanf v2
// with layered sources: built-in defaults, an optional YAML file, then
// environment variables, in that order of increasing precedence. See
// Load.
package config
