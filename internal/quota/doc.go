// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package quota implements the three-layer Quota & Rate Gate: a plan
// gate, a feature gate, and a fixed-window quota gate, evaluated in that
// order ahead of every gated operation. The quota layer counts against
// the Cache's atomic-increment primitive, keyed by organization and
// window-aligned timestamp rather than by source IP.
//
// Sensitive operations additionally pass through a per-organization
// token-bucket burst guard ahead of the fixed-window counter, smoothing
// the legal-but-unpleasant case where a window's entire allowance is
// spent in its first second.
package quota
