// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package models

import "time"

// Organization is the top-level tenant. It owns Users and, transitively,
// their ApiKeys, Sessions, Interactions, and Impressions; cascade-deleting
// an Organization removes all descendants (enforced by the Repository
// adapter, not this package).
type Organization struct {
	ID      string `json:"id"`
	Slug    string `json:"slug"`
	Plan    Plan   `json:"plan"`
	MaxUsers  int  `json:"max_users"`
	MaxTracks int  `json:"max_tracks"`

	// FeatureOverrides lets an organization unlock a named feature flag
	// outside its plan's default set (e.g. a starter org comped into
	// advanced_analytics). Keys are feature-flag names from the
	// operation-to-feature table in Config.
	FeatureOverrides map[string]bool `json:"feature_overrides,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasFeatureOverride reports whether the organization has an explicit
// override (positive or negative) for the named feature flag.
func (o *Organization) HasFeatureOverride(feature string) (enabled bool, overridden bool) {
	if o.FeatureOverrides == nil {
		return false, false
	}
	v, ok := o.FeatureOverrides[feature]
	return v, ok
}
