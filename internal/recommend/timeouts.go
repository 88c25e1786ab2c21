// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend

import (
	"time"

	"github.com/tunetrail/serving/internal/models"
)

// Timeouts maps a recommendation kind to the bounded deadline given to the
// engine call for that kind. taste_profile blends the widest candidate set
// and gets the longest budget; the lighter lookups default to 2s.
type Timeouts map[models.RecommendationKind]time.Duration

// DefaultTimeouts returns the engine-call deadlines named in the dispatch
// flow: 2s for user_personal, 10s for taste_profile. The intermediate
// kinds are not named explicitly; they're given a budget between the two
// named endpoints, proportional to how much candidate-set work each does.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		models.KindUserPersonal:   2 * time.Second,
		models.KindSimilarToTrack: 2 * time.Second,
		models.KindDailyMix:       5 * time.Second,
		models.KindRadioSeed:      5 * time.Second,
		models.KindTasteProfile:   10 * time.Second,
	}
}

// For returns the timeout for kind, defaulting to 2s for an unrecognized
// kind.
func (t Timeouts) For(kind models.RecommendationKind) time.Duration {
	if d, ok := t[kind]; ok {
		return d
	}
	return 2 * time.Second
}
