// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/tunetrail/serving/internal/models"
)

const fingerprintPrefix = "recommend:"

// fingerprint computes H(kind, user_id, seed, limit, model_tier), the cache
// key identifying a recommendation request's result independent of which
// caller issued it.
func fingerprint(req models.RecommendationRequest) string {
	raw := fmt.Sprintf("%s|%s|%s|%d|%s", req.Kind, req.UserID, req.Seed, req.Limit, req.ModelTier)
	sum := sha256.Sum256([]byte(raw))
	return fingerprintPrefix + hex.EncodeToString(sum[:16])
}
