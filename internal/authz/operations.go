// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package authz

import "github.com/tunetrail/serving/internal/models"

// Operation names an API operation for scope and plan gating. Named
// constants rather than raw route strings so the table below and the
// quota gate's per-operation policy stay in sync with handler wiring.
type Operation string

const (
	OpRegister               Operation = "auth.register"
	OpLogin                  Operation = "auth.login"
	OpApiKeyIssue            Operation = "api_keys.issue"
	OpApiKeyList             Operation = "api_keys.list"
	OpApiKeyRotate           Operation = "api_keys.rotate"
	OpApiKeyRevoke           Operation = "api_keys.revoke"
	OpApiKeyUsage            Operation = "api_keys.usage"
	OpRecommendationsGet     Operation = "recommendations.get"
	OpRecommendationsSimilar Operation = "recommendations.similar"
	OpDailyMix               Operation = "ml.daily_mix"
	OpRadio                  Operation = "ml.radio"
	OpTasteProfile           Operation = "ml.taste_profile"
	OpRecommendationFeedback Operation = "ml.feedback"
	OpSessionStart           Operation = "sessions.start"
	OpSessionHeartbeat       Operation = "sessions.heartbeat"
	OpSessionEnd             Operation = "sessions.end"
	OpInteractionCreate      Operation = "interactions.create"
	OpInteractionBatch       Operation = "interactions.batch"
	OpImpressionFeedback     Operation = "impressions.feedback"
)

// requiredScopes maps each operation to the scope a principal must carry
// (directly, or via the ScopeAll wildcard). Session bearer tokens carry
// the scope set implied by the user's role; API keys carry whatever
// scopes were granted at issuance.
var requiredScopes = map[Operation]models.Scope{
	OpApiKeyIssue:            models.ScopeWriteApiKeys,
	OpApiKeyList:             models.ScopeReadApiKeys,
	OpApiKeyRotate:           models.ScopeWriteApiKeys,
	OpApiKeyRevoke:           models.ScopeWriteApiKeys,
	OpApiKeyUsage:            models.ScopeReadApiKeyUsage,
	OpRecommendationsGet:     models.ScopeReadRecommendations,
	OpRecommendationsSimilar: models.ScopeReadRecommendations,
	OpDailyMix:               models.ScopeReadRecommendations,
	OpRadio:                  models.ScopeReadRecommendations,
	OpTasteProfile:           models.ScopeReadTasteProfile,
	OpRecommendationFeedback: models.ScopeWriteFeedback,
	OpSessionStart:           models.ScopeWriteSessions,
	OpSessionHeartbeat:       models.ScopeWriteSessions,
	OpSessionEnd:             models.ScopeWriteSessions,
	OpInteractionCreate:      models.ScopeWriteInteractions,
	OpInteractionBatch:       models.ScopeWriteInteractions,
	OpImpressionFeedback:     models.ScopeWriteImpressions,
}

// RequiredScope returns the scope an operation requires, and whether the
// operation is gated at all (OpRegister/OpLogin are unauthenticated and
// have no entry).
func RequiredScope(op Operation) (models.Scope, bool) {
	s, ok := requiredScopes[op]
	return s, ok
}
