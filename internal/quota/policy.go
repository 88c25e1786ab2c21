// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package quota

import (
	"time"

	"github.com/tunetrail/serving/internal/models"
)

// Window names one fixed-window quota counter an operation is metered
// against (an operation may be metered against several windows at once,
// e.g. a per-minute and a per-day bucket on the same call).
type Window struct {
	// Bucket names the quota resource, e.g. "api_calls_per_minute" or
	// "audio_analysis_per_day". Combined with the org id and the
	// window-aligned timestamp to form the counter's cache key.
	Bucket string
	Period time.Duration
}

// OperationPolicy is the full gating configuration for one operation.
type OperationPolicy struct {
	// RequiredPlan, if non-empty, is the minimum plan tier the plan gate
	// enforces. RequiredPlans lists the tiers to surface in the
	// PLAN_UPGRADE_REQUIRED response body (usually every plan at or
	// above RequiredPlan).
	RequiredPlan  models.Plan
	RequiredPlans []models.Plan

	// Feature, if non-empty, is the named flag the feature gate checks.
	Feature            string
	FeatureDescription string

	// Windows lists every quota bucket this operation is metered
	// against; all must pass.
	Windows []Window

	// Sensitive marks an operation whose quota gate fails closed (denies)
	// rather than open when the counter store is unavailable. This only
	// applies to pro/enterprise-tier traffic; free/starter traffic always
	// fails open regardless of this flag.
	Sensitive bool
}

// Policy is the full operation table plus the per-bucket, per-plan limit
// table. A nil limit means the bucket is unlimited for that plan.
type Policy struct {
	Operations map[string]OperationPolicy
	Limits     map[string]map[models.Plan]*int64
	UpgradeURL string

	// BurstRatePerSecond and BurstSize configure the token bucket that
	// smooths bursts from a single organization on Sensitive operations,
	// independent of the fixed-window buckets above. BurstRatePerSecond
	// is the sustained rate the bucket refills at; BurstSize is how far a
	// quiet organization can burst above that rate before Allow starts
	// rejecting.
	BurstRatePerSecond float64
	BurstSize          int
}

func limit(n int64) *int64 { return &n }

// Operation names shared between the quota policy table and API wiring.
// Kept as plain strings (rather than importing internal/authz) so the
// quota gate can meter operations, like audio analysis, that carry no
// scope requirement of their own.
const (
	OpRecommendationsGet     = "recommendations.get"
	OpRecommendationsSimilar = "recommendations.similar"
	OpDailyMix               = "ml.daily_mix"
	OpRadio                  = "ml.radio"
	OpTasteProfile           = "ml.taste_profile"
	OpAudioAnalyze           = "audio.analyze"
	OpApiKeyUsage            = "api_keys.usage"
	OpAdvancedAnalytics      = "analytics.advanced"
)

// DefaultPolicy returns the plan/feature/quota table described in the
// component design: daily-mix and radio require starter, taste-profile
// requires pro, and api_calls_per_minute plus audio_analysis_per_day are
// metered per organization.
func DefaultPolicy(upgradeURL string) Policy {
	return Policy{
		UpgradeURL: upgradeURL,
		// 5 req/s sustained with room to burst to 15 absorbs a client
		// retrying a page of results without tripping on the first
		// request after an idle stretch.
		BurstRatePerSecond: 5,
		BurstSize:          15,
		Operations: map[string]OperationPolicy{
			OpRecommendationsGet: {
				Windows: []Window{{Bucket: "api_calls_per_minute", Period: time.Minute}},
			},
			OpRecommendationsSimilar: {
				Windows: []Window{{Bucket: "api_calls_per_minute", Period: time.Minute}},
			},
			OpDailyMix: {
				RequiredPlan:  models.PlanStarter,
				RequiredPlans: []models.Plan{models.PlanStarter, models.PlanPro, models.PlanEnterprise},
				Windows:       []Window{{Bucket: "api_calls_per_minute", Period: time.Minute}},
			},
			OpRadio: {
				RequiredPlan:  models.PlanStarter,
				RequiredPlans: []models.Plan{models.PlanStarter, models.PlanPro, models.PlanEnterprise},
				Windows:       []Window{{Bucket: "api_calls_per_minute", Period: time.Minute}},
				Sensitive:     true,
			},
			OpTasteProfile: {
				RequiredPlan:  models.PlanPro,
				RequiredPlans: []models.Plan{models.PlanPro, models.PlanEnterprise},
				Windows:       []Window{{Bucket: "api_calls_per_minute", Period: time.Minute}},
				Sensitive:     true,
			},
			OpAudioAnalyze: {
				Windows: []Window{{Bucket: "audio_analysis_per_day", Period: 24 * time.Hour}},
			},
			OpApiKeyUsage: {
				RequiredPlan:  models.PlanStarter,
				RequiredPlans: []models.Plan{models.PlanStarter, models.PlanPro, models.PlanEnterprise},
			},
			OpAdvancedAnalytics: {
				Feature:            "advanced_analytics",
				FeatureDescription: "advanced listening analytics dashboard",
			},
		},
		Limits: map[string]map[models.Plan]*int64{
			"api_calls_per_minute": {
				models.PlanFree:       limit(60),
				models.PlanStarter:    limit(300),
				models.PlanPro:        limit(1200),
				models.PlanEnterprise: nil,
			},
			"audio_analysis_per_day": {
				models.PlanFree:       limit(10),
				models.PlanStarter:    limit(100),
				models.PlanPro:        limit(1000),
				models.PlanEnterprise: nil,
			},
		},
	}
}

// limitFor returns the configured limit for bucket/plan; nil means
// unlimited, ok is false if the bucket has no entry for the plan at all
// (treated the same as unlimited by callers).
func (p Policy) limitFor(bucket string, plan models.Plan) (*int64, bool) {
	byPlan, ok := p.Limits[bucket]
	if !ok {
		return nil, false
	}
	l, ok := byPlan[plan]
	return l, ok
}
