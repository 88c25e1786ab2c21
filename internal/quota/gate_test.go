// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package quota

import (
	"context"
	"testing"
	"time"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/cache"
	"github.com/tunetrail/serving/internal/clock"
	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/repository"
)

func newTestGate(t *testing.T) (*Gate, *repository.Memory) {
	t.Helper()
	repo := repository.NewMemory()
	if err := repo.CreateOrganization(context.Background(), &models.Organization{ID: "org_1", Slug: "acme", Plan: models.PlanFree}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	counter := NewCacheCounter(cache.New(time.Hour))
	gate := NewGate(DefaultPolicy("https://tunetrail.example/upgrade"), counter, repo, clock.Wall())
	return gate, repo
}

func TestPlanGateDeniesFreeForDailyMix(t *testing.T) {
	gate, _ := newTestGate(t)
	p := &models.Principal{OrgID: "org_1", Plan: models.PlanFree}

	_, err := gate.Check(context.Background(), p, OpDailyMix)
	apiErr, ok := apierr.As(err)
	if !ok || apiErr.Kind != apierr.KindPlanUpgradeRequired {
		t.Fatalf("expected PLAN_UPGRADE_REQUIRED, got %v", err)
	}
	if len(apiErr.RequiredPlans) != 3 {
		t.Errorf("expected 3 required plans listed, got %v", apiErr.RequiredPlans)
	}
}

func TestPlanGateAllowsStarterForDailyMix(t *testing.T) {
	gate, _ := newTestGate(t)
	p := &models.Principal{OrgID: "org_1", Plan: models.PlanStarter}

	if _, err := gate.Check(context.Background(), p, OpDailyMix); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQuotaGateDeniesAfterLimitExceeded(t *testing.T) {
	gate, _ := newTestGate(t)
	p := &models.Principal{OrgID: "org_1", Plan: models.PlanFree}

	// free plan limit on api_calls_per_minute is 60
	var lastErr error
	for i := 0; i < 61; i++ {
		_, lastErr = gate.Check(context.Background(), p, OpRecommendationsGet)
	}
	apiErr, ok := apierr.As(lastErr)
	if !ok || apiErr.Kind != apierr.KindQuotaExceeded {
		t.Fatalf("expected QUOTA_EXCEEDED on 61st call, got %v", lastErr)
	}
}

func TestQuotaGateUnlimitedForEnterprise(t *testing.T) {
	gate, _ := newTestGate(t)
	p := &models.Principal{OrgID: "org_1", Plan: models.PlanEnterprise}

	for i := 0; i < 2000; i++ {
		if _, err := gate.Check(context.Background(), p, OpRecommendationsGet); err != nil {
			t.Fatalf("unexpected error on call %d: %v", i, err)
		}
	}
}

func TestFeatureGateHonorsOrgOverride(t *testing.T) {
	gate, repo := newTestGate(t)
	if err := repo.CreateOrganization(context.Background(), &models.Organization{
		ID: "org_2", Slug: "comped", Plan: models.PlanFree,
		FeatureOverrides: map[string]bool{"advanced_analytics": true},
	}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	p := &models.Principal{OrgID: "org_2", Plan: models.PlanFree}

	if _, err := gate.Check(context.Background(), p, OpAdvancedAnalytics); err != nil {
		t.Fatalf("expected org override to unlock feature, got error: %v", err)
	}
}

func TestFeatureGateDeniesWithoutOverride(t *testing.T) {
	gate, _ := newTestGate(t)
	p := &models.Principal{OrgID: "org_1", Plan: models.PlanEnterprise}

	_, err := gate.Check(context.Background(), p, OpAdvancedAnalytics)
	apiErr, ok := apierr.As(err)
	if !ok || apiErr.Kind != apierr.KindFeatureNotInPlan {
		t.Fatalf("expected FEATURE_NOT_IN_PLAN, got %v", err)
	}
}

func TestBurstGuardThrottlesSensitiveOperation(t *testing.T) {
	gate, _ := newTestGate(t)
	p := &models.Principal{OrgID: "org_1", Plan: models.PlanEnterprise}

	var lastErr error
	for i := 0; i < 50; i++ {
		_, lastErr = gate.Check(context.Background(), p, OpTasteProfile)
		if lastErr != nil {
			break
		}
	}
	apiErr, ok := apierr.As(lastErr)
	if !ok || apiErr.Kind != apierr.KindQuotaExceeded {
		t.Fatalf("expected a burst of requests on a sensitive operation to eventually hit QUOTA_EXCEEDED, got %v", lastErr)
	}
}

func TestBurstGuardDoesNotApplyToNonSensitiveOperation(t *testing.T) {
	gate, _ := newTestGate(t)
	p := &models.Principal{OrgID: "org_1", Plan: models.PlanEnterprise}

	for i := 0; i < 50; i++ {
		if _, err := gate.Check(context.Background(), p, OpRecommendationsGet); err != nil {
			t.Fatalf("unexpected error on call %d: %v", i, err)
		}
	}
}

func TestUngatedOperationAlwaysPasses(t *testing.T) {
	gate, _ := newTestGate(t)
	p := &models.Principal{OrgID: "org_1", Plan: models.PlanFree}

	if _, err := gate.Check(context.Background(), p, "no.such.operation"); err != nil {
		t.Fatalf("unexpected error for ungated operation: %v", err)
	}
}
