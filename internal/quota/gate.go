// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/clock"
	"github.com/tunetrail/serving/internal/metrics"
	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/repository"
)

// burstSweepInterval and burstIdleTimeout govern how long an
// organization's token bucket survives without traffic before the gate
// reclaims it.
const (
	burstSweepInterval = 10 * time.Minute
	burstIdleTimeout   = 30 * time.Minute
)

// Counter is the narrow slice of the Cache boundary the quota gate needs:
// an atomic fixed-window increment. Expressed as an interface, rather
// than depending on *cache.Cache directly, so a future redis-backed
// counter can fail open/closed explicitly via the error return — the
// in-memory adapter in this repository never errors, but the gate's
// policy logic already branches on it.
type Counter interface {
	Incr(ctx context.Context, key string, delta int64, windowTTL Window) (int64, error)
}

// Decision is the outcome of a successful Check: the rate-limit headers
// for the most-constrained window evaluated.
type Decision struct {
	Limit     int64
	Remaining int64
	ResetUnix int64
}

// Gate evaluates the plan, feature, and quota layers for an operation.
type Gate struct {
	policy  Policy
	counter Counter
	orgs    repository.Organizations
	clock   clock.Clock
	burst   *burstGuard
	stop    chan struct{}
}

// NewGate constructs a Gate. It starts a background goroutine that sweeps
// idle per-organization burst limiters; call Close to stop it.
func NewGate(policy Policy, counter Counter, orgs repository.Organizations, c clock.Clock) *Gate {
	g := &Gate{
		policy:  policy,
		counter: counter,
		orgs:    orgs,
		clock:   c,
		burst:   newBurstGuard(policy.BurstRatePerSecond, policy.BurstSize),
		stop:    make(chan struct{}),
	}
	go g.burst.startSweeper(burstSweepInterval, burstIdleTimeout, g.stop)
	return g
}

// Close stops the gate's background burst-limiter sweeper. Safe to call
// once during server shutdown.
func (g *Gate) Close() {
	close(g.stop)
}

// Check runs the plan gate, feature gate, and quota gate in order for
// operation against principal, returning the rate-limit Decision for the
// most-constrained window on success, or a typed *apierr.Error on denial.
func (g *Gate) Check(ctx context.Context, principal *models.Principal, operation string) (Decision, error) {
	policy, gated := g.policy.Operations[operation]
	if !gated {
		return Decision{}, nil
	}

	if err := g.checkPlanGate(principal, policy); err != nil {
		return Decision{}, err
	}
	if err := g.checkFeatureGate(ctx, principal, policy); err != nil {
		return Decision{}, err
	}
	return g.checkQuotaGate(ctx, principal, policy)
}

func (g *Gate) checkPlanGate(principal *models.Principal, policy OperationPolicy) error {
	if policy.RequiredPlan == "" {
		return nil
	}
	if principal.Plan.AtLeast(policy.RequiredPlan) {
		return nil
	}

	requiredPlans := make([]string, len(policy.RequiredPlans))
	for i, p := range policy.RequiredPlans {
		requiredPlans[i] = string(p)
	}
	return &apierr.Error{
		Kind:          apierr.KindPlanUpgradeRequired,
		Message:       "this operation requires a higher plan",
		CurrentPlan:   string(principal.Plan),
		RequiredPlans: requiredPlans,
		UpgradeURL:    g.policy.UpgradeURL,
	}
}

func (g *Gate) checkFeatureGate(ctx context.Context, principal *models.Principal, policy OperationPolicy) error {
	if policy.Feature == "" {
		return nil
	}

	enabled := policy.RequiredPlan != "" && principal.Plan.AtLeast(policy.RequiredPlan)
	if org, err := g.orgs.GetOrganization(ctx, principal.OrgID); err == nil {
		if override, overridden := org.HasFeatureOverride(policy.Feature); overridden {
			enabled = override
		}
	}
	if enabled {
		return nil
	}

	return &apierr.Error{
		Kind:               apierr.KindFeatureNotInPlan,
		Message:            fmt.Sprintf("feature %q is not available on this plan", policy.Feature),
		CurrentPlan:        string(principal.Plan),
		FeatureDescription: policy.FeatureDescription,
		UpgradeURL:         g.policy.UpgradeURL,
	}
}

func (g *Gate) checkQuotaGate(ctx context.Context, principal *models.Principal, policy OperationPolicy) (Decision, error) {
	if policy.Sensitive && g.burst != nil && !g.burst.Allow(principal.OrgID) {
		metrics.RecordRateLimitHit("org_burst")
		return Decision{}, &apierr.Error{
			Kind:       apierr.KindQuotaExceeded,
			Message:    "request rate for this organization is temporarily too high",
			RetryAfter: time.Second,
		}
	}

	if len(policy.Windows) == 0 {
		return Decision{}, nil
	}

	var tightest Decision
	haveTightest := false

	for _, window := range policy.Windows {
		limitPtr, _ := g.policy.limitFor(window.Bucket, principal.Plan)
		if limitPtr == nil {
			continue // unlimited for this plan
		}
		l := *limitPtr

		windowStart := clock.WindowStart(g.clock.Now(), window.Period)
		key := fmt.Sprintf("quota:%s:%s:%d", window.Bucket, principal.OrgID, windowStart.Unix())

		count, err := g.counter.Incr(ctx, key, 1, window)
		if err != nil {
			if policy.Sensitive && principal.Plan.AtLeast(models.PlanPro) {
				return Decision{}, apierr.Wrap(apierr.KindUpstreamUnavailable, "quota counter unavailable", err)
			}
			continue // fail open for free/starter or non-sensitive ops
		}

		remaining := l - count
		if remaining < 0 {
			remaining = 0
		}
		resetAt := clock.NextWindowBoundary(g.clock.Now(), window.Period)

		if count > l {
			return Decision{}, &apierr.Error{
				Kind:       apierr.KindQuotaExceeded,
				Message:    fmt.Sprintf("quota exceeded for %s", window.Bucket),
				RetryAfter: resetAt.Sub(g.clock.Now()),
			}
		}

		if !haveTightest || remaining < tightest.Remaining {
			tightest = Decision{Limit: l, Remaining: remaining, ResetUnix: resetAt.Unix()}
			haveTightest = true
		}
	}

	return tightest, nil
}
