// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package models

import (
	"testing"
	"time"
)

func TestPlanAtLeast(t *testing.T) {
	cases := []struct {
		plan Plan
		min  Plan
		want bool
	}{
		{PlanFree, PlanFree, true},
		{PlanFree, PlanStarter, false},
		{PlanStarter, PlanFree, true},
		{PlanPro, PlanStarter, true},
		{PlanEnterprise, PlanPro, true},
		{Plan("bogus"), PlanFree, false},
	}
	for _, c := range cases {
		if got := c.plan.AtLeast(c.min); got != c.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", c.plan, c.min, got, c.want)
		}
	}
}

func TestNormalizePlanFallsBackToFree(t *testing.T) {
	if got := NormalizePlan(Plan("deprecated_tier")); got != PlanFree {
		t.Errorf("expected unknown plan to normalize to free, got %s", got)
	}
	if got := NormalizePlan(PlanPro); got != PlanPro {
		t.Errorf("expected valid plan to pass through, got %s", got)
	}
}

func TestScopeSetWildcard(t *testing.T) {
	s := ScopeSet{ScopeAll}
	if !s.Has(ScopeWriteApiKeys) {
		t.Error("wildcard scope should satisfy any requirement")
	}
}

func TestScopeSetHasAny(t *testing.T) {
	s := ScopeSet{ScopeReadTracks}
	if s.HasAny(ScopeWriteApiKeys, ScopeAdmin) {
		t.Error("expected no match")
	}
	if !s.HasAny(ScopeWriteApiKeys, ScopeReadTracks) {
		t.Error("expected match on ScopeReadTracks")
	}
}

func TestApiKeyIsActive(t *testing.T) {
	now := time.Now()
	k := &ApiKey{CreatedAt: now.Add(-time.Hour)}
	if !k.IsActive(now) {
		t.Error("fresh key with no expiry/revocation should be active")
	}

	expired := *k
	past := now.Add(-time.Minute)
	expired.ExpiresAt = &past
	if expired.IsActive(now) {
		t.Error("expired key should not be active")
	}

	revoked := *k
	revokedAt := now.Add(-time.Minute)
	revoked.RevokedAt = &revokedAt
	if revoked.IsActive(now) {
		t.Error("revoked key should not be active")
	}
}

func TestImpressionApplyFeedbackIdempotent(t *testing.T) {
	imp := &Impression{}

	if changed := imp.ApplyFeedback(FeedbackPlayed); !changed {
		t.Fatal("first played feedback should flip Played")
	}
	if !imp.Played {
		t.Fatal("expected Played true")
	}
	if changed := imp.ApplyFeedback(FeedbackPlayed); changed {
		t.Fatal("second played feedback should be a no-op (idempotent)")
	}
}

func TestSessionIsActiveRespectsIdleTimeout(t *testing.T) {
	now := time.Now()
	idle := 15 * time.Minute

	s := &Session{
		State:           SessionActive,
		LastHeartbeatAt: now.Add(-idle + time.Second),
	}
	if !s.IsActive(now, idle) {
		t.Error("session just under idle timeout should still be active")
	}

	s.LastHeartbeatAt = now.Add(-idle - time.Second)
	if s.IsActive(now, idle) {
		t.Error("session past idle timeout should not be active")
	}
}

func TestRecommendationKindMinimumPlan(t *testing.T) {
	cases := map[RecommendationKind]Plan{
		KindUserPersonal:   PlanFree,
		KindSimilarToTrack: PlanFree,
		KindDailyMix:       PlanStarter,
		KindRadioSeed:      PlanStarter,
		KindTasteProfile:   PlanPro,
	}
	for kind, want := range cases {
		if got := kind.MinimumPlan(); got != want {
			t.Errorf("%s.MinimumPlan() = %s, want %s", kind, got, want)
		}
	}
}

func TestRecommendationCacheEntryFreshness(t *testing.T) {
	now := time.Now()
	entry := &RecommendationCacheEntry{
		ProducedAt: now.Add(-10 * time.Minute),
		TTL:        5 * time.Minute,
	}
	if entry.IsFresh(now) {
		t.Error("entry older than TTL should not be fresh")
	}
	if !entry.IsStaleWithinHorizon(now, time.Hour) {
		t.Error("entry within the stale-while-error horizon should report stale-ok")
	}
	if entry.IsStaleWithinHorizon(now, time.Minute) {
		t.Error("entry past the stale horizon should not report stale-ok")
	}
}

func TestInteractionConfidenceOrdering(t *testing.T) {
	if InteractionComplete.Confidence() <= InteractionPlay.Confidence() {
		t.Error("complete should carry higher confidence than play")
	}
	if InteractionSkip.Confidence() >= InteractionPlay.Confidence() {
		t.Error("skip should carry lower confidence than play")
	}
}
