// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package quota

import (
	"testing"
	"time"
)

func TestBurstGuardAllowsUpToBurstSize(t *testing.T) {
	g := newBurstGuard(1, 5)

	for i := 0; i < 5; i++ {
		if !g.Allow("org_1") {
			t.Fatalf("expected request %d within burst size to be allowed", i)
		}
	}
	if g.Allow("org_1") {
		t.Fatal("expected request beyond burst size to be denied")
	}
}

func TestBurstGuardIsolatesOrganizations(t *testing.T) {
	g := newBurstGuard(1, 1)

	if !g.Allow("org_1") {
		t.Fatal("expected first request from org_1 to be allowed")
	}
	if !g.Allow("org_2") {
		t.Fatal("org_2's bucket should be independent of org_1's")
	}
	if g.Allow("org_1") {
		t.Fatal("expected org_1's second immediate request to be denied")
	}
}

func TestBurstGuardSweepRemovesIdleEntries(t *testing.T) {
	g := newBurstGuard(1, 1)
	g.Allow("org_1")

	g.sweep(0) // everything is "idle" relative to a zero max age

	g.mu.Lock()
	_, exists := g.limiters["org_1"]
	g.mu.Unlock()
	if exists {
		t.Fatal("expected sweep to remove the idle limiter")
	}
}

func TestBurstGuardSweepKeepsRecentEntries(t *testing.T) {
	g := newBurstGuard(1, 1)
	g.Allow("org_1")

	g.sweep(time.Hour)

	g.mu.Lock()
	_, exists := g.limiters["org_1"]
	g.mu.Unlock()
	if !exists {
		t.Fatal("expected sweep to keep a recently used limiter")
	}
}
