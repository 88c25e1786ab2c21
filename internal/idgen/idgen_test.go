// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package idgen

import "testing"

func TestUUIDGeneratorProducesUniqueIDs(t *testing.T) {
	g := New()
	a := g.NewID()
	b := g.NewID()
	if a == b {
		t.Fatal("expected distinct ids")
	}
	if len(a) != 36 {
		t.Errorf("expected UUID string length 36, got %d (%q)", len(a), a)
	}
}

func TestSequentialGeneratorIsDeterministic(t *testing.T) {
	s := &Sequential{Prefix: "sess_"}
	if got := s.NewID(); got != "sess_1" {
		t.Errorf("expected sess_1, got %s", got)
	}
	if got := s.NewID(); got != "sess_2" {
		t.Errorf("expected sess_2, got %s", got)
	}
}
