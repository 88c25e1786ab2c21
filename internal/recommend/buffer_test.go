// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend

import (
	"testing"

	"github.com/tunetrail/serving/internal/models"
)

func TestEnqueueDropsOldestOnOverflow(t *testing.T) {
	buf := NewImpressionBuffer(2)
	buf.Enqueue(&models.Impression{ID: "imp_1"}, &models.Impression{ID: "imp_2"})
	buf.Enqueue(&models.Impression{ID: "imp_3"})

	drained := buf.Drain()
	if len(drained) != 2 || drained[0].ID != "imp_2" || drained[1].ID != "imp_3" {
		t.Fatalf("expected [imp_2 imp_3], got %+v", drained)
	}
	if buf.Dropped() != 1 {
		t.Errorf("expected 1 dropped entry, got %d", buf.Dropped())
	}
}

func TestDrainEmptiesBuffer(t *testing.T) {
	buf := NewImpressionBuffer(10)
	buf.Enqueue(&models.Impression{ID: "imp_1"})

	if got := buf.Drain(); len(got) != 1 {
		t.Fatalf("expected 1 impression, got %d", len(got))
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty buffer after drain, got len %d", buf.Len())
	}
	if got := buf.Drain(); got != nil {
		t.Errorf("expected nil on drain of empty buffer, got %+v", got)
	}
}
