// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package recommend

import (
	"sync"
	"sync/atomic"

	"github.com/tunetrail/serving/internal/models"
)

// DefaultBufferCapacity is the impression buffer's default size.
const DefaultBufferCapacity = 10000

// ImpressionBuffer is a bounded, best-effort queue of impressions awaiting
// a background flush to the Repository. Producers are recommendation
// requests; FlusherService is the sole consumer. Enqueue never blocks: once
// the buffer is at capacity the oldest queued entries are dropped to make
// room, and the drop count is retained for the overflow metric.
type ImpressionBuffer struct {
	mu       sync.Mutex
	items    []*models.Impression
	capacity int
	dropped  atomic.Int64
}

// NewImpressionBuffer constructs an ImpressionBuffer. capacity <= 0 uses
// DefaultBufferCapacity.
func NewImpressionBuffer(capacity int) *ImpressionBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &ImpressionBuffer{items: make([]*models.Impression, 0, capacity), capacity: capacity}
}

// Enqueue appends impressions, dropping the oldest queued entries first if
// the buffer would exceed its capacity.
func (b *ImpressionBuffer) Enqueue(impressions ...*models.Impression) {
	if len(impressions) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, impressions...)
	if overflow := len(b.items) - b.capacity; overflow > 0 {
		b.dropped.Add(int64(overflow))
		b.items = b.items[overflow:]
	}
}

// Drain removes and returns every currently queued impression, leaving the
// buffer empty.
func (b *ImpressionBuffer) Drain() []*models.Impression {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) == 0 {
		return nil
	}
	drained := b.items
	b.items = make([]*models.Impression, 0, b.capacity)
	return drained
}

// Dropped returns the cumulative count of impressions dropped for
// capacity since the buffer was created.
func (b *ImpressionBuffer) Dropped() int64 {
	return b.dropped.Load()
}

// Len reports the number of impressions currently queued.
func (b *ImpressionBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
