// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package quota

import (
	"context"

	"github.com/tunetrail/serving/internal/cache"
)

// CacheCounter adapts *cache.Cache to the Counter interface. The
// in-memory cache never fails, so this adapter's error return is always
// nil; it exists so Gate's fail-open/fail-closed branch has a real
// decision point to make once a networked counter store replaces it.
type CacheCounter struct {
	cache *cache.Cache
}

// NewCacheCounter wraps c as a Counter.
func NewCacheCounter(c *cache.Cache) *CacheCounter {
	return &CacheCounter{cache: c}
}

func (a *CacheCounter) Incr(_ context.Context, key string, delta int64, window Window) (int64, error) {
	return a.cache.AtomicIncr(key, delta, window.Period), nil
}

var _ Counter = (*CacheCounter)(nil)
