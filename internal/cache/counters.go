// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package cache

import (
	"strings"
	"time"
)

// AtomicIncr increments the integer counter stored at key by delta and
// returns the resulting value. The first call for a given key establishes
// the counter's expiry: the window length is fixed at creation and is not
// extended by subsequent increments, matching fixed-window rate limiting
// semantics (a window's boundary does not move just because traffic keeps
// arriving within it).
//
// If an existing value at key is not an int64, it is treated as if absent
// and the counter restarts at delta.
func (c *Cache) AtomicIncr(key string, delta int64, windowTTL time.Duration) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry, exists := c.entries[key]
	if exists && now.After(entry.ExpiresAt) {
		exists = false
	}

	var current int64
	if exists {
		if v, ok := entry.Data.(int64); ok {
			current = v
		}
	}

	next := current + delta
	expiresAt := entry.ExpiresAt
	if !exists {
		expiresAt = now.Add(windowTTL)
	}

	c.entries[key] = Entry{Data: next, ExpiresAt: expiresAt}
	c.stats.mu.Lock()
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.mu.Unlock()

	return next
}

// PeekCounter returns the current value of a counter previously written by
// AtomicIncr without mutating it, along with the window's remaining TTL.
// Returns (0, 0, false) if the key is absent or expired.
func (c *Cache) PeekCounter(key string) (value int64, remaining time.Duration, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return 0, 0, false
	}
	now := time.Now()
	if now.After(entry.ExpiresAt) {
		return 0, 0, false
	}
	v, isInt := entry.Data.(int64)
	if !isInt {
		return 0, 0, false
	}
	return v, entry.ExpiresAt.Sub(now), true
}

// CompareAndSwap atomically replaces the value at key with newVal if and
// only if the current value equals oldVal (compared via interface
// equality). Used for session state transitions that must not race with a
// concurrent heartbeat or end call. If the key is absent, oldVal must be
// nil for the swap to succeed.
func (c *Cache) CompareAndSwap(key string, oldVal, newVal interface{}, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if exists && time.Now().After(entry.ExpiresAt) {
		exists = false
	}

	var current interface{}
	if exists {
		current = entry.Data
	}

	if current != oldVal {
		return false
	}

	c.entries[key] = Entry{Data: newVal, ExpiresAt: time.Now().Add(ttl)}
	c.stats.mu.Lock()
	c.stats.TotalKeys = int64(len(c.entries))
	c.stats.mu.Unlock()
	return true
}

// KeysByPrefix returns a snapshot of all non-expired keys beginning with
// prefix. Used by the session expiry sweeper to enumerate
// "session:active:*" without a secondary index. The returned slice is a
// copy; mutating it does not affect the cache.
func (c *Cache) KeysByPrefix(prefix string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	matches := make([]string, 0)
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			matches = append(matches, key)
		}
	}
	return matches
}
