// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package quota

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// burstGuard smooths short bursts from a single organization ahead of the
// fixed-window quota counter: a fixed window only bounds the total count
// over its period, so an organization can legally spend an entire minute's
// allowance in the first second of that minute. The token bucket here caps
// how fast that allowance can be drawn down, independent of the per-IP
// limiter in front of authentication and the per-organization fixed-window
// counter behind it.
//
// One *rate.Limiter per organization id, created lazily on first use and
// reused for the life of the process. Idle limiters are swept periodically
// so a long-running server doesn't accumulate one entry per organization
// that ever made a single request.
type burstGuard struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newBurstGuard constructs a guard allowing ratePerSecond sustained
// requests per organization with bursts up to burst above that rate.
func newBurstGuard(ratePerSecond float64, burst int) *burstGuard {
	return &burstGuard{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(ratePerSecond),
		burst:    burst,
	}
}

// Allow reports whether orgID may make one more request right now,
// consuming a token from its bucket if so.
func (g *burstGuard) Allow(orgID string) bool {
	g.mu.Lock()
	entry, ok := g.limiters[orgID]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(g.rate, g.burst)}
		g.limiters[orgID] = entry
	}
	entry.lastSeen = time.Now()
	g.mu.Unlock()

	return entry.limiter.Allow()
}

// sweep drops limiters idle for longer than maxIdle, run periodically by
// the caller.
func (g *burstGuard) sweep(maxIdle time.Duration) {
	cutoff := time.Now().Add(-maxIdle)
	g.mu.Lock()
	defer g.mu.Unlock()
	for orgID, entry := range g.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(g.limiters, orgID)
		}
	}
}

// startSweeper runs sweep on interval until stop is closed.
func (g *burstGuard) startSweeper(interval, maxIdle time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.sweep(maxIdle)
		case <-stop:
			return
		}
	}
}
