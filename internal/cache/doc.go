// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package cache provides the serving plane's shared in-process TTL
// cache: the Cache boundary named in the external interfaces contract
// (Get/Set, AtomicIncr, CompareAndSwap, Delete, KeysByPrefix).
//
// A single *Cache instance is shared across three otherwise-unrelated
// consumers, partitioned by key prefix so they don't collide:
//
//   - internal/recommend.Dispatcher caches ranked-track results per
//     request fingerprint ("recommend:...") with a fresh TTL
//     and a longer stale-while-error horizon.
//   - internal/quota.CacheCounter uses AtomicIncr for fixed-window
//     request counters ("quota:...") behind the quota.Counter
//     interface.
//   - internal/session.Manager indexes each active session by id
//     ("session:active:<id>"), refreshed on every heartbeat, and its
//     sweeper walks KeysByPrefix to find idle sessions to expire.
//
// Expiration is lazy (checked on Get) plus a background sweep every 5
// minutes; there is no size bound or eviction policy beyond TTL, which
// is acceptable at the scale a single serving-plane instance handles. A
// deployment that needs this state shared across instances would
// replace *Cache with a different adapter behind the same boundary.
//
// Get hits, misses and expiries, and Delete calls report to
// internal/metrics labeled by the key's prefix, so hit rates for
// recommendations, sessions, and quota counters show up as separate
// Prometheus series. Entries removed by the background sweep or Clear are
// counted only in Stats, and the sweep reports the total entry count
// under cache_type "all".
package cache
