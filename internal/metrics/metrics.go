// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This package instruments the serving plane for Prometheus, exposed at
// /metrics:
//   - HTTP request volume, latency, and in-flight count
//   - the shared Cache's hit/miss/eviction/size behavior
//   - the recommendation engine's circuit breaker state
//   - api-key lifecycle operations and validation outcomes
//   - application build info and uptime

var (
	// HTTP API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"scope"}, // "auth_ip" or "org_burst"
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "recommend", "session", "quota"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry or manual invalidation)",
		},
		[]string{"cache_type"},
	)

	// Recommendation Engine Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Key Lifecycle Metrics
	APIKeyOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_key_operations_total",
			Help: "Total number of api key lifecycle operations",
		},
		[]string{"operation", "success"}, // operation: "create", "rotate", "revoke"
	)

	APIKeyValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_key_validations_total",
			Help: "Total number of api key validation attempts",
		},
		[]string{"result"}, // "valid", "invalid", "revoked", "expired", "ip_denied"
	)

	APIKeyActiveTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_key_active_total",
			Help: "Current number of active (non-revoked) api keys",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request's outcome and latency.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected by a rate limiter, scope
// being which limiter rejected it ("auth_ip" for the pre-authentication
// IP limiter, "org_burst" for the per-organization burst guard).
func RecordRateLimitHit(scope string) {
	APIRateLimitHits.WithLabelValues(scope).Inc()
}

// RecordCacheHit and RecordCacheMiss record a Get outcome against the
// named cache partition (a key prefix such as "recommend" or
// "session", not a cache implementation).
func RecordCacheHit(cacheType string)  { CacheHits.WithLabelValues(cacheType).Inc() }
func RecordCacheMiss(cacheType string) { CacheMisses.WithLabelValues(cacheType).Inc() }

// RecordCacheEviction records an entry being removed, whether by TTL
// expiry or explicit invalidation.
func RecordCacheEviction(cacheType string) {
	CacheEvictions.WithLabelValues(cacheType).Inc()
}

// SetCacheSize records the current entry count for a cache partition.
func SetCacheSize(cacheType string, size int64) {
	CacheSize.WithLabelValues(cacheType).Set(float64(size))
}

// circuitBreakerStateValue maps gobreaker's state names to the gauge
// convention (0=closed, 1=half-open, 2=open).
func circuitBreakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordCircuitBreakerTransition records a breaker moving from one state
// to another and updates the current-state gauge to match.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(circuitBreakerStateValue(to))
}

// RecordCircuitBreakerRequest records the outcome of one call through the
// breaker: "success", "failure", or "rejected" (the breaker was open).
func RecordCircuitBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordAPIKeyOperation records a create/rotate/revoke call and whether it
// succeeded.
func RecordAPIKeyOperation(operation string, success bool) {
	successStr := "true"
	if !success {
		successStr = "false"
	}
	APIKeyOperationsTotal.WithLabelValues(operation, successStr).Inc()
}

// RecordAPIKeyValidation records the outcome of authenticating a request
// by api key.
func RecordAPIKeyValidation(result string) {
	APIKeyValidationsTotal.WithLabelValues(result).Inc()
}

// SetAppInfo records the running build's version once at startup.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

// SetAppUptime records the process's uptime in seconds.
func SetAppUptime(seconds float64) {
	AppUptime.Set(seconds)
}
