// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordAPIRequest tests API request metric recording across a range
// of methods, endpoints, and status codes.
func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{
			name:       "successful recommendations fetch",
			method:     "GET",
			endpoint:   "/api/v1/recommendations",
			statusCode: "200",
			duration:   25 * time.Millisecond,
		},
		{
			name:       "successful login",
			method:     "POST",
			endpoint:   "/api/v1/auth/login",
			statusCode: "200",
			duration:   150 * time.Millisecond,
		},
		{
			name:       "unauthorized request",
			method:     "GET",
			endpoint:   "/api/v1/api-keys",
			statusCode: "401",
			duration:   5 * time.Millisecond,
		},
		{
			name:       "rate limited request",
			method:     "GET",
			endpoint:   "/api/v1/ml/daily-mix",
			statusCode: "429",
			duration:   1 * time.Millisecond,
		},
		{
			name:       "internal server error",
			method:     "POST",
			endpoint:   "/api/v1/interactions",
			statusCode: "500",
			duration:   500 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
			after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			if after != before+1 {
				t.Errorf("expected counter to increment by 1, got %v -> %v", before, after)
			}
		})
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Fatalf("expected gauge to increment, got %v", got)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Fatalf("expected gauge to return to baseline, got %v", got)
	}
}

// TestTrackActiveRequest_RequestLifecycle simulates overlapping requests
// starting and finishing out of order.
func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	for i := 0; i < 10; i++ {
		TrackActiveRequest(true)
	}
	for i := 0; i < 5; i++ {
		TrackActiveRequest(false)
	}
	for i := 0; i < 3; i++ {
		TrackActiveRequest(true)
	}
	for i := 0; i < 8; i++ {
		TrackActiveRequest(false)
	}

	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Fatalf("expected gauge to return to baseline after equal starts/stops, got %v", got)
	}
}

func TestRecordRateLimitHit(t *testing.T) {
	scopes := []string{"auth_ip", "org_burst"}

	for _, scope := range scopes {
		t.Run(scope, func(t *testing.T) {
			before := testutil.ToFloat64(APIRateLimitHits.WithLabelValues(scope))
			RecordRateLimitHit(scope)
			after := testutil.ToFloat64(APIRateLimitHits.WithLabelValues(scope))
			if after != before+1 {
				t.Errorf("expected %s counter to increment, got %v -> %v", scope, before, after)
			}
		})
	}
}

// TestCacheMetrics exercises hit/miss/eviction/size recording across
// several cache_type label values.
func TestCacheMetrics(t *testing.T) {
	cacheTypes := []string{"recommendation", "session", "quota", "apikey"}

	for _, cacheType := range cacheTypes {
		t.Run(cacheType, func(t *testing.T) {
			hitsBefore := testutil.ToFloat64(CacheHits.WithLabelValues(cacheType))
			missesBefore := testutil.ToFloat64(CacheMisses.WithLabelValues(cacheType))
			evictionsBefore := testutil.ToFloat64(CacheEvictions.WithLabelValues(cacheType))

			RecordCacheHit(cacheType)
			RecordCacheMiss(cacheType)
			RecordCacheEviction(cacheType)
			SetCacheSize(cacheType, 42)

			if got := testutil.ToFloat64(CacheHits.WithLabelValues(cacheType)); got != hitsBefore+1 {
				t.Errorf("expected cache hit counter to increment, got %v", got)
			}
			if got := testutil.ToFloat64(CacheMisses.WithLabelValues(cacheType)); got != missesBefore+1 {
				t.Errorf("expected cache miss counter to increment, got %v", got)
			}
			if got := testutil.ToFloat64(CacheEvictions.WithLabelValues(cacheType)); got != evictionsBefore+1 {
				t.Errorf("expected cache eviction counter to increment, got %v", got)
			}
			if got := testutil.ToFloat64(CacheSize.WithLabelValues(cacheType)); got != 42 {
				t.Errorf("expected cache size gauge to be 42, got %v", got)
			}
		})
	}
}

func TestCircuitBreakerStateValue(t *testing.T) {
	tests := []struct {
		state string
		want  float64
	}{
		{"closed", 0},
		{"half-open", 1},
		{"open", 2},
		{"unknown-state", 0},
	}

	for _, tt := range tests {
		if got := circuitBreakerStateValue(tt.state); got != tt.want {
			t.Errorf("circuitBreakerStateValue(%q) = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	name := "recommendation-engine"

	RecordCircuitBreakerTransition(name, "closed", "open")
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues(name)); got != 2 {
		t.Errorf("expected state gauge to read open (2), got %v", got)
	}
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues(name, "closed", "open")); got != 1 {
		t.Errorf("expected transition counter to increment, got %v", got)
	}

	RecordCircuitBreakerTransition(name, "open", "half-open")
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues(name)); got != 1 {
		t.Errorf("expected state gauge to read half-open (1), got %v", got)
	}

	RecordCircuitBreakerTransition(name, "half-open", "closed")
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues(name)); got != 0 {
		t.Errorf("expected state gauge to read closed (0), got %v", got)
	}
}

func TestRecordCircuitBreakerRequest(t *testing.T) {
	name := "recommendation-engine"
	results := []string{"success", "failure", "rejected"}

	for _, result := range results {
		before := testutil.ToFloat64(CircuitBreakerRequests.WithLabelValues(name, result))
		RecordCircuitBreakerRequest(name, result)
		after := testutil.ToFloat64(CircuitBreakerRequests.WithLabelValues(name, result))
		if after != before+1 {
			t.Errorf("expected %s counter to increment, got %v -> %v", result, before, after)
		}
	}
}

func TestRecordAPIKeyOperation(t *testing.T) {
	tests := []struct {
		operation string
		success   bool
	}{
		{"create", true},
		{"create", false},
		{"rotate", true},
		{"rotate", false},
		{"revoke", true},
		{"revoke", false},
	}

	for _, tt := range tests {
		successLabel := "true"
		if !tt.success {
			successLabel = "false"
		}
		before := testutil.ToFloat64(APIKeyOperationsTotal.WithLabelValues(tt.operation, successLabel))
		RecordAPIKeyOperation(tt.operation, tt.success)
		after := testutil.ToFloat64(APIKeyOperationsTotal.WithLabelValues(tt.operation, successLabel))
		if after != before+1 {
			t.Errorf("expected %s/%s counter to increment, got %v -> %v", tt.operation, successLabel, before, after)
		}
	}
}

func TestRecordAPIKeyValidation(t *testing.T) {
	results := []string{"valid", "invalid", "revoked", "expired", "ip_denied"}

	for _, result := range results {
		before := testutil.ToFloat64(APIKeyValidationsTotal.WithLabelValues(result))
		RecordAPIKeyValidation(result)
		after := testutil.ToFloat64(APIKeyValidationsTotal.WithLabelValues(result))
		if after != before+1 {
			t.Errorf("expected %s counter to increment, got %v -> %v", result, before, after)
		}
	}
}

func TestAPIKeyActiveTotalGauge(t *testing.T) {
	before := testutil.ToFloat64(APIKeyActiveTotal)

	APIKeyActiveTotal.Inc()
	APIKeyActiveTotal.Inc()
	if got := testutil.ToFloat64(APIKeyActiveTotal); got != before+2 {
		t.Fatalf("expected gauge to read %v, got %v", before+2, got)
	}

	APIKeyActiveTotal.Dec()
	if got := testutil.ToFloat64(APIKeyActiveTotal); got != before+1 {
		t.Fatalf("expected gauge to read %v, got %v", before+1, got)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.0.0", "go1.25.4")
	if got := testutil.ToFloat64(AppInfo.WithLabelValues("1.0.0", "go1.25.4")); got != 1 {
		t.Fatalf("expected app_info to be set to 1, got %v", got)
	}
}

func TestSetAppUptime(t *testing.T) {
	SetAppUptime(3600)
	if got := testutil.ToFloat64(AppUptime); got != 3600 {
		t.Fatalf("expected uptime gauge to read 3600, got %v", got)
	}

	SetAppUptime(7200)
	if got := testutil.ToFloat64(AppUptime); got != 7200 {
		t.Fatalf("expected uptime gauge to read 7200 after overwrite, got %v", got)
	}
}

// TestConcurrentMetricRecording exercises every recording function from
// many goroutines at once; the Prometheus client library owns the
// synchronization, this just checks nothing races or panics.
func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	const numGoroutines = 100
	const opsPerGoroutine = 50

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				RecordAPIRequest("GET", "/api/v1/recommendations", "200", time.Duration(j)*time.Millisecond)
				TrackActiveRequest(true)
				TrackActiveRequest(false)
				RecordRateLimitHit("org_burst")
				RecordCacheHit("recommendation")
				RecordCacheMiss("recommendation")
				RecordCircuitBreakerRequest("recommendation-engine", "success")
				RecordAPIKeyValidation("valid")
			}
		}()
	}
	wg.Wait()
}

// TestMetricsRegistration verifies every package-level collector can be
// described without panicking, catching a metric that was declared but
// never wired into the default registry correctly.
func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		APIRateLimitHits,
		CacheHits,
		CacheMisses,
		CacheSize,
		CacheEvictions,
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerTransitions,
		APIKeyOperationsTotal,
		APIKeyValidationsTotal,
		APIKeyActiveTotal,
		AppInfo,
		AppUptime,
	}

	for _, c := range collectors {
		ch := make(chan *prometheus.Desc, 10)
		c.Describe(ch)
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("metric %T has no descriptors", c)
		}
	}
}

// TestMetricGathering checks the default registry can be gathered and
// linted after a representative set of metrics has been recorded.
func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/api/v1/recommendations", "200", time.Millisecond)
	RecordCacheHit("recommendation")
	RecordAPIKeyValidation("valid")

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("metric lint problem: %s", p.Text)
	}
}

func BenchmarkRecordAPIRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordAPIRequest("GET", "/api/v1/recommendations", "200", 25*time.Millisecond)
	}
}

func BenchmarkTrackActiveRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		TrackActiveRequest(true)
		TrackActiveRequest(false)
	}
}

func BenchmarkRecordCacheHit(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordCacheHit("recommendation")
	}
}
