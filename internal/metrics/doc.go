// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package metrics provides Prometheus instrumentation for the serving plane,
exposed at /metrics in Prometheus text format.

# Available Metrics

HTTP:
  - api_requests_total (counter): method, endpoint, status_code
  - api_request_duration_seconds (histogram): method, endpoint
  - api_active_requests (gauge)
  - api_rate_limit_hits_total (counter): scope ("auth_ip", "org_burst")

Cache:
  - cache_hits_total / cache_misses_total (counter): cache_type
  - cache_entries (gauge): cache_type
  - cache_evictions_total (counter): cache_type

Recommendation engine circuit breaker:
  - circuit_breaker_state (gauge): name (0=closed, 1=half-open, 2=open)
  - circuit_breaker_requests_total (counter): name, result
  - circuit_breaker_state_transitions_total (counter): name, from_state, to_state

API key lifecycle:
  - api_key_operations_total (counter): operation, success
  - api_key_validations_total (counter): result
  - api_key_active_total (gauge)

System:
  - app_info (gauge): version, go_version
  - app_uptime_seconds (gauge)

# Usage

	curl http://localhost:8080/metrics | grep cache_hits_total

Example PromQL for cache hit rate:

	sum(rate(cache_hits_total[5m])) / (sum(rate(cache_hits_total[5m])) + sum(rate(cache_misses_total[5m])))

All recording functions are safe for concurrent use; the Prometheus client
library handles synchronization internally.
*/
package metrics
