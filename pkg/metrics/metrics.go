// Package metrics provides the centralized Prometheus metrics registry for
// rowview. All metrics are defined in their respective packages (api, cache,
// loader, ratelimit) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by rowview.
// All metrics are automatically registered via promauto in their packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/api):
//   - rowview_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status ("cache" for cache hits)
//   - rowview_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - rowview_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Retry Metrics (pkg/api):
//   - rowview_retries_total{error_class} (Counter): Retry attempts by error class
//   - rowview_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - rowview_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - rowview_cache_hits_total (Counter): Response cache hits
//   - rowview_cache_misses_total (Counter): Response cache misses
//   - rowview_cache_errors_total{operation} (Counter): Cache operation errors
//
// Loader Metrics (pkg/loader):
//   - rowview_loads_total{strategy, result} (Counter): Load operations by strategy and result
//   - rowview_load_duration_seconds{strategy} (Histogram): Wall-clock load duration by strategy
//   - rowview_rows_loaded (Gauge): Row count of the last successful load
//
// In-flight Metrics (pkg/ratelimit):
//   - rowview_inflight_requests (Gauge): Currently outstanding batch requests
//
// Example Prometheus Queries:
//
//	# Cache Hit Rate
//	rate(rowview_cache_hits_total[5m]) /
//	(rate(rowview_cache_hits_total[5m]) + rate(rowview_cache_misses_total[5m]))
//
//	# P95 Request Latency
//	histogram_quantile(0.95, rate(rowview_request_duration_seconds_bucket[5m]))
//
//	# Load Failure Rate
//	rate(rowview_loads_total{result="error"}[5m])
