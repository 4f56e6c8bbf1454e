// Package metrics provides Prometheus metrics for the TeraLink proxy.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teralink_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teralink_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Upstream metrics
	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teralink_upstream_requests_total",
			Help: "Total number of requests sent to TeraBox",
		},
		[]string{"endpoint", "result"},
	)

	upstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teralink_upstream_request_duration_seconds",
			Help:    "TeraBox request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Session metrics
	loginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teralink_login_attempts_total",
			Help: "Total TeraBox login attempts",
		},
		[]string{"result"},
	)

	sessionCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teralink_session_cache_total",
			Help: "Session cache lookups by result",
		},
		[]string{"result"},
	)

	// Resolve metrics
	resolveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teralink_resolve_duration_seconds",
			Help:    "Time to build a manifest",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"mode", "result"},
	)

	listCallsPerResolve = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "teralink_list_calls_per_resolve",
			Help:    "Directory listing calls issued per manifest",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordUpstreamRequest records one call to a TeraBox endpoint.
func RecordUpstreamRequest(endpoint string, duration time.Duration, err error) {
	upstreamRequestsTotal.WithLabelValues(endpoint, result(err)).Inc()
	upstreamRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordLogin records a login attempt.
func RecordLogin(err error) {
	loginAttemptsTotal.WithLabelValues(result(err)).Inc()
}

// RecordSessionCache records a session cache lookup.
func RecordSessionCache(hit bool) {
	if hit {
		sessionCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	sessionCacheTotal.WithLabelValues("miss").Inc()
}

// RecordSessionStoreError records a login whose cookies could not be cached.
func RecordSessionStoreError() {
	sessionCacheTotal.WithLabelValues("store_error").Inc()
}

// RecordResolve records a finished manifest build.
func RecordResolve(mode string, listCalls int, duration time.Duration, err error) {
	resolveDuration.WithLabelValues(mode, result(err)).Observe(duration.Seconds())
	if err == nil {
		listCallsPerResolve.Observe(float64(listCalls))
	}
}
