package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	// Upstream forecast service
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_upstream_requests_total",
			Help: "Calls made to the forecast service",
		},
		[]string{"route", "operation", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forecast_upstream_duration_seconds",
			Help:    "Latency of forecast service calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "operation"},
	)

	// Normalization
	NormalizerCollisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_normalizer_collisions_total",
			Help: "Result rows overwritten because two series shared a (Date, key) pair",
		},
		[]string{"route"},
	)

	StaleSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_stale_submissions_total",
			Help: "Forecast results discarded because a newer submission exists",
		},
		[]string{"route"},
	)

	// Cache
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_cache_lookups_total",
			Help: "Redis cache lookups by cache and result",
		},
		[]string{"cache", "result"},
	)
)

// RecordHTTPRequest observes one served request.
func RecordHTTPRequest(method, route, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// RecordUpstream observes one call to the forecast service.
func RecordUpstream(route, operation string, err error, d time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequests.WithLabelValues(route, operation, outcome).Inc()
	UpstreamDuration.WithLabelValues(route, operation).Observe(d.Seconds())
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}
