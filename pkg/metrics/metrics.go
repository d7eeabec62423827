// Package metrics holds the HTTP server metrics and the exposition handler.
// Component metrics are defined next to the code that updates them (omdb,
// ingest, auth) and registered with the same default registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer every package uses via promauto.
var Registry = prometheus.DefaultRegisterer

var (
	// HTTPRequests counts served requests by route and status
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration tracks handler latency by route
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// HTTPInFlight is the number of requests currently being served
	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// ObserveRequest records one finished request.
func ObserveRequest(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the default gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics reference
//
// HTTP (this package):
//   - http_requests_total{method, route, status} (Counter)
//   - http_request_duration_seconds{method, route} (Histogram)
//   - http_requests_in_flight (Gauge)
//
// OMDB client (pkg/omdb):
//   - omdb_requests_total{kind, status} (Counter): attempts by lookup kind
//   - omdb_request_duration_seconds{kind} (Histogram)
//   - omdb_errors_total{class} (Counter): client, server, network, cancelled
//   - omdb_not_found_total (Counter): Response "False" envelopes
//   - omdb_retries_total{error_class} (Counter)
//   - omdb_retry_backoff_seconds{error_class} (Histogram)
//   - omdb_retry_exhausted_total{error_class} (Counter)
//
// Ingestion (pkg/ingest):
//   - ingest_runs_total{outcome} (Counter): succeeded, failed
//   - ingest_movies_total (Counter): movies produced by successful runs
//
// Auth (pkg/auth):
//   - auth_tokens_issued_total (Counter)
//   - auth_token_lookups_total{result} (Counter)
//   - auth_login_failures_total (Counter)
//   - auth_store_errors_total{operation} (Counter)
//
// Example queries:
//
//   # OMDB retry rate
//   sum(rate(omdb_retries_total[5m])) / sum(rate(omdb_requests_total[5m]))
//
//   # P95 handler latency per route
//   histogram_quantile(0.95, sum by (le, route) (rate(http_request_duration_seconds_bucket[5m])))
