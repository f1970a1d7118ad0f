// Package metrics holds the Prometheus metrics shared by the API server and
// the ingest worker. Everything is registered on the default registry and
// exposed via /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ResponseCacheTotal counts response cache lookups; result is hit or miss.
	ResponseCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_lookups_total",
			Help: "Total number of response cache lookups",
		},
		[]string{"result"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// Store metrics
var (
	StoreArticles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_articles",
			Help: "Number of articles in the loaded snapshot",
		},
	)

	StoreReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_reloads_total",
			Help: "Total number of article snapshot reloads",
		},
		[]string{"result"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"},
	)
)

// Ingest metrics
var (
	GDELTDownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gdelt_downloads_total",
			Help: "Total number of GDELT export downloads",
		},
		[]string{"result"},
	)

	GDELTDownloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gdelt_download_duration_seconds",
			Help:    "Time taken to download and parse one GDELT export",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)

	// ArticlesIngestedTotal counts records by outcome: matched, flagged,
	// inserted, duplicate or skipped.
	ArticlesIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_ingested_total",
			Help: "Total number of GKG records processed by outcome",
		},
		[]string{"outcome"},
	)

	TopicReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topic_reloads_total",
			Help: "Total number of topic file reloads",
		},
		[]string{"result"},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata.
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordDBQuery records the duration of a repository operation such as
// "country_aggregates".
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
