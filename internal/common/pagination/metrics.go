package pagination

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts paginated requests by endpoint, status and page bucket.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagination_requests_total",
			Help: "Total number of paginated requests",
		},
		[]string{"endpoint", "status", "page_range"},
	)

	// ErrorsTotal counts pagination errors by type (validation, repository).
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagination_errors_total",
			Help: "Total number of pagination errors",
		},
		[]string{"endpoint", "type"},
	)
)

func RecordRequest(endpoint string, statusCode, page int) {
	RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(statusCode), pageRangeBucket(page)).Inc()
}

func RecordError(endpoint, errorType string) {
	ErrorsTotal.WithLabelValues(endpoint, errorType).Inc()
}

func pageRangeBucket(page int) string {
	switch {
	case page <= 10:
		return "1-10"
	case page <= 50:
		return "11-50"
	case page <= 100:
		return "51-100"
	default:
		return "100+"
	}
}
