package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// adminAuthTotal counts admin authentication outcomes by role and result.
var adminAuthTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "admin_auth_requests_total",
		Help: "Admin endpoint authentication attempts by role and result",
	},
	[]string{"role", "result"}, // result: success | failure | forbidden
)

func recordAuth(role, result string) {
	adminAuthTotal.WithLabelValues(role, result).Inc()
}
