// Package http holds the server-level handlers (health probes, metrics and
// the welcome route) and the middleware shared by every route.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"mediawatch/internal/handler/http/respond"
	"mediawatch/internal/repository"
	"mediawatch/pkg/api"
)

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // RFC 3339
	Backend   string                 `json:"backend"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the outcome of one health check.
type CheckStatus struct {
	Status  string         `json:"status"` // healthy | degraded | unhealthy
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthHandler reports store availability and, for the postgres backend,
// connection pool statistics.
type HealthHandler struct {
	Pinger  repository.Pinger
	DB      *sql.DB
	Backend string
	Version string
}

// ServeHTTP returns 200 when every check passes and 503 otherwise.
// "degraded" is a warning and keeps the overall status healthy.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{"store": h.checkStore(ctx)}
	if h.DB != nil {
		checks["db_pool"] = checkPool(h.DB.Stats())
	}

	status, code := "healthy", http.StatusOK
	for _, c := range checks {
		if c.Status == "unhealthy" {
			status, code = "unhealthy", http.StatusServiceUnavailable
			break
		}
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Backend:   h.Backend,
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkStore(ctx context.Context) CheckStatus {
	if h.Pinger == nil {
		return CheckStatus{Status: "unhealthy", Message: "not configured"}
	}
	if err := h.Pinger.Ping(ctx); err != nil {
		slog.Default().Warn("health: store ping failed", slog.String("error", respond.SanitizeError(err)))
		return CheckStatus{Status: "unhealthy", Message: "store unavailable"}
	}
	return CheckStatus{Status: "healthy"}
}

func checkPool(stats sql.DBStats) CheckStatus {
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
	// 0 は無制限
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{Status: "degraded", Message: "connection pool max connections not configured", Details: details}
	}
	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= 80 {
		return CheckStatus{Status: "degraded", Message: "connection pool utilization above 80%", Details: details}
	}
	return CheckStatus{Status: "healthy", Details: details}
}

// ReadyHandler is the readiness probe: 200 once the store answers a ping.
type ReadyHandler struct {
	Pinger repository.Pinger
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.Pinger == nil {
		http.Error(w, "store not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.Pinger.Ping(ctx); err != nil {
		http.Error(w, "store not ready", http.StatusServiceUnavailable)
		return
	}
	writeText(w, "ready")
}

// LiveHandler is the liveness probe.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	writeText(w, "alive")
}

// WelcomeHandler answers the root path; every other unmatched path is 404.
type WelcomeHandler struct {
	Version string
}

func (h WelcomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	respond.JSON(w, http.StatusOK, api.Welcome{
		Message: "Welcome to the mediawatch API. Endpoints live under " + api.BasePath + ".",
		Version: h.Version,
	})
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Default().Warn("probe: failed to write response", slog.String("error", err.Error()))
	}
}
