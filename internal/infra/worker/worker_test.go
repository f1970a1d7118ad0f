package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediawatch/internal/infra/worker"
)

/*────────────────────  設定  ────────────────────*/

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := worker.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestWorkerConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *worker.WorkerConfig)
	}{
		{"cron", func(c *worker.WorkerConfig) { c.CronSchedule = "every minute" }},
		{"timezone", func(c *worker.WorkerConfig) { c.Timezone = "Mars/Olympus" }},
		{"timeout", func(c *worker.WorkerConfig) { c.IngestTimeout = time.Second }},
		{"port", func(c *worker.WorkerConfig) { c.HealthPort = 80 }},
		{"same ports", func(c *worker.WorkerConfig) { c.MetricsPort = c.HealthPort }},
		{"base url", func(c *worker.WorkerConfig) { c.GDELTBaseURL = "ftp://x" }},
		{"slots", func(c *worker.WorkerConfig) { c.MaxSlots = 0 }},
		{"concurrency", func(c *worker.WorkerConfig) { c.Concurrency = 64 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := worker.DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CRON_SCHEDULE", "0 * * * *")
	t.Setenv("WORKER_TIMEZONE", "Nowhere/City")
	t.Setenv("GDELT_MAX_SLOTS", "12")
	t.Setenv("GDELT_CONCURRENCY", "100")
	t.Setenv("INGEST_REQUIRE_ATTRIBUTION", "false")

	m := worker.NewWorkerMetrics(prometheus.NewRegistry())
	cfg := worker.LoadConfigFromEnv(discardLogger(), m)

	assert.Equal(t, "0 * * * *", cfg.CronSchedule)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 12, cfg.MaxSlots)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.False(t, cfg.RequireAttribution)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("timezone")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("concurrency")))
}

/*────────────────────  メトリクス  ────────────────────*/

func TestWorkerMetrics_RecordRun(t *testing.T) {
	m := worker.NewWorkerMetrics(prometheus.NewRegistry())
	slot := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	m.RecordRun(nil, 2*time.Second, 3, slot)
	m.RecordRun(errors.New("boom"), time.Second, 0, time.Time{})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRunsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRunsTotal.WithLabelValues("failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SlotsProcessedTotal))
	assert.Equal(t, float64(slot.Unix()), testutil.ToFloat64(m.LastSlot))
	assert.Greater(t, testutil.ToFloat64(m.LastSuccess), 0.0)
}

/*────────────────────  ヘルスチェック  ────────────────────*/

func getHealth(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthServer_Endpoints(t *testing.T) {
	hs := worker.NewHealthServer(":0", discardLogger())
	h := hs.Handler()

	code, body := getHealth(t, h, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body = getHealth(t, h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready", body["status"])

	hs.SetReady(true)
	hs.AddCheck("store", func(context.Context) error { return nil })
	code, _ = getHealth(t, h, "/health/ready")
	assert.Equal(t, http.StatusOK, code)

	hs.AddCheck("gdelt", func(context.Context) error { return errors.New("circuit open") })
	code, body = getHealth(t, h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, map[string]any{"store": "ok", "gdelt": "circuit open"}, body["checks"])
}

func TestHealthServer_StartStop(t *testing.T) {
	hs := worker.NewHealthServer("127.0.0.1:0", discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hs.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
