package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"mediawatch/internal/pkg/config"
)

// WorkerMetrics adds the ingest job metrics to the configuration metrics.
type WorkerMetrics struct {
	*config.ConfigMetrics

	JobRunsTotal        *prometheus.CounterVec
	JobDuration         prometheus.Histogram
	SlotsProcessedTotal prometheus.Counter
	LastSuccess         prometheus.Gauge
	// LastSlot is the Unix time of the newest stored export.
	LastSlot prometheus.Gauge
}

// NewWorkerMetrics registers the metrics on reg, or on the default
// registerer when reg is nil.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker", reg),

		JobRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_ingest_runs_total",
			Help: "Ingest runs by status (success/failure)",
		}, []string{"status"}),

		JobDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_ingest_duration_seconds",
			Help:    "Duration of ingest runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 180, 300, 600},
		}),

		SlotsProcessedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "worker_ingest_slots_processed_total",
			Help: "GKG export slots stored",
		}),

		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_ingest_last_success_timestamp",
			Help: "Unix timestamp of the last successful ingest run",
		}),

		LastSlot: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_ingest_last_slot_timestamp",
			Help: "Unix timestamp of the newest stored GKG slot",
		}),
	}
}

// RecordRun records one ingest run.
func (m *WorkerMetrics) RecordRun(err error, duration time.Duration, slots int, lastSlot time.Time) {
	m.JobDuration.Observe(duration.Seconds())
	m.SlotsProcessedTotal.Add(float64(slots))
	if !lastSlot.IsZero() {
		m.LastSlot.Set(float64(lastSlot.Unix()))
	}
	if err != nil {
		m.JobRunsTotal.WithLabelValues("failure").Inc()
		return
	}
	m.JobRunsTotal.WithLabelValues("success").Inc()
	m.LastSuccess.SetToCurrentTime()
}
