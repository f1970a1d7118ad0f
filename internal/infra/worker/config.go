// Package worker holds the ingest worker's configuration, health server and
// job metrics.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"mediawatch/internal/infra/gdelt"
	"mediawatch/internal/pkg/config"
)

// WorkerConfig controls the ingest schedule and the GDELT download.
type WorkerConfig struct {
	// CronSchedule is a five-field cron expression.
	CronSchedule string
	// Timezone is the IANA zone the schedule is evaluated in.
	Timezone string
	// IngestTimeout bounds a single run.
	IngestTimeout time.Duration
	HealthPort    int
	MetricsPort   int

	GDELTBaseURL string
	// MaxSlots caps the exports processed per run (1-96).
	MaxSlots int
	// Concurrency is the number of parallel export downloads (1-16).
	Concurrency int

	TopicFile          string
	CountryMappingFile string
	RequireAttribution bool
}

// DefaultConfig runs every 15 minutes, matching the GKG publication period.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:       "*/15 * * * *",
		Timezone:           "UTC",
		IngestTimeout:      10 * time.Minute,
		HealthPort:         9091,
		MetricsPort:        9090,
		GDELTBaseURL:       gdelt.DefaultBaseURL,
		MaxSlots:           8,
		Concurrency:        4,
		TopicFile:          "configs/topic.yaml",
		CountryMappingFile: "",
		RequireAttribution: true,
	}
}

// Validate collects every invalid field into one error.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.IngestTimeout, time.Minute, 2*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("ingest timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, fmt.Errorf("health and metrics ports must differ (both %d)", c.HealthPort))
	}
	if err := config.ValidateBaseURL(c.GDELTBaseURL); err != nil {
		errs = append(errs, fmt.Errorf("gdelt base url: %w", err))
	}
	if err := config.ValidateIntRange(c.MaxSlots, 1, 96); err != nil {
		errs = append(errs, fmt.Errorf("max slots: %w", err))
	}
	if err := config.ValidateIntRange(c.Concurrency, 1, 16); err != nil {
		errs = append(errs, fmt.Errorf("concurrency: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// Location returns the schedule's time zone. Validate guarantees it loads.
func (c *WorkerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv reads the worker configuration. Invalid values fall back
// to their defaults with a warning, so the returned config is always usable.
//
// Environment variables: CRON_SCHEDULE, WORKER_TIMEZONE, INGEST_TIMEOUT,
// HEALTH_PORT, METRICS_PORT, GDELT_BASE_URL, GDELT_MAX_SLOTS,
// GDELT_CONCURRENCY, TOPIC_FILE, COUNTRY_MAPPING_FILE,
// INGEST_REQUIRE_ATTRIBUTION.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	def := DefaultConfig()
	var cm *config.ConfigMetrics
	if metrics != nil {
		cm = metrics.ConfigMetrics
	}
	l := config.NewLoader(cm)

	cfg := &WorkerConfig{
		CronSchedule:       l.String("cron_schedule", "CRON_SCHEDULE", def.CronSchedule, config.ValidateCronSchedule),
		Timezone:           l.String("timezone", "WORKER_TIMEZONE", def.Timezone, config.ValidateTimezone),
		IngestTimeout:      l.Duration("ingest_timeout", "INGEST_TIMEOUT", def.IngestTimeout, time.Minute, 2*time.Hour),
		HealthPort:         l.Int("health_port", "HEALTH_PORT", def.HealthPort, 1024, 65535),
		MetricsPort:        l.Int("metrics_port", "METRICS_PORT", def.MetricsPort, 1024, 65535),
		GDELTBaseURL:       l.String("gdelt_base_url", "GDELT_BASE_URL", def.GDELTBaseURL, config.ValidateBaseURL),
		MaxSlots:           l.Int("max_slots", "GDELT_MAX_SLOTS", def.MaxSlots, 1, 96),
		Concurrency:        l.Int("concurrency", "GDELT_CONCURRENCY", def.Concurrency, 1, 16),
		TopicFile:          l.String("topic_file", "TOPIC_FILE", def.TopicFile, nil),
		CountryMappingFile: l.String("country_mapping_file", "COUNTRY_MAPPING_FILE", def.CountryMappingFile, nil),
		RequireAttribution: l.Bool("require_attribution", "INGEST_REQUIRE_ATTRIBUTION", def.RequireAttribution),
	}
	l.Finish()

	for _, w := range l.Warnings() {
		logger.Warn("configuration fallback applied", slog.String("warning", w))
	}
	return cfg
}
