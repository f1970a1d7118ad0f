package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Loader reads environment variables and falls back to the default whenever
// a value is unparsable or fails validation. Every fallback is kept as a
// warning so the caller can log them once at startup.
//
//	l := config.NewLoader(metrics)
//	schedule := l.String("cron_schedule", "CRON_SCHEDULE", "*/15 * * * *", config.ValidateCronSchedule)
//	for _, w := range l.Warnings() { logger.Warn(w) }
type Loader struct {
	metrics  *ConfigMetrics
	warnings []string
}

// NewLoader creates a loader. metrics may be nil.
func NewLoader(metrics *ConfigMetrics) *Loader {
	return &Loader{metrics: metrics}
}

// Warnings returns the fallback messages collected so far.
func (l *Loader) Warnings() []string {
	return l.warnings
}

// FallbackApplied reports whether any field fell back to its default.
func (l *Loader) FallbackApplied() bool {
	return len(l.warnings) > 0
}

// Finish records the load in the metrics, if any.
func (l *Loader) Finish() {
	if l.metrics == nil {
		return
	}
	l.metrics.RecordLoadTimestamp()
	l.metrics.SetFallbackActive(l.FallbackApplied())
}

func load[T any](l *Loader, field, key string, def T, parse func(string) (T, error), validate func(T) error) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}

	v, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(v)
	}
	if err == nil {
		return v
	}

	l.warnings = append(l.warnings, fmt.Sprintf("%s: %v, using default %v", key, err, def))
	if l.metrics != nil {
		l.metrics.RecordValidationError(field)
		l.metrics.RecordFallback(field)
	}
	slog.Debug("config fallback applied", slog.String("key", key), slog.Any("error", err))
	return def
}

// String loads a string value.
func (l *Loader) String(field, key, def string, validate func(string) error) string {
	return load(l, field, key, def, func(s string) (string, error) { return s, nil }, validate)
}

// Int loads an integer in [min, max].
func (l *Loader) Int(field, key string, def, min, max int) int {
	return load(l, field, key, def, strconv.Atoi, func(v int) error { return ValidateIntRange(v, min, max) })
}

// Float loads a float in [min, max].
func (l *Loader) Float(field, key string, def, min, max float64) float64 {
	return load(l, field, key, def,
		func(s string) (float64, error) { return strconv.ParseFloat(s, 64) },
		func(v float64) error { return ValidateFloatRange(v, min, max) })
}

// Duration loads a duration in [min, max].
func (l *Loader) Duration(field, key string, def, min, max time.Duration) time.Duration {
	return load(l, field, key, def, time.ParseDuration, func(v time.Duration) error { return ValidateDuration(v, min, max) })
}

// Bool loads a boolean.
func (l *Loader) Bool(field, key string, def bool) bool {
	return load(l, field, key, def, strconv.ParseBool, nil)
}
