package config_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediawatch/internal/pkg/config"
)

func TestValidateCronSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		wantErr  bool
	}{
		{"*/15 * * * *", false},
		{"30 5 * * 1-5", false},
		{"", true},
		{"* * * *", true},
		{"0 0 0 * * *", true}, // seconds field is not accepted
		{"61 * * * *", true},
	}
	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := config.ValidateCronSchedule(tt.schedule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, config.ValidateTimezone("UTC"))
	assert.Error(t, config.ValidateTimezone(""))
	assert.Error(t, config.ValidateTimezone("Mars/Olympus"))
}

func TestValidateRanges(t *testing.T) {
	assert.NoError(t, config.ValidateIntRange(5, 1, 10))
	assert.EqualError(t, config.ValidateIntRange(0, 1, 10), "value 0 is below minimum 1")
	assert.EqualError(t, config.ValidateIntRange(11, 1, 10), "value 11 exceeds maximum 10")
	assert.Error(t, config.ValidateIntRange(1, 10, 1))

	assert.NoError(t, config.ValidateDuration(time.Minute, time.Second, time.Hour))
	assert.Error(t, config.ValidateDuration(time.Millisecond, time.Second, time.Hour))
	assert.Error(t, config.ValidateDuration(2*time.Hour, time.Second, time.Hour))

	assert.NoError(t, config.ValidateFloatRange(0.5, 0, 1))
	assert.Error(t, config.ValidateFloatRange(1.5, 0, 1))

	assert.NoError(t, config.ValidatePositiveDuration(time.Second))
	assert.Error(t, config.ValidatePositiveDuration(0))
}

func TestValidateBaseURL(t *testing.T) {
	assert.NoError(t, config.ValidateBaseURL("http://data.gdeltproject.org/gdeltv2"))
	assert.Error(t, config.ValidateBaseURL("ftp://example.com"))
	assert.Error(t, config.ValidateBaseURL("http://"))
	assert.Error(t, config.ValidateBaseURL("::"))
}

func TestLoader(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := config.NewConfigMetrics("test", reg)

	t.Setenv("MW_CRON", "not a cron")
	t.Setenv("MW_INT", "8")
	t.Setenv("MW_INT_BAD", "100")
	t.Setenv("MW_DURATION", "10m")
	t.Setenv("MW_FLOAT", "0.25")
	t.Setenv("MW_BOOL", "false")

	l := config.NewLoader(metrics)
	assert.Equal(t, "*/15 * * * *", l.String("cron_schedule", "MW_CRON", "*/15 * * * *", config.ValidateCronSchedule))
	assert.Equal(t, 8, l.Int("slots", "MW_INT", 4, 1, 96))
	assert.Equal(t, 4, l.Int("concurrency", "MW_INT_BAD", 4, 1, 32))
	assert.Equal(t, 10*time.Minute, l.Duration("timeout", "MW_DURATION", time.Minute, time.Second, time.Hour))
	assert.Equal(t, 0.25, l.Float("ratio", "MW_FLOAT", 1, 0, 1))
	assert.False(t, l.Bool("flag", "MW_BOOL", true))
	assert.Equal(t, "keep", l.String("unset", "MW_UNSET", "keep", nil))
	l.Finish()

	require.Len(t, l.Warnings(), 2)
	assert.True(t, l.FallbackApplied())
	assert.Contains(t, l.Warnings()[0], "MW_CRON")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbackActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("cron_schedule")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues("concurrency")))
}

func TestLoader_NoFallback(t *testing.T) {
	metrics := config.NewConfigMetrics("clean", prometheus.NewRegistry())
	l := config.NewLoader(metrics)
	_ = l.Int("port", "MW_PORT_UNSET", 8080, 1, 65535)
	l.Finish()

	assert.False(t, l.FallbackApplied())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.FallbackActive))
}
