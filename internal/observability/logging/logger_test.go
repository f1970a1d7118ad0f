package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediawatch/internal/handler/http/requestid"
	"mediawatch/internal/observability/logging"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		env  string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			assert.Equal(t, tt.want, logging.Level())
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "json", slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("ingest finished", slog.Int("inserted", 12))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ingest finished", entry["msg"])
	assert.Equal(t, float64(12), entry["inserted"])
	assert.NotContains(t, entry, "source")
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logging.New(&buf, "text", slog.LevelDebug).Debug("reload", slog.String("path", "articles.json"))

	assert.Contains(t, buf.String(), "msg=reload")
	assert.Contains(t, buf.String(), "path=articles.json")
	assert.Contains(t, buf.String(), "source=")
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := logging.New(&buf, "json", slog.LevelInfo)

	logging.WithRequestID(context.Background(), base).Info("no id")
	assert.NotContains(t, buf.String(), "request_id")

	buf.Reset()
	ctx := requestid.WithRequestID(context.Background(), "req-42")
	logging.WithRequestID(ctx, base).Info("with id")
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
}

func TestContextRoundTrip(t *testing.T) {
	assert.Same(t, slog.Default(), logging.FromContext(context.Background()))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := logging.WithLogger(context.Background(), logger)
	assert.Same(t, logger, logging.FromContext(ctx))
}
