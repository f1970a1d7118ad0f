package tracing_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mediawatch/internal/observability/tracing"
)

func setup(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	shutdown := tracing.Init(1, sdktrace.NewSimpleSpanProcessor(exporter))
	t.Cleanup(func() {
		_ = shutdown(context.Background())
		otel.SetTracerProvider(sdktrace.NewTracerProvider())
	})
	return exporter
}

func attr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestMiddleware_CreatesSpan(t *testing.T) {
	exporter := setup(t)

	h := tracing.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/countries/FR?days=7", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/v1/countries/:code", spans[0].Name)
	assert.Equal(t, spans[0].SpanContext.TraceID().String(), rec.Header().Get("X-Trace-Id"))

	status, ok := attr(spans[0].Attributes, "http.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(200), status.AsInt64())
	target, _ := attr(spans[0].Attributes, "http.target")
	assert.Equal(t, "/api/v1/countries/FR?days=7", target.AsString())
}

func TestMiddleware_PropagatesTraceContext(t *testing.T) {
	exporter := setup(t)

	h := tracing.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/continents", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	h.ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent.SpanID().String())
}

func TestMiddleware_ErrorStatus(t *testing.T) {
	tests := []struct {
		code int
		want codes.Code
	}{
		{http.StatusInternalServerError, codes.Error},
		{http.StatusBadRequest, codes.Unset},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			exporter := setup(t)
			h := tracing.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/trends/compare", nil))

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.want, spans[0].Status.Code)
		})
	}
}
