package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"mediawatch/internal/handler/http/pathutil"
	"mediawatch/internal/handler/http/responsewriter"
)

// Middleware opens a server span per request. It continues a W3C trace
// context from the request headers and echoes the trace ID in X-Trace-Id.
// Span names use the route template, e.g. "GET /api/v1/countries/:code".
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		route := pathutil.NormalizePath(r.URL.Path)
		ctx, span := GetTracer().Start(ctx, r.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if sc := span.SpanContext(); sc.HasTraceID() {
			w.Header().Set("X-Trace-Id", sc.TraceID().String())
		}

		rw := responsewriter.Wrap(w)
		next.ServeHTTP(rw, r.WithContext(ctx))

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.String("http.target", r.URL.RequestURI()),
			attribute.Int("http.status_code", rw.StatusCode()),
		)
		if rw.StatusCode() >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rw.StatusCode()))
		}
	})
}
