// Package observability groups structured logging, Prometheus metrics and
// OpenTelemetry tracing.
//
// Subpackages:
//   - logging: slog constructors and context propagation
//   - metrics: HTTP, ingest, cache and store metrics
//   - tracing: tracer provider setup and HTTP middleware
package observability
