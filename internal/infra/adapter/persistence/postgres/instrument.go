package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"mediawatch/internal/observability/metrics"
)

// instrumented records the duration of every statement, labelled by its
// leading SQL keyword.
type instrumented struct {
	db DBTX
}

// Instrument wraps db with query duration metrics.
func Instrument(db DBTX) DBTX {
	return &instrumented{db: db}
}

func operation(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}

func (i *instrumented) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	defer func(start time.Time) { metrics.RecordDBQuery(operation(query), time.Since(start)) }(time.Now())
	return i.db.QueryContext(ctx, query, args...)
}

func (i *instrumented) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	defer func(start time.Time) { metrics.RecordDBQuery(operation(query), time.Since(start)) }(time.Now())
	return i.db.QueryRowContext(ctx, query, args...)
}

func (i *instrumented) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer func(start time.Time) { metrics.RecordDBQuery(operation(query), time.Since(start)) }(time.Now())
	return i.db.ExecContext(ctx, query, args...)
}

func (i *instrumented) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return i.db.BeginTx(ctx, opts)
}
