package circuitbreaker

import (
	"context"
	"database/sql"
	"time"

	"github.com/sony/gobreaker"
)

// DBCircuitBreaker guards a *sql.DB. It satisfies the DBTX interface of the
// postgres repositories, so it can be dropped in front of them.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

// DBConfig opens after 5 consecutive failures and probes again after 30 seconds.
func DBConfig() Config {
	return Config{
		Name:             "database",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
}

func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, DBConfig())
}

func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{cb: New(cfg), db: db}
}

func (dcb *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return Do(dcb.cb, func() (*sql.Rows, error) {
		return dcb.db.QueryContext(ctx, query, args...)
	})
}

func (dcb *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return Do(dcb.cb, func() (sql.Result, error) {
		return dcb.db.ExecContext(ctx, query, args...)
	})
}

// QueryRowContext is not guarded: sql.Row defers its error until Scan.
func (dcb *DBCircuitBreaker) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return dcb.db.QueryRowContext(ctx, query, args...)
}

// BeginTx counts a failure to open the transaction. Statements run on the
// returned *sql.Tx bypass the breaker.
func (dcb *DBCircuitBreaker) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return Do(dcb.cb, func() (*sql.Tx, error) {
		return dcb.db.BeginTx(ctx, opts)
	})
}

// Ping checks the connection through the breaker.
func (dcb *DBCircuitBreaker) Ping(ctx context.Context) error {
	_, err := dcb.cb.Execute(func() (interface{}, error) {
		return nil, dcb.db.PingContext(ctx)
	})
	return err
}

func (dcb *DBCircuitBreaker) State() gobreaker.State {
	return dcb.cb.State()
}

func (dcb *DBCircuitBreaker) IsOpen() bool {
	return dcb.cb.IsOpen()
}

// DB returns the underlying connection for calls that must not be guarded,
// such as migrations.
func (dcb *DBCircuitBreaker) DB() *sql.DB {
	return dcb.db
}
