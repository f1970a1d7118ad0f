// Package persistence selects the article store: PostgreSQL when a DSN is
// configured, the JSON file store otherwise.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"mediawatch/internal/infra/adapter/persistence/filestore"
	"mediawatch/internal/infra/adapter/persistence/postgres"
	"mediawatch/internal/infra/db"
	"mediawatch/internal/repository"
	"mediawatch/internal/resilience/circuitbreaker"
	"mediawatch/pkg/config"
)

// Config selects and configures the backend.
type Config struct {
	DatabaseURL  string
	ArticlesFile string
	EventsFile   string
	TTL          time.Duration
	// Migrate applies the schema on open (postgres only).
	Migrate bool
	// Breaker routes database calls through a circuit breaker.
	Breaker bool
}

// ConfigFromEnv reads DATABASE_URL, DATA_FILE, EVENTS_FILE, STORE_TTL and
// DB_MIGRATE.
func ConfigFromEnv() Config {
	return Config{
		DatabaseURL:  config.GetEnvString("DATABASE_URL", ""),
		ArticlesFile: config.GetEnvString("DATA_FILE", "data/articles.json"),
		EventsFile:   config.GetEnvString("EVENTS_FILE", "data/events.json"),
		TTL:          config.GetEnvDuration("STORE_TTL", filestore.DefaultTTL),
		Migrate:      config.GetEnvBool("DB_MIGRATE", true),
	}
}

// Stores bundles the repositories of one backend.
type Stores struct {
	Backend  string
	Articles repository.ArticleRepository
	Events   repository.IngestEventRepository
	// Reloader is nil for backends without a snapshot.
	Reloader repository.Reloader
	Pinger   repository.Pinger
	// DB is nil for the file store.
	DB    *sql.DB
	close func() error
}

// Close releases the backend.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

type dbPinger struct{ db *sql.DB }

func (p dbPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// Open connects the configured backend.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Stores, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DatabaseURL == "" {
		fs := filestore.New(filestore.Config{
			ArticlesPath: cfg.ArticlesFile,
			EventsPath:   cfg.EventsFile,
			TTL:          cfg.TTL,
		}, logger)
		logger.Info("using file store", slog.String("path", cfg.ArticlesFile), slog.Duration("ttl", cfg.TTL))
		return &Stores{
			Backend:  "file",
			Articles: fs,
			Events:   fs,
			Reloader: fs,
			Pinger:   fs,
		}, nil
	}

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Migrate {
		if err := db.MigrateUp(database); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	var conn postgres.DBTX = database
	var pinger repository.Pinger = dbPinger{db: database}
	if cfg.Breaker {
		cb := circuitbreaker.NewDBCircuitBreaker(database)
		conn, pinger = cb, cb
	}
	conn = postgres.Instrument(conn)

	logger.Info("using postgres store", slog.Bool("circuit_breaker", cfg.Breaker))
	return &Stores{
		Backend:  "postgres",
		Articles: postgres.NewArticleRepo(conn),
		Events:   postgres.NewIngestEventRepo(conn),
		Pinger:   pinger,
		DB:       database,
		close:    database.Close,
	}, nil
}
