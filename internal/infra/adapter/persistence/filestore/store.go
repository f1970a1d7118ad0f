// Package filestore serves the article repositories from a JSON data file.
//
// The whole file is loaded into memory and re-read when the snapshot is older
// than the configured TTL, or on demand through Reload. Aggregates are computed
// in Go. The store backs the API when no database is configured and doubles as
// the worker's sink in file mode.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/observability/metrics"
)

// DefaultTTL matches the refresh period of the daily ingest export.
const DefaultTTL = 1400 * time.Minute

// Config configures a Store.
type Config struct {
	ArticlesPath string
	EventsPath   string
	TTL          time.Duration
}

// Store is safe for concurrent use.
type Store struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	articles []*entity.Article
	loadedAt time.Time
	nextID   int64
}

// New creates a store. Data is loaded lazily on first use.
func New(cfg Config, logger *slog.Logger) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{cfg: cfg, logger: logger, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Reload re-reads the data file unconditionally.
func (s *Store) Reload(ctx context.Context) error {
	articles, err := s.readArticles(ctx)
	if err != nil {
		metrics.RecordStoreReload(false, 0)
		return err
	}
	metrics.RecordStoreReload(true, len(articles))

	s.mu.Lock()
	s.articles = articles
	s.loadedAt = s.now()
	s.nextID = int64(len(articles)) + 1
	s.mu.Unlock()

	s.logger.Info("article snapshot loaded",
		slog.String("path", s.cfg.ArticlesPath),
		slog.Int("articles", len(articles)))
	return nil
}

// Ping reports whether the data file is readable.
func (s *Store) Ping(_ context.Context) error {
	if _, err := os.Stat(s.cfg.ArticlesPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}

// snapshot returns the current article set, reloading it when stale. A
// failed reload keeps serving the previous snapshot.
func (s *Store) snapshot(ctx context.Context) []*entity.Article {
	s.mu.RLock()
	fresh := !s.loadedAt.IsZero() && s.now().Sub(s.loadedAt) <= s.cfg.TTL
	articles := s.articles
	s.mu.RUnlock()
	if fresh {
		return articles
	}

	if err := s.Reload(ctx); err != nil {
		s.logger.Error("article snapshot reload failed, serving stale data",
			slog.String("path", s.cfg.ArticlesPath),
			slog.Any("error", err))
		s.mu.Lock()
		// avoid retrying on every request
		s.loadedAt = s.now()
		s.mu.Unlock()
		return articles
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.articles
}

func (s *Store) readArticles(ctx context.Context) ([]*entity.Article, error) {
	var docs []Document
	if err := readJSON(s.cfg.ArticlesPath, &docs); err != nil {
		return nil, fmt.Errorf("read articles: %w", err)
	}

	articles := make([]*entity.Article, 0, len(docs))
	for i := range docs {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		a, err := docs[i].ToArticle()
		if err != nil {
			s.logger.Warn("skipping document", slog.Any("error", err))
			continue
		}
		a.ID = int64(len(articles)) + 1
		articles = append(articles, a)
	}

	// newest first keeps recency queries and title de-duplication simple
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].SeenAt.After(articles[j].SeenAt)
	})
	return articles, nil
}

// readJSON decodes path into v. A missing file leaves v untouched.
func readJSON(path string, v interface{}) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return json.NewDecoder(f).Decode(v)
}

// writeJSON replaces path atomically.
func writeJSON(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(v); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
