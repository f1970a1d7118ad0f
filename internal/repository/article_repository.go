// Package repository declares the storage ports used by the usecases. The
// postgres adapter implements them with SQL aggregates, the file store with
// in-memory aggregation over a JSON snapshot.
package repository

import (
	"context"
	"time"

	"mediawatch/internal/domain/entity"
)

// ArticleFilter narrows the article set. Zero values disable a condition.
type ArticleFilter struct {
	From    *time.Time // seen_at >= From
	To      *time.Time // seen_at <= To
	Country string     // ISO alpha-2 code
	// Author matches any author case-insensitively. The literal "unknown"
	// selects articles without authors.
	Author string
	// UniqueTitles makes Recent keep only the newest article of each title.
	UniqueTitles bool
}

// Summary is a count with its mean tone.
type Summary struct {
	Count   int64
	AvgTone float64
}

// RecentPerGroup is the number of recent articles embedded in each group.
const RecentPerGroup = 5

type ArticleRepository interface {
	// Count returns the number of articles matching f.
	Count(ctx context.Context, f ArticleFilter) (int64, error)
	// Summary counts articles matching f after de-duplicating them by title.
	Summary(ctx context.Context, f ArticleFilter) (Summary, error)
	// CountryAggregates returns one row per non-empty source country.
	CountryAggregates(ctx context.Context, f ArticleFilter) ([]entity.CountryAggregate, error)
	// ActiveDays returns the number of distinct UTC days with at least one article.
	ActiveDays(ctx context.Context) (int64, error)
	// Timeline buckets the matching articles by interval, oldest first.
	Timeline(ctx context.Context, f ArticleFilter, interval entity.Interval) ([]entity.TimelinePoint, error)
	// Recent returns up to limit matching articles, newest first.
	Recent(ctx context.Context, f ArticleFilter, limit int) ([]*entity.Article, error)
	// TopSources counts articles per publishing domain, largest first.
	TopSources(ctx context.Context, f ArticleFilter, limit int) ([]entity.NamedCount, error)
	// Grouped groups matching articles by author or by country code, largest
	// group first. Unattributed articles form a group with an empty name.
	Grouped(ctx context.Context, field entity.GroupField, f ArticleFilter) ([]entity.Group, error)
	// SourceStatistics de-duplicates by title and groups by (country, author set).
	SourceStatistics(ctx context.Context, f ArticleFilter) ([]entity.SourceStatistics, error)
	// InsertBatch stores new articles, skipping GDELT ids already present,
	// and returns the number inserted.
	InsertBatch(ctx context.Context, articles []*entity.Article) (int, error)
}

// IngestEventRepository keeps the ingest progress log.
type IngestEventRepository interface {
	Record(ctx context.Context, e *entity.IngestEvent) error
	// LatestSuccess returns the successful event with the greatest EventTime,
	// or nil when none exists.
	LatestSuccess(ctx context.Context, eventType string) (*entity.IngestEvent, error)
}

// Reloader is implemented by stores backed by a snapshot that can be re-read.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Pinger is implemented by stores that can report their availability.
type Pinger interface {
	Ping(ctx context.Context) error
}
