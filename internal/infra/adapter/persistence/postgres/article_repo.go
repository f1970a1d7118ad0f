package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/repository"
)

// DBTX is the subset of *sql.DB used by the repositories. It is also
// satisfied by circuitbreaker.DBCircuitBreaker.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// listSeparator joins authors and themes in a single column. GDELT uses the
// same separator, and author names never contain it.
const listSeparator = ";"

const articleColumns = `a.id, a.gdelt_id, a.title, a.url, a.source_name, a.source_country,
a.authors, a.themes, a.tone_overall, a.tone_positive, a.tone_negative, a.tone_polarity,
a.tone_activity, a.tone_emotionality, a.word_count, a.score, a.flagged, a.seen_at, a.created_at`

type ArticleRepo struct {
	db           DBTX
	queryBuilder *ArticleQueryBuilder
}

func NewArticleRepo(db DBTX) repository.ArticleRepository {
	return &ArticleRepo{
		db:           db,
		queryBuilder: NewArticleQueryBuilder(),
	}
}

func (repo *ArticleRepo) Count(ctx context.Context, f repository.ArticleFilter) (int64, error) {
	where, args := repo.queryBuilder.BuildWhereClause(f, "a")
	query := "SELECT COUNT(*) FROM articles a " + where

	var count int64
	if err := repo.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

// Summary keeps the most recent article of every title.
func (repo *ArticleRepo) Summary(ctx context.Context, f repository.ArticleFilter) (repository.Summary, error) {
	where, args := repo.queryBuilder.BuildWhereClause(f, "a")
	query := `
SELECT COUNT(*), COALESCE(AVG(d.tone_overall), 0)
FROM (
    SELECT DISTINCT ON (a.title) a.tone_overall
    FROM articles a
    ` + where + `
    ORDER BY a.title, a.seen_at DESC
) d`

	var s repository.Summary
	if err := repo.db.QueryRowContext(ctx, query, args...).Scan(&s.Count, &s.AvgTone); err != nil {
		return repository.Summary{}, fmt.Errorf("Summary: %w", err)
	}
	return s, nil
}

func (repo *ArticleRepo) CountryAggregates(ctx context.Context, f repository.ArticleFilter) ([]entity.CountryAggregate, error) {
	where, args := repo.queryBuilder.BuildWhereClause(f, "a", "a.source_country <> ''")
	query := `
SELECT a.source_country, COUNT(*), COALESCE(AVG(a.tone_overall), 0)
FROM articles a
` + where + `
GROUP BY a.source_country
ORDER BY COUNT(*) DESC, a.source_country`

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("CountryAggregates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]entity.CountryAggregate, 0, 64)
	for rows.Next() {
		var c entity.CountryAggregate
		if err := rows.Scan(&c.Code, &c.Count, &c.AvgTone); err != nil {
			return nil, fmt.Errorf("CountryAggregates: Scan: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (repo *ArticleRepo) ActiveDays(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(DISTINCT date_trunc('day', seen_at AT TIME ZONE 'UTC')) FROM articles`
	var days int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&days); err != nil {
		return 0, fmt.Errorf("ActiveDays: %w", err)
	}
	return days, nil
}

// Timeline relies on date_trunc('week') starting weeks on Monday, which
// matches entity.Interval.Truncate.
func (repo *ArticleRepo) Timeline(ctx context.Context, f repository.ArticleFilter, interval entity.Interval) ([]entity.TimelinePoint, error) {
	where, args := repo.queryBuilder.BuildWhereClause(f, "a")
	query := fmt.Sprintf(`
SELECT date_trunc(%s, a.seen_at AT TIME ZONE 'UTC') AS bucket, COUNT(*), COALESCE(AVG(a.tone_overall), 0)
FROM articles a
%s
GROUP BY bucket
ORDER BY bucket`, nextParam(args), where)
	args = append(args, string(interval))

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Timeline: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]entity.TimelinePoint, 0, 32)
	for rows.Next() {
		var p entity.TimelinePoint
		if err := rows.Scan(&p.Date, &p.Count, &p.AvgTone); err != nil {
			return nil, fmt.Errorf("Timeline: Scan: %w", err)
		}
		p.Date = asUTC(p.Date)
		result = append(result, p)
	}
	return result, rows.Err()
}

func (repo *ArticleRepo) Recent(ctx context.Context, f repository.ArticleFilter, limit int) ([]*entity.Article, error) {
	where, args := repo.queryBuilder.BuildWhereClause(f, "a")
	from := "articles a"
	if f.UniqueTitles {
		// タイトルごとに最新の 1 件だけ残す
		from = fmt.Sprintf(`(
    SELECT DISTINCT ON (a.title) a.*
    FROM articles a
    %s
    ORDER BY a.title, a.seen_at DESC, a.id DESC
) a`, where)
		where = ""
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
%s
ORDER BY a.seen_at DESC, a.id DESC
LIMIT %s`, articleColumns, from, where, nextParam(args))
	args = append(args, limit)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, limit)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("Recent: Scan: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) TopSources(ctx context.Context, f repository.ArticleFilter, limit int) ([]entity.NamedCount, error) {
	where, args := repo.queryBuilder.BuildWhereClause(f, "a", "a.source_name <> ''")
	query := fmt.Sprintf(`
SELECT a.source_name, COUNT(*)
FROM articles a
%s
GROUP BY a.source_name
ORDER BY COUNT(*) DESC, a.source_name
LIMIT %s`, where, nextParam(args))
	args = append(args, limit)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("TopSources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]entity.NamedCount, 0, limit)
	for rows.Next() {
		var nc entity.NamedCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, fmt.Errorf("TopSources: Scan: %w", err)
		}
		result = append(result, nc)
	}
	return result, rows.Err()
}

// groupedQuery is shared by both group fields. The first verb is the key
// expression, the second the FROM clause, the third the WHERE clause.
const groupedQuery = `
WITH base AS (
    SELECT %s AS key, a.title, a.url, a.authors, a.tone_overall, a.seen_at
    FROM %s
    %s
),
groups AS (
    SELECT key, COUNT(*) AS cnt, COALESCE(AVG(tone_overall), 0) AS tone, MAX(seen_at) AS last_seen
    FROM base
    GROUP BY key
),
ranked AS (
    SELECT key, title, url, authors, tone_overall, seen_at,
           ROW_NUMBER() OVER (PARTITION BY key ORDER BY seen_at DESC) AS rn
    FROM base
)
SELECT g.key, g.cnt, g.tone, g.last_seen, r.title, r.url, r.authors, r.tone_overall, r.seen_at
FROM groups g
JOIN ranked r ON r.key = g.key AND r.rn <= %d
ORDER BY g.cnt DESC, g.key, r.rn`

func (repo *ArticleRepo) Grouped(ctx context.Context, field entity.GroupField, f repository.ArticleFilter) ([]entity.Group, error) {
	where, args := repo.queryBuilder.BuildWhereClause(f, "a")

	var query string
	switch field {
	case entity.GroupByCountry:
		query = fmt.Sprintf(groupedQuery, "btrim(a.source_country)", "articles a", where, repository.RecentPerGroup)
	case entity.GroupByAuthor:
		query = fmt.Sprintf(groupedQuery, "COALESCE(aa.author, '')",
			"articles a LEFT JOIN article_authors aa ON aa.article_id = a.id", where, repository.RecentPerGroup)
	default:
		return nil, fmt.Errorf("Grouped: unsupported field %q", field)
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Grouped: %w", err)
	}
	defer func() { _ = rows.Close() }()

	groups := make([]entity.Group, 0, 32)
	for rows.Next() {
		var (
			key, title, url, authors string
			cnt                      int64
			tone, articleTone        float64
			lastSeen, seenAt         time.Time
		)
		if err := rows.Scan(&key, &cnt, &tone, &lastSeen, &title, &url, &authors, &articleTone, &seenAt); err != nil {
			return nil, fmt.Errorf("Grouped: Scan: %w", err)
		}
		if field == entity.GroupByCountry {
			key = strings.TrimSpace(key)
		}
		if len(groups) == 0 || groups[len(groups)-1].Name != key {
			groups = append(groups, entity.Group{
				Name:          key,
				Count:         cnt,
				AvgTone:       tone,
				LastArticleAt: asUTC(lastSeen),
			})
		}
		a := entity.Article{Title: title, URL: url, Authors: splitList(authors), Tones: entity.Tones{Overall: articleTone}, SeenAt: asUTC(seenAt)}
		g := &groups[len(groups)-1]
		g.Recent = append(g.Recent, a.Summary("Unknown"))
	}
	return groups, rows.Err()
}

func (repo *ArticleRepo) SourceStatistics(ctx context.Context, f repository.ArticleFilter) ([]entity.SourceStatistics, error) {
	where, args := repo.queryBuilder.BuildWhereClause(f, "a")
	query := fmt.Sprintf(`
WITH dedup AS (
    SELECT DISTINCT ON (a.title) a.title, a.url, a.authors, btrim(a.source_country) AS source_country, a.tone_overall, a.seen_at
    FROM articles a
    %s
    ORDER BY a.title, a.seen_at DESC
),
groups AS (
    SELECT source_country, authors, COUNT(*) AS cnt, COALESCE(AVG(tone_overall), 0) AS tone, MAX(seen_at) AS last_seen
    FROM dedup
    GROUP BY source_country, authors
),
ranked AS (
    SELECT source_country, authors, title, url, tone_overall, seen_at,
           ROW_NUMBER() OVER (PARTITION BY source_country, authors ORDER BY seen_at DESC) AS rn
    FROM dedup
)
SELECT g.source_country, g.authors, g.cnt, g.tone, g.last_seen, r.title, r.url, r.tone_overall, r.seen_at
FROM groups g
JOIN ranked r ON r.source_country = g.source_country AND r.authors = g.authors AND r.rn <= %d
ORDER BY g.cnt DESC, g.source_country, g.authors, r.rn`, where, repository.RecentPerGroup)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SourceStatistics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]entity.SourceStatistics, 0, 32)
	var lastKey string
	for rows.Next() {
		var (
			country, authors, title, url string
			cnt                          int64
			tone, articleTone            float64
			lastSeen, seenAt             time.Time
		)
		if err := rows.Scan(&country, &authors, &cnt, &tone, &lastSeen, &title, &url, &articleTone, &seenAt); err != nil {
			return nil, fmt.Errorf("SourceStatistics: Scan: %w", err)
		}
		country = strings.TrimSpace(country)
		key := country + "\x00" + authors
		if len(result) == 0 || key != lastKey {
			result = append(result, entity.SourceStatistics{
				Authors:       splitList(authors),
				Country:       country,
				Count:         cnt,
				AvgTone:       tone,
				LastArticleAt: asUTC(lastSeen),
			})
			lastKey = key
		}
		s := &result[len(result)-1]
		a := entity.Article{Title: title, URL: url, Authors: s.Authors, Tones: entity.Tones{Overall: articleTone}, SeenAt: asUTC(seenAt)}
		s.Recent = append(s.Recent, a.Summary("Unknown"))
	}
	return result, rows.Err()
}

// InsertBatch inserts the batch in one transaction. Rows whose gdelt_id
// already exists are skipped.
func (repo *ArticleRepo) InsertBatch(ctx context.Context, articles []*entity.Article) (int, error) {
	const insertArticle = `
INSERT INTO articles (gdelt_id, title, url, source_name, source_country, authors, themes,
    tone_overall, tone_positive, tone_negative, tone_polarity, tone_activity, tone_emotionality,
    word_count, score, flagged, seen_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
ON CONFLICT (gdelt_id) DO NOTHING
RETURNING id`
	const insertAuthor = `
INSERT INTO article_authors (article_id, author)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`

	if len(articles) == 0 {
		return 0, nil
	}

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("InsertBatch: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for _, a := range articles {
		var id int64
		err := tx.QueryRowContext(ctx, insertArticle,
			a.GdeltID, a.Title, a.URL, a.SourceName, a.SourceCountry,
			strings.Join(a.Authors, listSeparator), strings.Join(a.Themes, listSeparator),
			a.Tones.Overall, a.Tones.Positive, a.Tones.Negative, a.Tones.Polarity,
			a.Tones.Activity, a.Tones.Emotionality, a.Tones.WordCount,
			a.Score, a.Flagged, a.SeenAt,
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("InsertBatch: %s: %w", a.GdeltID, err)
		}
		for _, author := range a.Authors {
			if _, err := tx.ExecContext(ctx, insertAuthor, id, author); err != nil {
				return 0, fmt.Errorf("InsertBatch: author: %w", err)
			}
		}
		a.ID = id
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("InsertBatch: Commit: %w", err)
	}
	return inserted, nil
}

// Ping reports whether the database answers.
func (repo *ArticleRepo) Ping(ctx context.Context) error {
	var one int
	if err := repo.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}

/* ───────── helpers ───────── */

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(s scanner) (*entity.Article, error) {
	var (
		a       entity.Article
		authors string
		themes  string
	)
	if err := s.Scan(&a.ID, &a.GdeltID, &a.Title, &a.URL, &a.SourceName, &a.SourceCountry,
		&authors, &themes, &a.Tones.Overall, &a.Tones.Positive, &a.Tones.Negative, &a.Tones.Polarity,
		&a.Tones.Activity, &a.Tones.Emotionality, &a.Tones.WordCount, &a.Score, &a.Flagged,
		&a.SeenAt, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.SourceCountry = strings.TrimSpace(a.SourceCountry)
	a.Authors = splitList(authors)
	a.Themes = splitList(themes)
	a.SeenAt = asUTC(a.SeenAt)
	return &a, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}

func asUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
