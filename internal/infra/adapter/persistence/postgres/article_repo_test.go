package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"mediawatch/internal/domain/entity"
	pg "mediawatch/internal/infra/adapter/persistence/postgres"
	"mediawatch/internal/repository"
)

/* ─────────────────────────── ヘルパ ─────────────────────────── */

var articleCols = []string{
	"id", "gdelt_id", "title", "url", "source_name", "source_country",
	"authors", "themes", "tone_overall", "tone_positive", "tone_negative", "tone_polarity",
	"tone_activity", "tone_emotionality", "word_count", "score", "flagged", "seen_at", "created_at",
}

func artRow(rows *sqlmock.Rows, a *entity.Article) *sqlmock.Rows {
	return rows.AddRow(
		a.ID, a.GdeltID, a.Title, a.URL, a.SourceName, a.SourceCountry,
		strings.Join(a.Authors, ";"), strings.Join(a.Themes, ";"),
		a.Tones.Overall, a.Tones.Positive, a.Tones.Negative, a.Tones.Polarity,
		a.Tones.Activity, a.Tones.Emotionality, a.Tones.WordCount, a.Score, a.Flagged,
		a.SeenAt, a.CreatedAt,
	)
}

func newMock(t *testing.T) (repository.ArticleRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return pg.NewArticleRepo(db), mock
}

func day(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

/* ─────────────────────────── 1. Count / Summary ─────────────────────────── */

func TestArticleRepo_Count(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles a WHERE a.source_country = $1")).
		WithArgs("FR").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	got, err := repo.Count(context.Background(), repository.ArticleFilter{Country: "fr"})
	if err != nil {
		t.Fatalf("Count err=%v", err)
	}
	if got != 42 {
		t.Fatalf("Count = %d, want 42", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_Summary_DeduplicatesByTitle(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT ON (a.title) a.tone_overall")).
		WillReturnRows(sqlmock.NewRows([]string{"count", "avg"}).AddRow(int64(3), -1.5))

	got, err := repo.Summary(context.Background(), repository.ArticleFilter{})
	if err != nil {
		t.Fatalf("Summary err=%v", err)
	}
	if diff := cmp.Diff(repository.Summary{Count: 3, AvgTone: -1.5}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestArticleRepo_Count_Error(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("connection reset"))

	_, err := repo.Count(context.Background(), repository.ArticleFilter{})
	if err == nil || !strings.HasPrefix(err.Error(), "Count:") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

/* ─────────────────────────── 2. Aggregates ─────────────────────────── */

func TestArticleRepo_CountryAggregates(t *testing.T) {
	repo, mock := newMock(t)
	from := day(1)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.source_country <> '' AND a.seen_at >= $1")).
		WithArgs(from).
		WillReturnRows(sqlmock.NewRows([]string{"source_country", "count", "avg"}).
			AddRow("US", int64(10), -2.0).
			AddRow("FR", int64(4), 1.0))

	got, err := repo.CountryAggregates(context.Background(), repository.ArticleFilter{From: &from})
	if err != nil {
		t.Fatalf("CountryAggregates err=%v", err)
	}
	want := []entity.CountryAggregate{{Code: "US", Count: 10, AvgTone: -2}, {Code: "FR", Count: 4, AvgTone: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestArticleRepo_ActiveDays(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("COUNT(DISTINCT date_trunc('day'")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	got, err := repo.ActiveDays(context.Background())
	if err != nil || got != 12 {
		t.Fatalf("ActiveDays = %d, %v", got, err)
	}
}

func TestArticleRepo_Timeline_IntervalIsLastParam(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("date_trunc($2, a.seen_at AT TIME ZONE 'UTC')")).
		WithArgs("DE", "week").
		WillReturnRows(sqlmock.NewRows([]string{"bucket", "count", "avg"}).
			AddRow(day(4), int64(2), 0.5).
			AddRow(day(11), int64(5), -1.0))

	got, err := repo.Timeline(context.Background(), repository.ArticleFilter{Country: "DE"}, entity.IntervalWeek)
	if err != nil {
		t.Fatalf("Timeline err=%v", err)
	}
	want := []entity.TimelinePoint{{Date: day(4), Count: 2, AvgTone: 0.5}, {Date: day(11), Count: 5, AvgTone: -1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestArticleRepo_Recent(t *testing.T) {
	repo, mock := newMock(t)

	want := &entity.Article{
		ID: 1, GdeltID: "20240301-1", Title: "Headline", URL: "https://example.com/a",
		SourceName: "example.com", SourceCountry: "GB",
		Authors: []string{"Jane Roe", "John Doe"}, Themes: []string{"TAX_FNCACT", "PROTEST"},
		Tones: entity.Tones{Overall: -3, Positive: 1, Negative: 4, Polarity: 5, Activity: 20, Emotionality: 0.1, WordCount: 400},
		Score: 7.5, Flagged: true, SeenAt: day(2), CreatedAt: day(2),
	}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY a.seen_at DESC, a.id DESC")).
		WithArgs(10).
		WillReturnRows(artRow(sqlmock.NewRows(articleCols), want))

	got, err := repo.Recent(context.Background(), repository.ArticleFilter{}, 10)
	if err != nil {
		t.Fatalf("Recent err=%v", err)
	}
	if diff := cmp.Diff([]*entity.Article{want}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestArticleRepo_Recent_UniqueTitles(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`SELECT DISTINCT ON \(a\.title\) a\.\*\s+FROM articles a\s+WHERE a\.source_country = \$1\s+ORDER BY a\.title, a\.seen_at DESC, a\.id DESC\s+\) a\s+ORDER BY a\.seen_at DESC, a\.id DESC\s+LIMIT \$2`).
		WithArgs("FR", 10).
		WillReturnRows(sqlmock.NewRows(articleCols))

	got, err := repo.Recent(context.Background(), repository.ArticleFilter{Country: "FR", UniqueTitles: true}, 10)
	if err != nil || len(got) != 0 {
		t.Fatalf("Recent = %v, %v", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_TopSources(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY a.source_name")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"source_name", "count"}).AddRow("example.com", int64(9)))

	got, err := repo.TopSources(context.Background(), repository.ArticleFilter{}, 3)
	if err != nil {
		t.Fatalf("TopSources err=%v", err)
	}
	if diff := cmp.Diff([]entity.NamedCount{{Name: "example.com", Count: 9}}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

/* ─────────────────────────── 3. Grouped ─────────────────────────── */

func TestArticleRepo_Grouped_AssemblesGroups(t *testing.T) {
	repo, mock := newMock(t)

	cols := []string{"key", "cnt", "tone", "last_seen", "title", "url", "authors", "tone_overall", "seen_at"}
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN article_authors aa ON aa.article_id = a.id")).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("Jane Roe", int64(2), -1.0, day(5), "B", "https://x/b", "Jane Roe", -2.0, day(5)).
			AddRow("Jane Roe", int64(2), -1.0, day(5), "A", "", "Jane Roe", 0.0, day(3)).
			AddRow("", int64(1), 2.0, day(4), "", "https://x/c", "", 2.0, day(4)))

	got, err := repo.Grouped(context.Background(), entity.GroupByAuthor, repository.ArticleFilter{})
	if err != nil {
		t.Fatalf("Grouped err=%v", err)
	}
	want := []entity.Group{
		{
			Name: "Jane Roe", Count: 2, AvgTone: -1, LastArticleAt: day(5),
			Recent: []entity.ArticleSummary{
				{Title: "B", URL: "https://x/b", Date: day(5), Source: "Jane Roe", Tone: -2},
				{Title: "A", URL: "#", Date: day(3), Source: "Jane Roe", Tone: 0},
			},
		},
		{
			Name: "", Count: 1, AvgTone: 2, LastArticleAt: day(4),
			Recent: []entity.ArticleSummary{{Title: "No Title", URL: "https://x/c", Date: day(4), Source: "Unknown", Tone: 2}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestArticleRepo_Grouped_ByCountryUsesSourceCountry(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT btrim(a.source_country) AS key")).
		WillReturnRows(sqlmock.NewRows([]string{"key", "cnt", "tone", "last_seen", "title", "url", "authors", "tone_overall", "seen_at"}))

	got, err := repo.Grouped(context.Background(), entity.GroupByCountry, repository.ArticleFilter{})
	if err != nil || len(got) != 0 {
		t.Fatalf("Grouped = %v, %v", got, err)
	}
}

// 空白埋めされた国コードは未設定として扱う
func TestArticleRepo_BlankPaddedCountry(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT btrim(a.source_country) AS key")).
		WillReturnRows(sqlmock.NewRows([]string{"key", "cnt", "tone", "last_seen", "title", "url", "authors", "tone_overall", "seen_at"}).
			AddRow("  ", int64(1), 0.5, day(1), "T", "https://x/t", "", 0.5, day(1)))
	groups, err := repo.Grouped(context.Background(), entity.GroupByCountry, repository.ArticleFilter{})
	if err != nil {
		t.Fatalf("Grouped err=%v", err)
	}
	if len(groups) != 1 || groups[0].Name != "" {
		t.Fatalf("groups = %+v, want one group with empty name", groups)
	}

	cols := []string{"source_country", "authors", "cnt", "tone", "last_seen", "title", "url", "tone_overall", "seen_at"}
	mock.ExpectQuery(regexp.QuoteMeta("btrim(a.source_country) AS source_country")).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("  ", "", int64(1), 0.0, day(1), "U", "https://x/u", 0.0, day(1)))
	stats, err := repo.SourceStatistics(context.Background(), repository.ArticleFilter{})
	if err != nil {
		t.Fatalf("SourceStatistics err=%v", err)
	}
	if len(stats) != 1 || stats[0].Country != "" {
		t.Fatalf("stats = %+v, want empty country", stats)
	}

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY a.seen_at DESC, a.id DESC")).
		WithArgs(1).
		WillReturnRows(artRow(sqlmock.NewRows(articleCols), &entity.Article{ID: 2, GdeltID: "g-2", SourceCountry: "  ", SeenAt: day(1)}))
	recent, err := repo.Recent(context.Background(), repository.ArticleFilter{}, 1)
	if err != nil {
		t.Fatalf("Recent err=%v", err)
	}
	if len(recent) != 1 || recent[0].SourceCountry != "" {
		t.Fatalf("recent = %+v, want empty country", recent)
	}
}

func TestArticleRepo_Grouped_UnsupportedField(t *testing.T) {
	repo, _ := newMock(t)
	if _, err := repo.Grouped(context.Background(), entity.GroupField("domain"), repository.ArticleFilter{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestArticleRepo_SourceStatistics(t *testing.T) {
	repo, mock := newMock(t)

	cols := []string{"source_country", "authors", "cnt", "tone", "last_seen", "title", "url", "tone_overall", "seen_at"}
	mock.ExpectQuery(regexp.QuoteMeta("PARTITION BY source_country, authors")).
		WithArgs("jane roe").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("FR", "Jane Roe;John Doe", int64(1), 1.0, day(2), "T", "https://x/t", 1.0, day(2)).
			AddRow("", "", int64(1), 0.0, day(1), "U", "https://x/u", 0.0, day(1)))

	got, err := repo.SourceStatistics(context.Background(), repository.ArticleFilter{Author: "jane roe"})
	if err != nil {
		t.Fatalf("SourceStatistics err=%v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Source() != "Jane Roe, John Doe" || got[0].Country != "FR" {
		t.Errorf("first group = %+v", got[0])
	}
	if got[1].Source() != "Unknown" || got[1].Recent[0].Source != "Unknown" {
		t.Errorf("second group = %+v", got[1])
	}
}

/* ─────────────────────────── 4. InsertBatch ─────────────────────────── */

func TestArticleRepo_InsertBatch_SkipsDuplicates(t *testing.T) {
	repo, mock := newMock(t)

	fresh := &entity.Article{GdeltID: "g-1", Title: "t1", Authors: []string{"Jane Roe"}, SeenAt: day(1)}
	dup := &entity.Article{GdeltID: "g-2", Title: "t2", SeenAt: day(1)}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO articles")).
		WithArgs("g-1", "t1", "", "", "", "Jane Roe", "",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), false, day(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO article_authors")).
		WithArgs(int64(7), "Jane Roe").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO articles")).
		WillReturnRows(sqlmock.NewRows([]string{"id"})) // ON CONFLICT DO NOTHING
	mock.ExpectCommit()

	n, err := repo.InsertBatch(context.Background(), []*entity.Article{fresh, dup})
	if err != nil {
		t.Fatalf("InsertBatch err=%v", err)
	}
	if n != 1 {
		t.Fatalf("inserted = %d, want 1", n)
	}
	if fresh.ID != 7 {
		t.Errorf("fresh.ID = %d, want 7", fresh.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_InsertBatch_RollsBackOnError(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO articles")).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := repo.InsertBatch(context.Background(), []*entity.Article{{GdeltID: "g-1", SeenAt: day(1)}})
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_InsertBatch_Empty(t *testing.T) {
	repo, mock := newMock(t)
	n, err := repo.InsertBatch(context.Background(), nil)
	if err != nil || n != 0 {
		t.Fatalf("InsertBatch = %d, %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 5. Ingest events ─────────────────────────── */

func TestIngestEventRepo_LatestSuccess(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()
	repo := pg.NewIngestEventRepo(db)

	slot := time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM ingest_events")).
		WithArgs(entity.EventTypeSaveDocs).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_type", "is_success", "articles_amount", "event_time"}).
			AddRow(int64(3), entity.EventTypeSaveDocs, true, 12, slot))

	got, err := repo.LatestSuccess(context.Background(), entity.EventTypeSaveDocs)
	if err != nil {
		t.Fatalf("LatestSuccess err=%v", err)
	}
	want := &entity.IngestEvent{ID: 3, EventType: entity.EventTypeSaveDocs, Success: true, ArticlesAmount: 12, EventTime: slot}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestIngestEventRepo_LatestSuccess_None(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()
	repo := pg.NewIngestEventRepo(db)

	mock.ExpectQuery("FROM ingest_events").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_type", "is_success", "articles_amount", "event_time"}))

	got, err := repo.LatestSuccess(context.Background(), entity.EventTypeSaveDocs)
	if err != nil || got != nil {
		t.Fatalf("LatestSuccess = %v, %v", got, err)
	}
}

func TestIngestEventRepo_Record(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()
	repo := pg.NewIngestEventRepo(db)

	slot := time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO ingest_events")).
		WithArgs(entity.EventTypeSaveDocs, true, 4, slot).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	e := &entity.IngestEvent{EventType: entity.EventTypeSaveDocs, Success: true, ArticlesAmount: 4, EventTime: slot}
	if err := repo.Record(context.Background(), e); err != nil {
		t.Fatalf("Record err=%v", err)
	}
	if e.ID != 9 {
		t.Errorf("ID = %d, want 9", e.ID)
	}
}
