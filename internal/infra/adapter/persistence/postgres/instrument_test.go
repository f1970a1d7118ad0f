package postgres_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"

	pg "mediawatch/internal/infra/adapter/persistence/postgres"
	"mediawatch/internal/observability/metrics"
	"mediawatch/internal/repository"
)

/* ─────────────────────────── クエリ計測 ─────────────────────────── */

func TestInstrument_RecordsQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles a")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	before := testutil.CollectAndCount(metrics.DBQueryDuration)
	repo := pg.NewArticleRepo(pg.Instrument(db))
	if _, err := repo.Count(context.Background(), repository.ArticleFilter{}); err != nil {
		t.Fatalf("Count: %v", err)
	}
	if got := testutil.CollectAndCount(metrics.DBQueryDuration); got < max(before, 1) {
		t.Errorf("expected a select series, got %d", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
