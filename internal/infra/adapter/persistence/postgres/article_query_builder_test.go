package postgres_test

import (
	"testing"
	"time"

	"mediawatch/internal/infra/adapter/persistence/postgres"
	"mediawatch/internal/repository"
)

/* ──────────────────────────── BuildWhereClause Tests ──────────────────────────── */

func TestArticleQueryBuilder_BuildWhereClause_NoConditions(t *testing.T) {
	builder := postgres.NewArticleQueryBuilder()
	clause, args := builder.BuildWhereClause(repository.ArticleFilter{}, "")

	if clause != "" {
		t.Errorf("clause should be empty, got %q", clause)
	}
	if len(args) != 0 {
		t.Errorf("args should be empty, got %v", args)
	}
}

func TestArticleQueryBuilder_BuildWhereClause_DateRange(t *testing.T) {
	builder := postgres.NewArticleQueryBuilder()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	clause, args := builder.BuildWhereClause(repository.ArticleFilter{From: &from, To: &to}, "a")

	expectedClause := "WHERE a.seen_at >= $1 AND a.seen_at <= $2"
	if clause != expectedClause {
		t.Errorf("clause = %q, want %q", clause, expectedClause)
	}
	if len(args) != 2 || args[0] != from || args[1] != to {
		t.Errorf("args = %v", args)
	}
}

func TestArticleQueryBuilder_BuildWhereClause_CountryUppercased(t *testing.T) {
	builder := postgres.NewArticleQueryBuilder()
	clause, args := builder.BuildWhereClause(repository.ArticleFilter{Country: "fr"}, "")

	if clause != "WHERE source_country = $1" {
		t.Errorf("clause = %q", clause)
	}
	if args[0] != "FR" {
		t.Errorf("args[0] = %v, want FR", args[0])
	}
}

func TestArticleQueryBuilder_BuildWhereClause_Author(t *testing.T) {
	builder := postgres.NewArticleQueryBuilder()
	clause, args := builder.BuildWhereClause(repository.ArticleFilter{Country: "DE", Author: "Jane Roe"}, "a")

	expectedClause := "WHERE a.source_country = $1 AND EXISTS (SELECT 1 FROM article_authors fa WHERE fa.article_id = a.id AND lower(fa.author) = lower($2))"
	if clause != expectedClause {
		t.Errorf("clause = %q, want %q", clause, expectedClause)
	}
	if len(args) != 2 || args[1] != "Jane Roe" {
		t.Errorf("args = %v", args)
	}
}

func TestArticleQueryBuilder_BuildWhereClause_UnknownAuthor(t *testing.T) {
	builder := postgres.NewArticleQueryBuilder()
	clause, args := builder.BuildWhereClause(repository.ArticleFilter{Author: "Unknown"}, "a")

	expectedClause := "WHERE NOT EXISTS (SELECT 1 FROM article_authors fa WHERE fa.article_id = a.id)"
	if clause != expectedClause {
		t.Errorf("clause = %q, want %q", clause, expectedClause)
	}
	if len(args) != 0 {
		t.Errorf("args should be empty, got %v", args)
	}
}

func TestArticleQueryBuilder_BuildWhereClause_Extra(t *testing.T) {
	builder := postgres.NewArticleQueryBuilder()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clause, _ := builder.BuildWhereClause(repository.ArticleFilter{From: &from}, "a", "a.source_country <> ''")

	expectedClause := "WHERE a.source_country <> '' AND a.seen_at >= $1"
	if clause != expectedClause {
		t.Errorf("clause = %q, want %q", clause, expectedClause)
	}
}
