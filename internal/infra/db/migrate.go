package db

import (
	"database/sql"
)

// MigrateUp creates the schema. Every statement is idempotent.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id                BIGSERIAL PRIMARY KEY,
    gdelt_id          TEXT NOT NULL UNIQUE,
    title             TEXT NOT NULL DEFAULT '',
    url               TEXT NOT NULL DEFAULT '',
    source_name       TEXT NOT NULL DEFAULT '',
    source_country    TEXT NOT NULL DEFAULT '' CHECK (source_country = '' OR char_length(source_country) = 2),
    authors           TEXT NOT NULL DEFAULT '',
    themes            TEXT NOT NULL DEFAULT '',
    tone_overall      DOUBLE PRECISION NOT NULL DEFAULT 0,
    tone_positive     DOUBLE PRECISION NOT NULL DEFAULT 0,
    tone_negative     DOUBLE PRECISION NOT NULL DEFAULT 0,
    tone_polarity     DOUBLE PRECISION NOT NULL DEFAULT 0,
    tone_activity     DOUBLE PRECISION NOT NULL DEFAULT 0,
    tone_emotionality DOUBLE PRECISION NOT NULL DEFAULT 0,
    word_count        INTEGER NOT NULL DEFAULT 0,
    score             DOUBLE PRECISION NOT NULL DEFAULT 0,
    flagged           BOOLEAN NOT NULL DEFAULT FALSE,
    seen_at           TIMESTAMPTZ NOT NULL,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	// 旧スキーマの CHAR(2) は空文字を空白 2 つで返すため TEXT に変換する
	if _, err := db.Exec(`
DO $$
BEGIN
    IF EXISTS (
        SELECT 1 FROM information_schema.columns
        WHERE table_name = 'articles' AND column_name = 'source_country' AND data_type = 'character'
    ) THEN
        ALTER TABLE articles ALTER COLUMN source_country TYPE TEXT USING btrim(source_country);
    END IF;
END $$`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS article_authors (
    article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    author     TEXT NOT NULL,
    PRIMARY KEY (article_id, author)
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS ingest_events (
    id              BIGSERIAL PRIMARY KEY,
    event_type      TEXT NOT NULL,
    is_success      BOOLEAN NOT NULL,
    articles_amount INTEGER NOT NULL DEFAULT 0,
    event_time      TIMESTAMPTZ NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// 期間フィルタ・タイムライン用
		`CREATE INDEX IF NOT EXISTS idx_articles_seen_at ON articles(seen_at DESC)`,
		// 国別集計用
		`CREATE INDEX IF NOT EXISTS idx_articles_country_seen_at ON articles(source_country, seen_at DESC)`,
		// タイトル重複排除 (DISTINCT ON) 用
		`CREATE INDEX IF NOT EXISTS idx_articles_title ON articles(title, seen_at DESC)`,
		// 著者フィルタ (lower(author) 比較) 用
		`CREATE INDEX IF NOT EXISTS idx_article_authors_lower ON article_authors(lower(author))`,
		`CREATE INDEX IF NOT EXISTS idx_ingest_events_latest ON ingest_events(event_type, event_time DESC) WHERE is_success`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown drops the schema in reverse order of creation.
// Use with caution: this deletes all stored articles and ingest history.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS ingest_events`,
		`DROP TABLE IF EXISTS article_authors`,
		`DROP TABLE IF EXISTS articles`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
