package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/repository"
)

type IngestEventRepo struct {
	db DBTX
}

func NewIngestEventRepo(db DBTX) repository.IngestEventRepository {
	return &IngestEventRepo{db: db}
}

func (repo *IngestEventRepo) Record(ctx context.Context, e *entity.IngestEvent) error {
	const query = `
INSERT INTO ingest_events (event_type, is_success, articles_amount, event_time)
VALUES ($1, $2, $3, $4)
RETURNING id`
	if err := repo.db.QueryRowContext(ctx, query,
		e.EventType, e.Success, e.ArticlesAmount, e.EventTime).Scan(&e.ID); err != nil {
		return fmt.Errorf("Record: %w", err)
	}
	return nil
}

func (repo *IngestEventRepo) LatestSuccess(ctx context.Context, eventType string) (*entity.IngestEvent, error) {
	const query = `
SELECT id, event_type, is_success, articles_amount, event_time
FROM ingest_events
WHERE event_type = $1 AND is_success
ORDER BY event_time DESC
LIMIT 1`
	var e entity.IngestEvent
	err := repo.db.QueryRowContext(ctx, query, eventType).
		Scan(&e.ID, &e.EventType, &e.Success, &e.ArticlesAmount, &e.EventTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LatestSuccess: %w", err)
	}
	e.EventTime = e.EventTime.UTC()
	return &e, nil
}
