package filestore

import (
	"context"
	"fmt"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/repository"
)

var _ repository.IngestEventRepository = (*Store)(nil)

// Record appends e to the events file.
func (s *Store) Record(_ context.Context, e *entity.IngestEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []eventDocument
	if err := readJSON(s.cfg.EventsPath, &events); err != nil {
		return fmt.Errorf("Record: %w", err)
	}
	events = append(events, eventDocument{
		EventType:      e.EventType,
		IsSuccess:      e.Success,
		ArticlesAmount: e.ArticlesAmount,
		EventTime:      e.EventTime.UTC(),
	})
	if err := writeJSON(s.cfg.EventsPath, events); err != nil {
		return fmt.Errorf("Record: %w", err)
	}
	e.ID = int64(len(events))
	return nil
}

func (s *Store) LatestSuccess(_ context.Context, eventType string) (*entity.IngestEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []eventDocument
	if err := readJSON(s.cfg.EventsPath, &events); err != nil {
		return nil, fmt.Errorf("LatestSuccess: %w", err)
	}

	var latest *entity.IngestEvent
	for i, ev := range events {
		if ev.EventType != eventType || !ev.IsSuccess {
			continue
		}
		if latest == nil || ev.EventTime.After(latest.EventTime) {
			latest = &entity.IngestEvent{
				ID:             int64(i + 1),
				EventType:      ev.EventType,
				Success:        ev.IsSuccess,
				ArticlesAmount: ev.ArticlesAmount,
				EventTime:      ev.EventTime.UTC(),
			}
		}
	}
	return latest, nil
}
