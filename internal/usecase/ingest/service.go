package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/observability/metrics"
	"mediawatch/internal/repository"
)

// Record is one parsed GKG row.
type Record struct {
	GdeltID    string
	Date       time.Time
	SourceName string
	URL        string
	Themes     []string
	Tones      entity.Tones
	Title      string
	Authors    []string
}

// SlotSource reads the GKG exports.
type SlotSource interface {
	// LatestSlot returns the time of the most recent published export.
	LatestSlot(ctx context.Context) (time.Time, error)
	// FetchSlot returns the rows of the export published at slot. A missing
	// export yields no rows and no error.
	FetchSlot(ctx context.Context, slot time.Time) ([]Record, error)
}

// CountryResolver maps a publishing domain to an ISO alpha-2 code, or "".
type CountryResolver interface {
	Resolve(domain string) string
}

// Config tunes a run.
type Config struct {
	MaxSlots    int
	Concurrency int
	// RequireAttribution drops articles without authors or without country.
	RequireAttribution bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{MaxSlots: 8, Concurrency: 4, RequireAttribution: true}
}

type Service struct {
	Source    SlotSource
	Articles  repository.ArticleRepository
	Events    repository.IngestEventRepository
	Topics    TopicSource
	Countries CountryResolver
	Config    Config
	Logger    *slog.Logger
}

// SlotStats is the outcome of one slot.
type SlotStats struct {
	Slot     time.Time
	Rows     int
	Matched  int
	Skipped  int
	Flagged  int
	Inserted int
}

// RunStats summarises a run. Slots lists the slots stored successfully.
type RunStats struct {
	Latest time.Time
	Slots  []SlotStats
}

// Inserted returns the number of articles stored over all slots.
func (r RunStats) Inserted() int {
	return lo.SumBy(r.Slots, func(s SlotStats) int { return s.Inserted })
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// PlanSlots lists the slots after last up to latest, oldest first, keeping at
// most limit of them. Without a previous run only latest is planned.
func PlanSlots(latest time.Time, last *time.Time, limit int) []time.Time {
	latest = latest.UTC().Truncate(SlotInterval)
	if last == nil {
		return []time.Time{latest}
	}
	limit = max(limit, 1)
	slots := make([]time.Time, 0, limit)
	for t := last.UTC().Truncate(SlotInterval).Add(SlotInterval); !t.After(latest) && len(slots) < limit; t = t.Add(SlotInterval) {
		slots = append(slots, t)
	}
	return slots
}

type fetched struct {
	records []Record
	err     error
}

// Run ingests the slots published since the last successful run. Slots are
// downloaded concurrently and stored in order; the first failing slot is
// recorded as a failed event and ends the run so the next run resumes there.
func (s *Service) Run(ctx context.Context) (RunStats, error) {
	log := s.logger()

	latest, err := s.Source.LatestSlot(ctx)
	if err != nil {
		return RunStats{}, fmt.Errorf("latest slot: %w", err)
	}
	prev, err := s.Events.LatestSuccess(ctx, entity.EventTypeSaveDocs)
	if err != nil {
		return RunStats{}, fmt.Errorf("latest event: %w", err)
	}
	var last *time.Time
	if prev != nil {
		last = &prev.EventTime
	}

	stats := RunStats{Latest: latest}
	slots := PlanSlots(latest, last, s.Config.MaxSlots)
	if len(slots) == 0 {
		log.Info("ingest up to date", slog.Time("latest_slot", latest))
		return stats, nil
	}

	results := s.fetchAll(ctx, slots)
	topic := s.Topics.Topic()

	for i, slot := range slots {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if results[i].err != nil {
			s.recordFailure(ctx, slot)
			return stats, fmt.Errorf("fetch slot %s: %w", slot.Format(time.RFC3339), results[i].err)
		}
		st, err := s.storeSlot(ctx, topic, slot, results[i].records)
		if err != nil {
			s.recordFailure(ctx, slot)
			return stats, fmt.Errorf("store slot %s: %w", slot.Format(time.RFC3339), err)
		}
		stats.Slots = append(stats.Slots, st)
		log.Info("slot ingested",
			slog.Time("slot", slot),
			slog.Int("rows", st.Rows),
			slog.Int("matched", st.Matched),
			slog.Int("flagged", st.Flagged),
			slog.Int("inserted", st.Inserted))
	}
	return stats, nil
}

func (s *Service) fetchAll(ctx context.Context, slots []time.Time) []fetched {
	results := make([]fetched, len(slots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Config.Concurrency, 1))
	for i, slot := range slots {
		g.Go(func() error {
			records, err := s.Source.FetchSlot(gctx, slot)
			results[i] = fetched{records: records, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Select turns matching records into scored articles.
func (s *Service) Select(topic *Topic, records []Record) (articles []*entity.Article, skipped int) {
	for _, rec := range records {
		if !topic.MatchesTitle(rec.Title) {
			continue
		}
		country := ""
		if s.Countries != nil {
			country = s.Countries.Resolve(rec.SourceName)
		}
		if s.Config.RequireAttribution && (len(rec.Authors) == 0 || country == "") {
			skipped++
			continue
		}
		a := &entity.Article{
			GdeltID:       rec.GdeltID,
			Title:         rec.Title,
			URL:           rec.URL,
			SourceName:    rec.SourceName,
			SourceCountry: country,
			Authors:       rec.Authors,
			Themes:        rec.Themes,
			Tones:         rec.Tones,
			SeenAt:        rec.Date.UTC(),
		}
		c := topic.Classify(a)
		a.Score, a.Flagged = c.Score, c.Flagged
		articles = append(articles, a)
	}
	return articles, skipped
}

func (s *Service) storeSlot(ctx context.Context, topic *Topic, slot time.Time, records []Record) (SlotStats, error) {
	articles, skipped := s.Select(topic, records)
	st := SlotStats{
		Slot:    slot,
		Rows:    len(records),
		Matched: len(articles) + skipped,
		Skipped: skipped,
		Flagged: lo.CountBy(articles, func(a *entity.Article) bool { return a.Flagged }),
	}

	inserted, err := s.Articles.InsertBatch(ctx, articles)
	if err != nil {
		return st, err
	}
	st.Inserted = inserted

	if err := s.Events.Record(ctx, &entity.IngestEvent{
		EventType:      entity.EventTypeSaveDocs,
		Success:        true,
		ArticlesAmount: inserted,
		EventTime:      slot,
	}); err != nil {
		return st, fmt.Errorf("record event: %w", err)
	}

	metrics.RecordIngested(metrics.OutcomeMatched, st.Matched)
	metrics.RecordIngested(metrics.OutcomeSkipped, skipped)
	metrics.RecordIngested(metrics.OutcomeFlagged, st.Flagged)
	metrics.RecordIngested(metrics.OutcomeInserted, inserted)
	metrics.RecordIngested(metrics.OutcomeDuplicate, len(articles)-inserted)
	return st, nil
}

func (s *Service) recordFailure(ctx context.Context, slot time.Time) {
	err := s.Events.Record(ctx, &entity.IngestEvent{
		EventType: entity.EventTypeSaveDocs,
		Success:   false,
		EventTime: slot,
	})
	if err != nil {
		s.logger().Error("record failed event", slog.Time("slot", slot), slog.Any("error", err))
	}
}
