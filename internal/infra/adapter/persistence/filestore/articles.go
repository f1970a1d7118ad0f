package filestore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/repository"
)

var _ repository.ArticleRepository = (*Store)(nil)

func matches(a *entity.Article, f repository.ArticleFilter) bool {
	if f.From != nil && a.SeenAt.Before(*f.From) {
		return false
	}
	if f.To != nil && a.SeenAt.After(*f.To) {
		return false
	}
	if f.Country != "" && !strings.EqualFold(a.SourceCountry, f.Country) {
		return false
	}
	if f.Author != "" && !a.HasAuthor(f.Author) {
		return false
	}
	return true
}

// filtered returns the matching articles, newest first.
func (s *Store) filtered(ctx context.Context, f repository.ArticleFilter) []*entity.Article {
	return lo.Filter(s.snapshot(ctx), func(a *entity.Article, _ int) bool { return matches(a, f) })
}

// dedupeByTitle keeps the newest article of each title. Input must be sorted
// newest first.
func dedupeByTitle(articles []*entity.Article) []*entity.Article {
	return lo.UniqBy(articles, func(a *entity.Article) string { return a.Title })
}

func meanTone(articles []*entity.Article) float64 {
	if len(articles) == 0 {
		return 0
	}
	return lo.SumBy(articles, func(a *entity.Article) float64 { return a.Tones.Overall }) / float64(len(articles))
}

func (s *Store) Count(ctx context.Context, f repository.ArticleFilter) (int64, error) {
	return int64(len(s.filtered(ctx, f))), nil
}

func (s *Store) Summary(ctx context.Context, f repository.ArticleFilter) (repository.Summary, error) {
	unique := dedupeByTitle(s.filtered(ctx, f))
	return repository.Summary{Count: int64(len(unique)), AvgTone: meanTone(unique)}, nil
}

func (s *Store) CountryAggregates(ctx context.Context, f repository.ArticleFilter) ([]entity.CountryAggregate, error) {
	withCountry := lo.Filter(s.filtered(ctx, f), func(a *entity.Article, _ int) bool { return a.SourceCountry != "" })
	byCountry := lo.GroupBy(withCountry, func(a *entity.Article) string { return a.SourceCountry })

	result := make([]entity.CountryAggregate, 0, len(byCountry))
	for code, articles := range byCountry {
		result = append(result, entity.CountryAggregate{
			Code:    code,
			Count:   int64(len(articles)),
			AvgTone: meanTone(articles),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Code < result[j].Code
	})
	return result, nil
}

func (s *Store) ActiveDays(ctx context.Context) (int64, error) {
	days := lo.Uniq(lo.Map(s.snapshot(ctx), func(a *entity.Article, _ int) string {
		return a.SeenAt.UTC().Format("2006-01-02")
	}))
	return int64(len(days)), nil
}

func (s *Store) Timeline(ctx context.Context, f repository.ArticleFilter, interval entity.Interval) ([]entity.TimelinePoint, error) {
	buckets := lo.GroupBy(s.filtered(ctx, f), func(a *entity.Article) time.Time {
		return interval.Truncate(a.SeenAt)
	})

	result := make([]entity.TimelinePoint, 0, len(buckets))
	for bucket, articles := range buckets {
		result = append(result, entity.TimelinePoint{
			Date:    bucket,
			Count:   int64(len(articles)),
			AvgTone: meanTone(articles),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (s *Store) Recent(ctx context.Context, f repository.ArticleFilter, limit int) ([]*entity.Article, error) {
	articles := s.filtered(ctx, f)
	if f.UniqueTitles {
		articles = dedupeByTitle(articles)
	}
	if limit >= 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

func (s *Store) TopSources(ctx context.Context, f repository.ArticleFilter, limit int) ([]entity.NamedCount, error) {
	named := lo.Filter(s.filtered(ctx, f), func(a *entity.Article, _ int) bool { return a.SourceName != "" })
	counts := make(map[string]int)
	for _, a := range named {
		counts[a.SourceName]++
	}
	return topCounts(counts, limit), nil
}

func topCounts(counts map[string]int, limit int) []entity.NamedCount {
	result := make([]entity.NamedCount, 0, len(counts))
	for name, n := range counts {
		result = append(result, entity.NamedCount{Name: name, Count: int64(n)})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})
	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

type groupAcc struct {
	key      string
	articles []*entity.Article
}

// accumulate groups articles by the keys returned for each one. Input order
// is preserved inside every group.
func accumulate(articles []*entity.Article, keys func(a *entity.Article) []string) []*groupAcc {
	idx := make(map[string]*groupAcc)
	order := make([]*groupAcc, 0)
	for _, a := range articles {
		for _, k := range keys(a) {
			g, ok := idx[k]
			if !ok {
				g = &groupAcc{key: k}
				idx[k] = g
				order = append(order, g)
			}
			g.articles = append(g.articles, a)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		if len(order[i].articles) != len(order[j].articles) {
			return len(order[i].articles) > len(order[j].articles)
		}
		return order[i].key < order[j].key
	})
	return order
}

func recentSummaries(articles []*entity.Article) []entity.ArticleSummary {
	n := len(articles)
	if n > repository.RecentPerGroup {
		n = repository.RecentPerGroup
	}
	return lo.Map(articles[:n], func(a *entity.Article, _ int) entity.ArticleSummary {
		return a.Summary("Unknown")
	})
}

func (s *Store) Grouped(ctx context.Context, field entity.GroupField, f repository.ArticleFilter) ([]entity.Group, error) {
	var keys func(a *entity.Article) []string
	switch field {
	case entity.GroupByAuthor:
		keys = func(a *entity.Article) []string {
			if len(a.Authors) == 0 {
				return []string{""}
			}
			return lo.Uniq(a.Authors)
		}
	case entity.GroupByCountry:
		keys = func(a *entity.Article) []string { return []string{a.SourceCountry} }
	default:
		return nil, fmt.Errorf("Grouped: unsupported field %q", field)
	}

	accs := accumulate(s.filtered(ctx, f), keys)
	return lo.Map(accs, func(g *groupAcc, _ int) entity.Group {
		return entity.Group{
			Name:          g.key,
			Count:         int64(len(g.articles)),
			AvgTone:       meanTone(g.articles),
			LastArticleAt: g.articles[0].SeenAt,
			Recent:        recentSummaries(g.articles),
		}
	}), nil
}

func (s *Store) SourceStatistics(ctx context.Context, f repository.ArticleFilter) ([]entity.SourceStatistics, error) {
	unique := dedupeByTitle(s.filtered(ctx, f))
	accs := accumulate(unique, func(a *entity.Article) []string {
		return []string{a.SourceCountry + "\x00" + strings.Join(a.Authors, listSeparator)}
	})
	return lo.Map(accs, func(g *groupAcc, _ int) entity.SourceStatistics {
		first := g.articles[0]
		return entity.SourceStatistics{
			Authors:       first.Authors,
			Country:       first.SourceCountry,
			Count:         int64(len(g.articles)),
			AvgTone:       meanTone(g.articles),
			LastArticleAt: first.SeenAt,
			Recent:        recentSummaries(g.articles),
		}
	}), nil
}

const listSeparator = ";"

// InsertBatch appends the new articles and rewrites the data file.
func (s *Store) InsertBatch(ctx context.Context, articles []*entity.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	_ = s.snapshot(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.articles

	known := make(map[string]struct{}, len(current))
	for _, a := range current {
		known[a.GdeltID] = struct{}{}
	}

	merged := make([]*entity.Article, len(current), len(current)+len(articles))
	copy(merged, current)
	inserted := 0
	now := s.now().UTC()
	for _, a := range articles {
		if _, dup := known[a.GdeltID]; dup {
			continue
		}
		known[a.GdeltID] = struct{}{}
		stored := *a
		stored.ID = s.nextID
		stored.CreatedAt = now
		s.nextID++
		a.ID = stored.ID
		merged = append(merged, &stored)
		inserted++
	}
	if inserted == 0 {
		return 0, nil
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].SeenAt.After(merged[j].SeenAt) })

	docs := lo.Map(merged, func(a *entity.Article, _ int) Document { return FromArticle(a) })
	if err := writeJSON(s.cfg.ArticlesPath, docs); err != nil {
		return 0, fmt.Errorf("InsertBatch: %w", err)
	}
	s.articles = merged
	s.loadedAt = s.now()
	return inserted, nil
}
