package article

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/domain/geo"
	"mediawatch/internal/repository"
	"mediawatch/pkg/daterange"
)

// Service serves article listings.
type Service struct {
	Repo repository.ArticleRepository
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func lastDays(days int, now time.Time) (repository.ArticleFilter, error) {
	if days < 0 {
		return repository.ArticleFilter{}, &entity.ValidationError{Field: "days", Message: "days must be a non-negative integer"}
	}
	r := daterange.LastDays(days, now)
	return repository.ArticleFilter{From: r.Start, To: r.End}, nil
}

// Recent returns the articles of the last days, newest first, capped at
// MaxRecentArticles.
func (s *Service) Recent(ctx context.Context, days int) ([]*entity.Article, error) {
	f, err := lastDays(days, s.now())
	if err != nil {
		return nil, err
	}
	articles, err := s.Repo.Recent(ctx, f, MaxRecentArticles)
	if err != nil {
		return nil, fmt.Errorf("recent articles: %w", err)
	}
	return articles, nil
}

// Historical buckets the articles of the last days by interval and lists
// the busiest sources and countries.
func (s *Service) Historical(ctx context.Context, days int, interval entity.Interval) (*entity.Historical, error) {
	f, err := lastDays(days, s.now())
	if err != nil {
		return nil, err
	}

	timeline, err := s.Repo.Timeline(ctx, f, interval)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	sources, err := s.Repo.TopSources(ctx, f, HistoryTopN)
	if err != nil {
		return nil, fmt.Errorf("top sources: %w", err)
	}
	aggs, err := s.Repo.CountryAggregates(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("country aggregates: %w", err)
	}

	countries := lo.Map(aggs[:min(len(aggs), HistoryTopN)], func(a entity.CountryAggregate, _ int) entity.NamedCount {
		name := geo.Name(a.Code)
		if name == "" {
			name = a.Code
		}
		return entity.NamedCount{Name: name, Count: a.Count}
	})

	return &entity.Historical{Timeline: timeline, TopSources: sources, TopCountries: countries}, nil
}
