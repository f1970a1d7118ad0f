// Package dto converts domain read models into the documents of pkg/api.
package dto

import (
	"time"

	"github.com/samber/lo"

	"mediawatch/internal/domain/entity"
	"mediawatch/pkg/api"
	"mediawatch/pkg/daterange"
)

// Timestamp formats t as RFC 3339 in UTC. The zero time becomes "".
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Day formats t as YYYY-MM-DD in UTC.
func Day(t time.Time) string {
	return t.UTC().Format(daterange.DateLayout)
}

// Bucket formats a timeline bucket: hourly buckets keep the time of day.
func Bucket(t time.Time, interval entity.Interval) string {
	if interval == entity.IntervalHour {
		return Timestamp(t)
	}
	return Day(t)
}

func Country(c entity.Country) api.Country {
	return api.Country{
		ID:          c.Code,
		Code:        c.Code,
		ISO2:        c.Code,
		Name:        c.Name,
		Continent:   c.Continent,
		Value:       c.Articles,
		AverageTone: c.AvgTone,
	}
}

func Countries(cs []entity.Country) []api.Country {
	return lo.Map(cs, func(c entity.Country, _ int) api.Country { return Country(c) })
}

func Continents(cs []entity.Continent) []api.Continent {
	return lo.Map(cs, func(c entity.Continent, _ int) api.Continent {
		return api.Continent{
			Name:        c.Name,
			Value:       c.Articles,
			AverageTone: c.AvgTone,
			Countries:   Countries(c.Countries),
		}
	})
}

func Timeline(points []entity.TimelinePoint, interval entity.Interval) []api.TimelinePoint {
	return lo.Map(points, func(p entity.TimelinePoint, _ int) api.TimelinePoint {
		return api.TimelinePoint{Date: Bucket(p.Date, interval), Count: p.Count, Tone: p.AvgTone}
	})
}

func ArticleRefs(as []entity.ArticleSummary) []api.ArticleRef {
	return lo.Map(as, func(a entity.ArticleSummary, _ int) api.ArticleRef {
		return api.ArticleRef{
			Title:  a.Title,
			URL:    a.URL,
			Date:   Timestamp(a.Date),
			Source: a.Source,
			Tone:   a.Tone,
		}
	})
}

func Article(a *entity.Article) api.Article {
	return api.Article{
		ID:            a.ID,
		GdeltID:       a.GdeltID,
		Title:         a.Title,
		URL:           a.URL,
		SourceName:    a.SourceName,
		SourceCountry: a.SourceCountry,
		Authors:       lo.Ternary(a.Authors == nil, []string{}, a.Authors),
		Themes:        lo.Ternary(a.Themes == nil, []string{}, a.Themes),
		Tone:          a.Tones.Overall,
		Score:         a.Score,
		Flagged:       a.Flagged,
		Date:          Timestamp(a.SeenAt),
	}
}

func Articles(as []*entity.Article) []api.Article {
	return lo.Map(as, func(a *entity.Article, _ int) api.Article { return Article(a) })
}
