package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/domain/geo"
	"mediawatch/internal/repository"
	"mediawatch/pkg/daterange"
)

// Service computes aggregate statistics over the article repository.
type Service struct {
	Repo repository.ArticleRepository
}

func toFilter(r daterange.Range) repository.ArticleFilter {
	return repository.ArticleFilter{From: r.Start, To: r.End}
}

func toCountry(a entity.CountryAggregate) entity.Country {
	c := entity.Country{Code: a.Code, Articles: a.Count, AvgTone: a.AvgTone}
	if ref, ok := geo.Lookup(a.Code); ok {
		c.Name = ref.Name
		c.Continent = ref.Continent
	}
	return c
}

// knownCountries maps aggregates to countries and drops codes that are not
// in the reference table.
func knownCountries(aggs []entity.CountryAggregate) []entity.Country {
	return lo.Map(
		lo.Filter(aggs, func(a entity.CountryAggregate, _ int) bool { return geo.Name(a.Code) != "" }),
		func(a entity.CountryAggregate, _ int) entity.Country { return toCountry(a) },
	)
}

func toContinents(countries []entity.Country) []entity.Continent {
	members := lo.Map(countries, func(c entity.Country, _ int) geo.Member {
		return geo.Member{Code: c.Code, Articles: c.Articles, AvgTone: c.AvgTone}
	})
	byCode := lo.KeyBy(countries, func(c entity.Country) string { return c.Code })

	return lo.Map(geo.Aggregate(members), func(ct geo.ContinentTotal, _ int) entity.Continent {
		return entity.Continent{
			Name:     ct.Name,
			Articles: ct.Articles,
			AvgTone:  ct.AvgTone,
			Countries: lo.Map(ct.Members, func(m geo.Member, _ int) entity.Country {
				return byCode[m.Code]
			}),
		}
	})
}

// GlobalStats summarises the whole article set.
func (s *Service) GlobalStats(ctx context.Context) (*entity.GlobalStats, error) {
	total, err := s.Repo.Count(ctx, repository.ArticleFilter{})
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	aggs, err := s.Repo.CountryAggregates(ctx, repository.ArticleFilter{})
	if err != nil {
		return nil, fmt.Errorf("country aggregates: %w", err)
	}

	countries := knownCountries(aggs)
	stats := &entity.GlobalStats{
		TotalArticles: total,
		Countries:     countries,
		TopCountries:  countries[:min(len(countries), globalTopCountries)],
		Continents:    toContinents(countries),
	}
	if len(countries) > 0 {
		stats.AveragePerCountry = float64(total) / float64(len(countries))
	}
	return stats, nil
}

// TopCountries returns the countries with the most articles in r. A zero
// limit means DefaultTopLimit. Codes missing from the reference table are
// kept and named after the code.
func (s *Service) TopCountries(ctx context.Context, limit int, r daterange.Range) ([]entity.Country, error) {
	if limit == 0 {
		limit = DefaultTopLimit
	}
	if limit < 1 || limit > MaxTopLimit {
		return nil, &entity.ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("limit must be between 1 and %d", MaxTopLimit),
		}
	}

	aggs, err := s.Repo.CountryAggregates(ctx, toFilter(r))
	if err != nil {
		return nil, fmt.Errorf("country aggregates: %w", err)
	}
	countries := lo.Map(aggs, func(a entity.CountryAggregate, _ int) entity.Country {
		c := toCountry(a)
		if c.Name == "" {
			c.Name = c.Code
		}
		return c
	})
	return countries[:min(len(countries), limit)], nil
}

func normalizeCode(code string) (geo.Country, error) {
	ref, ok := geo.Lookup(strings.TrimSpace(code))
	if !ok {
		return geo.Country{}, fmt.Errorf("%q: %w", code, ErrUnknownCountry)
	}
	return ref, nil
}

// CountryDetails returns the totals of one country over all time. A known
// country without articles yields zeros.
func (s *Service) CountryDetails(ctx context.Context, code string) (*entity.Country, error) {
	ref, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	aggs, err := s.Repo.CountryAggregates(ctx, repository.ArticleFilter{Country: ref.Code})
	if err != nil {
		return nil, fmt.Errorf("country aggregates: %w", err)
	}

	c := &entity.Country{Code: ref.Code, Name: ref.Name, Continent: ref.Continent}
	if a, ok := lo.Find(aggs, func(a entity.CountryAggregate) bool { return a.Code == ref.Code }); ok {
		c.Articles = a.Count
		c.AvgTone = a.AvgTone
	}
	return c, nil
}

// Continents aggregates the known countries of r by continent.
func (s *Service) Continents(ctx context.Context, r daterange.Range) ([]entity.Continent, error) {
	aggs, err := s.Repo.CountryAggregates(ctx, toFilter(r))
	if err != nil {
		return nil, fmt.Errorf("country aggregates: %w", err)
	}
	return toContinents(knownCountries(aggs)), nil
}

// CountryTimeStats returns the daily timeline of one country and its most
// recent articles. The count, tone and article list are computed on articles
// de-duplicated by title, the timeline on all of them.
func (s *Service) CountryTimeStats(ctx context.Context, code string, r daterange.Range) (*entity.CountryTimeStats, error) {
	ref, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	f := toFilter(r)
	f.Country = ref.Code

	timeline, err := s.Repo.Timeline(ctx, f, entity.IntervalDay)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	summary, err := s.Repo.Summary(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	unique := f
	unique.UniqueTitles = true
	recent, err := s.Repo.Recent(ctx, unique, timeStatsArticles)
	if err != nil {
		return nil, fmt.Errorf("recent articles: %w", err)
	}

	return &entity.CountryTimeStats{
		Code:         ref.Code,
		Name:         ref.Name,
		ArticleCount: summary.Count,
		AvgTone:      summary.AvgTone,
		Timeline:     timeline,
		Articles: lo.Map(recent, func(a *entity.Article, _ int) entity.ArticleSummary {
			return a.Summary(unknownSource)
		}),
	}, nil
}

// Comparison holds the two timeframes of ComparePeriods.
type Comparison struct {
	First  entity.Timeframe
	Second entity.Timeframe
}

func requireBounds(field string, r daterange.Range) error {
	if r.Start == nil || r.End == nil {
		return &entity.ValidationError{Field: field, Message: field + " requires startDate and endDate"}
	}
	if r.Start.After(*r.End) {
		return fmt.Errorf("%s: %w", field, daterange.ErrStartAfterEnd)
	}
	return nil
}

// ComparePeriods returns the daily article counts of two closed ranges.
func (s *Service) ComparePeriods(ctx context.Context, first, second daterange.Range) (*Comparison, error) {
	if err := requireBounds("timeframe1", first); err != nil {
		return nil, err
	}
	if err := requireBounds("timeframe2", second); err != nil {
		return nil, err
	}

	build := func(r daterange.Range) (entity.Timeframe, error) {
		daily, err := s.Repo.Timeline(ctx, toFilter(r), entity.IntervalDay)
		if err != nil {
			return entity.Timeframe{}, fmt.Errorf("timeline: %w", err)
		}
		return entity.Timeframe{
			Start:        *r.Start,
			End:          *r.End,
			ArticleCount: lo.SumBy(daily, func(p entity.TimelinePoint) int64 { return p.Count }),
			Daily:        daily,
		}, nil
	}

	tf1, err := build(first)
	if err != nil {
		return nil, err
	}
	tf2, err := build(second)
	if err != nil {
		return nil, err
	}
	return &Comparison{First: tf1, Second: tf2}, nil
}

// DailyAverages ranks countries by articles per active day. The
// denominator is the number of distinct UTC days that have any article, so
// all countries share it. Unknown codes and zero averages are dropped.
func (s *Service) DailyAverages(ctx context.Context) (*entity.DailyAverages, error) {
	aggs, err := s.Repo.CountryAggregates(ctx, repository.ArticleFilter{})
	if err != nil {
		return nil, fmt.Errorf("country aggregates: %w", err)
	}
	days, err := s.Repo.ActiveDays(ctx)
	if err != nil {
		return nil, fmt.Errorf("active days: %w", err)
	}

	result := &entity.DailyAverages{Highest: []entity.DailyAverage{}, Lowest: []entity.DailyAverage{}}
	if days == 0 {
		return result, nil
	}

	avgs := make([]entity.DailyAverage, 0, len(aggs))
	for _, a := range aggs {
		name := geo.Name(a.Code)
		avg := float64(a.Count) / float64(days)
		if name == "" || avg <= 0 {
			continue
		}
		avgs = append(avgs, entity.DailyAverage{Code: a.Code, Name: name, AverageArticles: avg})
	}

	sort.SliceStable(avgs, func(i, j int) bool {
		if avgs[i].AverageArticles != avgs[j].AverageArticles {
			return avgs[i].AverageArticles > avgs[j].AverageArticles
		}
		return avgs[i].Code < avgs[j].Code
	})
	result.Highest = append(result.Highest, avgs[:min(len(avgs), dailyAverageEntries)]...)

	for i := len(avgs) - 1; i >= 0 && len(result.Lowest) < dailyAverageEntries; i-- {
		result.Lowest = append(result.Lowest, avgs[i])
	}
	return result, nil
}
