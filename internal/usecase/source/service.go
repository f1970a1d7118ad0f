package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"mediawatch/internal/common/pagination"
	"mediawatch/internal/domain/entity"
	"mediawatch/internal/domain/geo"
	"mediawatch/internal/repository"
	"mediawatch/pkg/daterange"
)

// Service groups articles by who published them.
type Service struct {
	Repo repository.ArticleRepository
}

// AnalysisInput filters the source analysis. Country accepts an ISO code or
// a country name. Author "unknown" selects unattributed articles.
type AnalysisInput struct {
	Range   daterange.Range
	Country string
	Author  string
}

// PaginatedResult is one page of groups.
type PaginatedResult struct {
	Data       []entity.Group
	Pagination pagination.Metadata
}

// Analysis returns per-(country, author set) statistics. An unresolvable
// country yields an empty result rather than an unfiltered one.
func (s *Service) Analysis(ctx context.Context, in AnalysisInput) ([]entity.SourceStatistics, error) {
	f := repository.ArticleFilter{From: in.Range.Start, To: in.Range.End, Author: strings.TrimSpace(in.Author)}
	if c := strings.TrimSpace(in.Country); c != "" {
		f.Country = geo.Normalize(c)
		if f.Country == "" {
			return []entity.SourceStatistics{}, nil
		}
	}

	stats, err := s.Repo.SourceStatistics(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("source statistics: %w", err)
	}
	for i := range stats {
		stats[i].CountryName = countryLabel(stats[i].Country)
	}
	return stats, nil
}

// Grouped returns one page of groups keyed by author or by country.
func (s *Service) Grouped(ctx context.Context, field entity.GroupField, r daterange.Range, params pagination.Params) (*PaginatedResult, error) {
	groups, err := s.Repo.Grouped(ctx, field, repository.ArticleFilter{From: r.Start, To: r.End})
	if err != nil {
		return nil, fmt.Errorf("grouped %s: %w", field, err)
	}

	label := authorLabel
	if field == entity.GroupByCountry {
		label = countryLabel
	}
	groups = lo.Map(groups, func(g entity.Group, _ int) entity.Group {
		g.Name = label(g.Name)
		return g
	})

	page, meta := pagination.Slice(groups, params)
	return &PaginatedResult{Data: page, Pagination: meta}, nil
}

func authorLabel(name string) string {
	if name == "" {
		return UnknownLabel
	}
	return name
}

// countryLabel maps a code to its display name. Codes missing from the
// reference table are shown as-is.
func countryLabel(code string) string {
	if code == "" {
		return UnknownLabel
	}
	if name := geo.Name(code); name != "" {
		return name
	}
	return code
}
