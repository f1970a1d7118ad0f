// Package stats implements the country, continent and timeline statistics
// served under /api/v1/stats, /countries and /continents.
package stats

import (
	"fmt"

	"mediawatch/internal/domain/entity"
)

// ErrUnknownCountry is returned for codes that are not ISO 3166 alpha-2.
var ErrUnknownCountry = fmt.Errorf("unknown country code: %w", entity.ErrNotFound)

const (
	// DefaultTopLimit is the number of countries returned by TopCountries
	// when no limit is given.
	DefaultTopLimit = 10
	// MaxTopLimit bounds the limit accepted by TopCountries.
	MaxTopLimit = 250

	globalTopCountries  = 10
	timeStatsArticles   = 10
	dailyAverageEntries = 7

	unknownSource = "Unknown Source"
)
