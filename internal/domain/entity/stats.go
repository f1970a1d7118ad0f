package entity

import (
	"fmt"
	"strings"
	"time"
)

// CountryAggregate is the raw per-country aggregate returned by the store.
type CountryAggregate struct {
	Code    string
	Count   int64
	AvgTone float64
}

// Country is an aggregate enriched with reference data.
type Country struct {
	Code      string
	Name      string
	Continent string
	Articles  int64
	AvgTone   float64
}

// Continent aggregates the countries located on it. AvgTone is weighted by
// the number of articles of every member country.
type Continent struct {
	Name      string
	Articles  int64
	AvgTone   float64
	Countries []Country
}

// GlobalStats is the dashboard landing view.
type GlobalStats struct {
	TotalArticles     int64
	Countries         []Country
	AveragePerCountry float64
	TopCountries      []Country
	Continents        []Continent
}

// TimelinePoint is a single time bucket.
type TimelinePoint struct {
	Date    time.Time
	Count   int64
	AvgTone float64
}

// ArticleSummary is the short article form embedded in aggregates.
type ArticleSummary struct {
	Title  string
	URL    string
	Date   time.Time
	Source string
	Tone   float64
}

// CountryTimeStats describes one country over a date range.
type CountryTimeStats struct {
	Code         string
	Name         string
	ArticleCount int64
	AvgTone      float64
	Timeline     []TimelinePoint
	Articles     []ArticleSummary
}

// Group is one row of the grouped sources view.
type Group struct {
	Name          string
	Count         int64
	AvgTone       float64
	LastArticleAt time.Time
	Recent        []ArticleSummary
}

// SourceStatistics is one row of the source analysis, keyed by the
// (country, author set) pair. Authors is empty for unattributed articles.
type SourceStatistics struct {
	Authors       []string
	Country       string
	CountryName   string
	Count         int64
	AvgTone       float64
	LastArticleAt time.Time
	Recent        []ArticleSummary
}

// Source renders the author set as shown to users.
func (s SourceStatistics) Source() string {
	if len(s.Authors) == 0 {
		return "Unknown"
	}
	return strings.Join(s.Authors, ", ")
}

// DailyAverage is the mean number of articles per active day for a country.
type DailyAverage struct {
	Code            string
	Name            string
	AverageArticles float64
}

// DailyAverages holds the extremes of the daily average ranking.
type DailyAverages struct {
	Highest []DailyAverage
	Lowest  []DailyAverage
}

// Timeframe is one side of a trend comparison.
type Timeframe struct {
	Start        time.Time
	End          time.Time
	ArticleCount int64
	Daily        []TimelinePoint
}

// NamedCount pairs a label with a count.
type NamedCount struct {
	Name  string
	Count int64
}

// Historical is the bucketed history of the whole article set.
type Historical struct {
	Timeline     []TimelinePoint
	TopSources   []NamedCount
	TopCountries []NamedCount
}

// Interval is the bucket width of a timeline.
type Interval string

// Supported intervals.
const (
	IntervalHour  Interval = "hour"
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
)

// ParseInterval validates an interval name. An empty value means day.
func ParseInterval(s string) (Interval, error) {
	switch Interval(strings.ToLower(strings.TrimSpace(s))) {
	case "", IntervalDay:
		return IntervalDay, nil
	case IntervalHour:
		return IntervalHour, nil
	case IntervalWeek:
		return IntervalWeek, nil
	case IntervalMonth:
		return IntervalMonth, nil
	}
	return "", &ValidationError{Field: "interval", Message: "interval must be one of: hour, day, week, month"}
}

// Truncate returns the start of the bucket containing t (UTC). Weeks start on Monday.
func (iv Interval) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch iv {
	case IntervalHour:
		return t.Truncate(time.Hour)
	case IntervalWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case IntervalMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// GroupField selects the key of the grouped sources view.
type GroupField string

// Supported group fields.
const (
	GroupByAuthor  GroupField = "author"
	GroupByCountry GroupField = "country"
)

// ParseGroupField validates a group_by value. An empty value means author.
func ParseGroupField(s string) (GroupField, error) {
	switch GroupField(strings.ToLower(strings.TrimSpace(s))) {
	case "", GroupByAuthor:
		return GroupByAuthor, nil
	case GroupByCountry:
		return GroupByCountry, nil
	}
	return "", &ValidationError{
		Field:   "group_by",
		Message: fmt.Sprintf("group_by must be one of: %s, %s", GroupByAuthor, GroupByCountry),
	}
}
