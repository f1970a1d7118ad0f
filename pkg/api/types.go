// Package api defines the JSON documents exchanged between the dashboard API
// and its clients. Field names are camelCase. Dates are RFC 3339 strings,
// except timeline buckets and compare bounds which use YYYY-MM-DD.
package api

// BasePath prefixes every versioned route.
const BasePath = "/api/v1"

// Country is the aggregate of one source country. ID, Code and ISO2 all
// carry the ISO 3166 alpha-2 code.
type Country struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	ISO2        string  `json:"iso2"`
	Name        string  `json:"name"`
	Continent   string  `json:"continent,omitempty"`
	Value       int64   `json:"value"`
	AverageTone float64 `json:"averageTone"`
}

// Continent aggregates its member countries.
type Continent struct {
	Name        string    `json:"name"`
	Value       int64     `json:"value"`
	AverageTone float64   `json:"averageTone"`
	Countries   []Country `json:"countries"`
}

// GlobalStats is the landing view of the dashboard.
type GlobalStats struct {
	TotalArticles     int64       `json:"totalArticles"`
	Countries         []Country   `json:"countries"`
	AveragePerCountry float64     `json:"averagePerCountry"`
	TopCountries      []Country   `json:"topCountries"`
	Continents        []Continent `json:"continents"`
}

// TimelinePoint is one time bucket.
type TimelinePoint struct {
	Date  string  `json:"date"`
	Count int64   `json:"count"`
	Tone  float64 `json:"tone"`
}

// ArticleRef is the short article form embedded in aggregates.
type ArticleRef struct {
	Title  string  `json:"title"`
	URL    string  `json:"url"`
	Date   string  `json:"date"`
	Source string  `json:"source"`
	Tone   float64 `json:"tone"`
}

// CountryTimeStats describes one country over a date range.
type CountryTimeStats struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	ArticleCount int64           `json:"articleCount"`
	AverageTone  float64         `json:"averageTone"`
	TimelineData []TimelinePoint `json:"timelineData"`
	Articles     []ArticleRef    `json:"articles"`
}

// GroupedSource is one row of the grouped sources view.
type GroupedSource struct {
	Name            string       `json:"name"`
	ArticleCount    int64        `json:"articleCount"`
	AverageTone     float64      `json:"averageTone"`
	LastArticleDate string       `json:"lastArticleDate"`
	RecentArticles  []ArticleRef `json:"recentArticles"`
}

// Pagination describes one page of a result.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// GroupedSources is a page of groups.
type GroupedSources struct {
	Data       []GroupedSource `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// AnalysisRequest is the body of POST /sources/analysis. Every field is
// optional. Country accepts a code or a country name.
type AnalysisRequest struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Country   string `json:"country,omitempty"`
	Author    string `json:"author,omitempty"`
}

// SourceAnalysis is one row of the source analysis.
type SourceAnalysis struct {
	Source          string       `json:"source"`
	Country         string       `json:"country"`
	ArticleCount    int64        `json:"articleCount"`
	AverageTone     float64      `json:"averageTone"`
	LastArticleDate string       `json:"lastArticleDate"`
	RecentArticles  []ArticleRef `json:"recentArticles"`
}

// DailyAverage is the mean number of articles per active day of a country.
type DailyAverage struct {
	Code            string  `json:"code"`
	Country         string  `json:"country"`
	AverageArticles float64 `json:"averageArticles"`
}

// DailyAverages holds both ends of the daily average ranking.
type DailyAverages struct {
	Highest []DailyAverage `json:"highest"`
	Lowest  []DailyAverage `json:"lowest"`
}

// DateRange is a pair of textual bounds.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// CompareRequest is the body of POST /trends/compare.
type CompareRequest struct {
	Timeframe1 DateRange `json:"timeframe1"`
	Timeframe2 DateRange `json:"timeframe2"`
}

// DailyCount is one day of a timeframe.
type DailyCount struct {
	Date         string  `json:"date"`
	ArticleCount int64   `json:"articleCount"`
	AverageTone  float64 `json:"averageTone"`
}

// Timeframe is one side of a trend comparison.
type Timeframe struct {
	StartDate    string       `json:"startDate"`
	EndDate      string       `json:"endDate"`
	ArticleCount int64        `json:"articleCount"`
	DailyData    []DailyCount `json:"dailyData"`
}

// Comparison is the response of POST /trends/compare.
type Comparison struct {
	Timeframe1 Timeframe `json:"timeframe1"`
	Timeframe2 Timeframe `json:"timeframe2"`
}

// Article is a stored article as listed by /articles/recent.
type Article struct {
	ID            int64    `json:"id"`
	GdeltID       string   `json:"gdeltId"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	SourceName    string   `json:"sourceName"`
	SourceCountry string   `json:"sourceCountry"`
	Authors       []string `json:"authors"`
	Themes        []string `json:"themes"`
	Tone          float64  `json:"tone"`
	Score         float64  `json:"score"`
	Flagged       bool     `json:"flagged"`
	Date          string   `json:"date"`
}

// SourceCount is a publishing domain with its article count.
type SourceCount struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// CountryCount is a country name with its article count.
type CountryCount struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

// Historical is the bucketed history of the article set.
type Historical struct {
	Timeline     []TimelinePoint `json:"timeline"`
	TopSources   []SourceCount   `json:"topSources"`
	TopCountries []CountryCount  `json:"topCountries"`
}

// CacheRefresh is the response of POST /admin/cache/refresh.
type CacheRefresh struct {
	Purged   int  `json:"purged"`
	Reloaded bool `json:"reloaded"`
}

// Welcome is the response of GET /.
type Welcome struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// Error is the body of every error response.
type Error struct {
	Error string `json:"error"`
}
