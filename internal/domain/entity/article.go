// Package entity defines the core domain entities and validation logic for the application.
// It contains the ingested Article record, the aggregate read models served by the
// dashboard API, and the domain-specific errors.
package entity

import (
	"strings"
	"time"
)

// Tones mirrors the GDELT V2Tone block of a GKG record.
type Tones struct {
	Overall      float64
	Positive     float64
	Negative     float64
	Polarity     float64
	Activity     float64
	Emotionality float64
	WordCount    int
}

// Article represents a news article selected by the topic filter during ingest.
// SourceCountry holds an ISO-3166 alpha-2 code, or an empty string when the
// publishing domain could not be mapped to a country.
type Article struct {
	ID            int64
	GdeltID       string
	Title         string
	URL           string
	SourceName    string
	SourceCountry string
	Authors       []string
	Themes        []string
	Tones         Tones
	Score         float64
	Flagged       bool
	SeenAt        time.Time
	CreatedAt     time.Time
}

// AuthorLabel joins the article authors with ", " or returns fallback when the
// article carries no author attribution.
func (a *Article) AuthorLabel(fallback string) string {
	if len(a.Authors) == 0 {
		return fallback
	}
	return strings.Join(a.Authors, ", ")
}

// HasAuthor reports whether name matches one of the authors, ignoring case.
// The literal "unknown" matches articles without authors.
func (a *Article) HasAuthor(name string) bool {
	if strings.EqualFold(name, UnknownAuthor) {
		return len(a.Authors) == 0
	}
	for _, au := range a.Authors {
		if strings.EqualFold(au, name) {
			return true
		}
	}
	return false
}

// Summary converts the article into the compact form listed under aggregates.
func (a *Article) Summary(sourceFallback string) ArticleSummary {
	title := a.Title
	if title == "" {
		title = "No Title"
	}
	u := a.URL
	if u == "" {
		u = "#"
	}
	return ArticleSummary{
		Title:  title,
		URL:    u,
		Date:   a.SeenAt,
		Source: a.AuthorLabel(sourceFallback),
		Tone:   a.Tones.Overall,
	}
}

// UnknownAuthor is the author filter value selecting articles without attribution.
const UnknownAuthor = "unknown"

// IngestEvent records the outcome of one ingest batch. EventTime is the GDELT
// slot the batch was read from, so the worker can resume after the latest one.
type IngestEvent struct {
	ID             int64
	EventType      string
	Success        bool
	ArticlesAmount int
	EventTime      time.Time
}

// EventTypeSaveDocs is the event type written after a slot has been stored.
const EventTypeSaveDocs = "save_docs"
