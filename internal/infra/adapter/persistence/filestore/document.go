package filestore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/domain/geo"
)

// Document is one article in the data file. The layout follows the JSON
// exported by the original ingest scripts so existing dumps can be served
// as-is. sourceName, score and flagged are written by this service only.
type Document struct {
	Date            DocumentDate `json:"date"`
	Themes          flexList     `json:"themes"`
	Tones           documentTone `json:"tones"`
	PageTitle       string       `json:"pageTitle"`
	PageURL         string       `json:"pageUrl"`
	SourceCountry   *string      `json:"sourceCountry"`
	OriginalGdeltID string       `json:"originalGdeltId"`
	PageAuthors     flexList     `json:"pageAuthors"`
	SourceName      string       `json:"sourceName,omitempty"`
	Score           float64      `json:"score,omitempty"`
	Flagged         bool         `json:"flagged,omitempty"`
}

// DocumentDate holds the ISO timestamp and the raw GDELT YYYYMMDDHHMMSS value.
type DocumentDate struct {
	ISODate        string      `json:"isoDate"`
	TimePassedDate json.Number `json:"timePassedDate,omitempty"`
}

type documentTone struct {
	Overall      float64 `json:"overall"`
	Positive     float64 `json:"positive"`
	Negative     float64 `json:"negative"`
	Polarity     float64 `json:"polarity"`
	Activity     float64 `json:"activity"`
	Emotionality float64 `json:"emotionality"`
	WordCount    float64 `json:"word_count"`
}

// flexList decodes null, a ";"-separated string or an array of strings.
type flexList []string

func (l *flexList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		var out []string
		for _, part := range strings.Split(s, ";") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*l = out
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err != nil {
		return fmt.Errorf("flexList: %w", err)
	}
	*l = arr
	return nil
}

const gdeltTimeLayout = "20060102150405"

// ToArticle converts the document into the domain model. Country values may
// be codes or names; unknown names become the empty code.
func (d *Document) ToArticle() (*entity.Article, error) {
	seen, err := d.seenAt()
	if err != nil {
		return nil, err
	}
	country := ""
	if d.SourceCountry != nil {
		country = geo.Normalize(*d.SourceCountry)
	}
	source := d.SourceName
	if source == "" {
		source = geo.ExtractDomain(d.PageURL)
	}
	return &entity.Article{
		GdeltID:       d.OriginalGdeltID,
		Title:         d.PageTitle,
		URL:           d.PageURL,
		SourceName:    source,
		SourceCountry: country,
		Authors:       []string(d.PageAuthors),
		Themes:        []string(d.Themes),
		Tones: entity.Tones{
			Overall:      d.Tones.Overall,
			Positive:     d.Tones.Positive,
			Negative:     d.Tones.Negative,
			Polarity:     d.Tones.Polarity,
			Activity:     d.Tones.Activity,
			Emotionality: d.Tones.Emotionality,
			WordCount:    int(d.Tones.WordCount),
		},
		Score:   d.Score,
		Flagged: d.Flagged,
		SeenAt:  seen,
	}, nil
}

func (d *Document) seenAt() (time.Time, error) {
	if d.Date.ISODate != "" {
		if t, err := time.Parse(time.RFC3339Nano, d.Date.ISODate); err == nil {
			return t.UTC(), nil
		}
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", d.Date.ISODate, time.UTC); err == nil {
			return t, nil
		}
	}
	if raw := d.Date.TimePassedDate.String(); raw != "" {
		// numbers may have been written as floats by pandas
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			raw = strconv.FormatInt(int64(f), 10)
		}
		if t, err := time.ParseInLocation(gdeltTimeLayout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("document %q: no usable date", d.OriginalGdeltID)
}

// FromArticle builds the stored document of a.
func FromArticle(a *entity.Article) Document {
	seen := a.SeenAt.UTC()
	var country *string
	if a.SourceCountry != "" {
		c := a.SourceCountry
		country = &c
	}
	return Document{
		Date: DocumentDate{
			ISODate:        seen.Format("2006-01-02T15:04:05Z"),
			TimePassedDate: json.Number(seen.Format(gdeltTimeLayout)),
		},
		Themes: flexList(a.Themes),
		Tones: documentTone{
			Overall:      a.Tones.Overall,
			Positive:     a.Tones.Positive,
			Negative:     a.Tones.Negative,
			Polarity:     a.Tones.Polarity,
			Activity:     a.Tones.Activity,
			Emotionality: a.Tones.Emotionality,
			WordCount:    float64(a.Tones.WordCount),
		},
		PageTitle:       a.Title,
		PageURL:         a.URL,
		SourceCountry:   country,
		OriginalGdeltID: a.GdeltID,
		PageAuthors:     flexList(a.Authors),
		SourceName:      a.SourceName,
		Score:           a.Score,
		Flagged:         a.Flagged,
	}
}

type eventDocument struct {
	EventType      string    `json:"eventType"`
	IsSuccess      bool      `json:"isSuccess"`
	ArticlesAmount int       `json:"articlesAmount"`
	EventTime      time.Time `json:"eventTime"`
}
