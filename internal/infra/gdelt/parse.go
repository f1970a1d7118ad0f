package gdelt

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/usecase/ingest"
)

// GKG 2.1 column positions.
const (
	colRecordID   = 0
	colDate       = 1
	colSourceName = 3
	colDocumentID = 4
	colThemes     = 7
	colV2Themes   = 8
	colV2Tone     = 15
	colExtras     = 26
)

// DateLayout is the timestamp format of GKG rows and export file names.
const DateLayout = "20060102150405"

// maxLineSize bounds a single GKG row. Rows carrying large GCAM blocks exceed
// the bufio default by far.
const maxLineSize = 16 << 20

var authorRe = regexp.MustCompile(`^[A-Za-z\s',-]+$`)

// ParseGKG reads tab separated GKG rows. Rows that are too short or carry no
// record id are skipped.
func ParseGKG(r io.Reader) ([]ingest.Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 256<<10), maxLineSize)

	var records []ingest.Record
	line := 0
	for sc.Scan() {
		line++
		cols := strings.Split(sc.Text(), "\t")
		if len(cols) <= colV2Tone || cols[colRecordID] == "" {
			continue
		}
		rec, err := parseRow(cols)
		if err != nil {
			slog.Debug("skipping gkg row", slog.Int("line", line), slog.Any("error", err))
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return records, fmt.Errorf("scan gkg: %w", err)
	}
	return records, nil
}

func parseRow(cols []string) (ingest.Record, error) {
	date, err := time.ParseInLocation(DateLayout, strings.TrimSpace(cols[colDate]), time.UTC)
	if err != nil {
		return ingest.Record{}, fmt.Errorf("date: %w", err)
	}
	rec := ingest.Record{
		GdeltID:    cols[colRecordID],
		Date:       date,
		SourceName: strings.ToLower(strings.TrimSpace(cols[colSourceName])),
		URL:        strings.TrimSpace(cols[colDocumentID]),
		Themes:     ParseThemes(cols[colV2Themes], cols[colThemes]),
	}
	if tones, ok := ParseTone(cols[colV2Tone]); ok {
		rec.Tones = tones
	}
	if len(cols) > colExtras {
		rec.Title, rec.Authors = ParseExtras(cols[colExtras])
	}
	return rec, nil
}

// ParseThemes returns the theme names of a V2Themes block ("THEME,offset;...")
// and falls back to the plain Themes column when it is empty.
func ParseThemes(v2, v1 string) []string {
	src := v2
	if strings.TrimSpace(src) == "" {
		src = v1
	}
	var themes []string
	for _, part := range strings.Split(src, ";") {
		name, _, _ := strings.Cut(part, ",")
		if name = strings.TrimSpace(name); name != "" {
			themes = append(themes, name)
		}
	}
	return themes
}

// ParseTone decodes "overall,positive,negative,polarity,activity,emotionality,word_count".
func ParseTone(s string) (entity.Tones, bool) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) < 7 {
		return entity.Tones{}, false
	}
	var vals [6]float64
	for i := range vals {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return entity.Tones{}, false
		}
		vals[i] = v
	}
	wc, err := strconv.ParseFloat(parts[6], 64)
	if err != nil {
		return entity.Tones{}, false
	}
	return entity.Tones{
		Overall:      vals[0],
		Positive:     vals[1],
		Negative:     vals[2],
		Polarity:     vals[3],
		Activity:     vals[4],
		Emotionality: vals[5],
		WordCount:    int(wc),
	}, true
}

// ParseExtras extracts the page title and the valid author names from the
// Extras XML fragment.
func ParseExtras(extras string) (title string, authors []string) {
	if !strings.Contains(extras, "<PAGE_") {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(extras))
	if err != nil {
		return "", nil
	}
	// HTML parsing lower-cases element names
	title = strings.TrimSpace(doc.Find("page_title").First().Text())
	for _, a := range strings.Split(doc.Find("page_authors").First().Text(), ";") {
		a = strings.TrimSpace(a)
		if a != "" && authorRe.MatchString(a) {
			authors = append(authors, a)
		}
	}
	return title, authors
}
