package gdelt_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/infra/gdelt"
)

// gkgRow builds a 27-column GKG row.
func gkgRow(id, date, domain, url, v2themes, tone, extras string) string {
	cols := make([]string, 27)
	cols[0], cols[1], cols[2], cols[3], cols[4] = id, date, "1", domain, url
	cols[8], cols[15], cols[26] = v2themes, tone, extras
	return strings.Join(cols, "\t")
}

const sampleExtras = `<PAGE_LINKS>https://a.example/x</PAGE_LINKS>` +
	`<PAGE_AUTHORS>Jane Doe;O'Brien-Smith;@bot;</PAGE_AUTHORS>` +
	`<PAGE_TITLE>Floods &amp; climate</PAGE_TITLE>`

func TestParseTone(t *testing.T) {
	tones, ok := gdelt.ParseTone("-2.5,1.2,3.7,4.9,20.1,1.3,1026")
	require.True(t, ok)
	assert.Equal(t, entity.Tones{
		Overall: -2.5, Positive: 1.2, Negative: 3.7, Polarity: 4.9,
		Activity: 20.1, Emotionality: 1.3, WordCount: 1026,
	}, tones)

	for _, bad := range []string{"", "1,2,3", "a,2,3,4,5,6,7"} {
		_, ok := gdelt.ParseTone(bad)
		assert.False(t, ok, bad)
	}
}

func TestParseThemes(t *testing.T) {
	got := gdelt.ParseThemes("ENV_CLIMATECHANGE,120;TAX_FNCACT_POLICE,45;;", "IGNORED")
	if diff := cmp.Diff([]string{"ENV_CLIMATECHANGE", "TAX_FNCACT_POLICE"}, got); diff != "" {
		t.Errorf("ParseThemes mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"A", "B"}, gdelt.ParseThemes("", "A;B"))
	assert.Nil(t, gdelt.ParseThemes("", ""))
}

func TestParseExtras(t *testing.T) {
	title, authors := gdelt.ParseExtras(sampleExtras)
	assert.Equal(t, "Floods & climate", title)
	assert.Equal(t, []string{"Jane Doe", "O'Brien-Smith"}, authors)

	title, authors = gdelt.ParseExtras("<PAGE_PRECISEPUBTIMESTAMP>20240501</PAGE_PRECISEPUBTIMESTAMP>")
	assert.Empty(t, title)
	assert.Nil(t, authors)

	title, _ = gdelt.ParseExtras("")
	assert.Empty(t, title)
}

func TestParseGKG(t *testing.T) {
	input := strings.Join([]string{
		gkgRow("20240501120000-1", "20240501120000", "Example.COM", "https://example.com/a",
			"ENV_FLOOD,1", "-1,2,3,4,5,6,7", sampleExtras),
		gkgRow("20240501120000-2", "bad-date", "example.com", "https://example.com/b", "", "", ""),
		"too\tshort",
		gkgRow("", "20240501120000", "example.com", "", "", "", ""),
	}, "\n")

	records, err := gdelt.ParseGKG(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "20240501120000-1", r.GdeltID)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), r.Date)
	assert.Equal(t, "example.com", r.SourceName)
	assert.Equal(t, []string{"ENV_FLOOD"}, r.Themes)
	assert.Equal(t, -1.0, r.Tones.Overall)
	assert.Equal(t, "Floods & climate", r.Title)
}
