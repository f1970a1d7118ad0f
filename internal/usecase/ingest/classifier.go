package ingest

import (
	"strings"

	"github.com/samber/lo"

	"mediawatch/internal/domain/entity"
)

const (
	maxToneScore = 20.0
	maxHits      = 5
	pointsPerHit = 2.0
)

// Classification holds the partial scores of an article, each in [0, 10].
type Classification struct {
	Tone    float64
	Theme   float64
	Keyword float64
	Score   float64
	Flagged bool
}

// MatchesTitle reports whether title contains a title keyword, ignoring case.
func (t *Topic) MatchesTitle(title string) bool {
	if title == "" {
		return false
	}
	lower := strings.ToLower(title)
	return lo.ContainsBy(t.TitleKeywords, func(kw string) bool { return strings.Contains(lower, kw) })
}

// ToneScore weighs the tone components, clamps the sum to [0, 20] and halves it.
func (t *Topic) ToneScore(tones entity.Tones) float64 {
	w := t.ToneWeights
	sum := tones.Overall*w.Overall +
		tones.Positive*w.Positive +
		tones.Negative*w.Negative +
		tones.Polarity*w.Polarity +
		tones.Emotionality*w.Emotionality +
		tones.Activity*w.Activity
	return min(max(sum, 0), maxToneScore) / 2
}

// ThemeScore counts every theme occurrence listed by the topic.
func (t *Topic) ThemeScore(themes []string) float64 {
	hits := lo.CountBy(themes, func(th string) bool {
		_, ok := t.themeSet[strings.ToUpper(th)]
		return ok
	})
	return float64(min(hits, maxHits)) * pointsPerHit
}

// KeywordScore counts the topic keywords found in text.
func (t *Topic) KeywordScore(text string) float64 {
	lower := strings.ToLower(text)
	hits := lo.CountBy(t.Keywords, func(kw string) bool { return strings.Contains(lower, kw) })
	return float64(min(hits, maxHits)) * pointsPerHit
}

// Classify scores an article. The final score is the mean of the tone,
// theme and keyword scores.
func (t *Topic) Classify(a *entity.Article) Classification {
	c := Classification{
		Tone:    t.ToneScore(a.Tones),
		Theme:   t.ThemeScore(a.Themes),
		Keyword: t.KeywordScore(a.Title + " " + a.URL),
	}
	c.Score = (c.Tone + c.Theme + c.Keyword) / 3
	c.Flagged = c.Score >= t.Threshold
	return c
}
