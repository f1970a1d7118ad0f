package ingest

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// ToneWeights multiply the V2Tone components in the tone score.
type ToneWeights struct {
	Overall      float64 `yaml:"overall"`
	Positive     float64 `yaml:"positive"`
	Negative     float64 `yaml:"negative"`
	Polarity     float64 `yaml:"polarity"`
	Emotionality float64 `yaml:"emotionality"`
	Activity     float64 `yaml:"activity"`
}

// DefaultToneWeights favour negative and emotional coverage.
func DefaultToneWeights() ToneWeights {
	return ToneWeights{
		Overall:      2.0,
		Positive:     -1.0,
		Negative:     2.0,
		Polarity:     1.0,
		Emotionality: 0.5,
		Activity:     0.2,
	}
}

// Topic is the article selection and scoring configuration, read from YAML:
//
//	name: climate
//	title_keywords: [climate, emissions]
//	keywords: [climate crisis, carbon tax]
//	themes: [ENV_CLIMATECHANGE, ENV_CO2]
//	threshold: 7
//	tone_weights:
//	  negative: 2.5
//
// Omitted tone weights and threshold keep their defaults.
type Topic struct {
	Name          string      `yaml:"name"`
	TitleKeywords []string    `yaml:"title_keywords"`
	Keywords      []string    `yaml:"keywords"`
	Themes        []string    `yaml:"themes"`
	Threshold     float64     `yaml:"threshold"`
	ToneWeights   ToneWeights `yaml:"tone_weights"`

	themeSet map[string]struct{}
}

// Topic lets a fixed *Topic serve as a TopicSource.
func (t *Topic) Topic() *Topic { return t }

// ParseTopic decodes and validates a topic document.
func ParseTopic(data []byte) (*Topic, error) {
	t := &Topic{Threshold: DefaultThreshold, ToneWeights: DefaultToneWeights()}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("decode topic: %w", err)
	}
	if err := t.normalize(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTopic reads a topic file.
func LoadTopic(path string) (*Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topic: %w", err)
	}
	t, err := ParseTopic(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func cleanList(values []string, transform func(string) string) []string {
	cleaned := lo.Map(values, func(v string, _ int) string { return transform(strings.TrimSpace(v)) })
	return lo.Uniq(lo.Filter(cleaned, func(v string, _ int) bool { return v != "" }))
}

func (t *Topic) normalize() error {
	t.TitleKeywords = cleanList(t.TitleKeywords, strings.ToLower)
	t.Keywords = cleanList(t.Keywords, strings.ToLower)
	t.Themes = cleanList(t.Themes, strings.ToUpper)
	if len(t.TitleKeywords) == 0 {
		return ErrEmptyTopic
	}
	if t.Threshold < 0 || t.Threshold > 10 {
		return ErrInvalidThreshold
	}
	t.themeSet = make(map[string]struct{}, len(t.Themes))
	for _, th := range t.Themes {
		t.themeSet[th] = struct{}{}
	}
	return nil
}
