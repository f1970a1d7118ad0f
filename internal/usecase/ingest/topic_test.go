package ingest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/usecase/ingest"
)

const topicYAML = `
name: climate
title_keywords: [" Climate ", emissions, climate]
keywords: [carbon tax, Heatwave]
themes: [env_climatechange, ENV_CO2]
tone_weights:
  activity: 0
`

func TestParseTopic(t *testing.T) {
	topic, err := ingest.ParseTopic([]byte(topicYAML))
	require.NoError(t, err)

	assert.Equal(t, "climate", topic.Name)
	assert.Equal(t, []string{"climate", "emissions"}, topic.TitleKeywords)
	assert.Equal(t, []string{"carbon tax", "heatwave"}, topic.Keywords)
	assert.Equal(t, []string{"ENV_CLIMATECHANGE", "ENV_CO2"}, topic.Themes)
	assert.Equal(t, ingest.DefaultThreshold, topic.Threshold)

	// 指定しなかった重みはデフォルトのまま
	assert.Equal(t, 2.0, topic.ToneWeights.Overall)
	assert.Equal(t, 0.0, topic.ToneWeights.Activity)
}

func TestParseTopic_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"no keywords", "name: x\n", ingest.ErrEmptyTopic},
		{"blank keywords", "title_keywords: ['', '  ']\n", ingest.ErrEmptyTopic},
		{"threshold", "title_keywords: [a]\nthreshold: 11\n", ingest.ErrInvalidThreshold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ingest.ParseTopic([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := ingest.ParseTopic([]byte("title_keywords: [a"))
	assert.Error(t, err)
}

func TestTopic_MatchesTitle(t *testing.T) {
	topic, err := ingest.ParseTopic([]byte(topicYAML))
	require.NoError(t, err)

	assert.True(t, topic.MatchesTitle("New CLIMATE report"))
	assert.True(t, topic.MatchesTitle("Emissions rise again"))
	assert.False(t, topic.MatchesTitle("Football results"))
	assert.False(t, topic.MatchesTitle(""))
}

func TestTopic_ToneScore(t *testing.T) {
	topic, err := ingest.ParseTopic([]byte("title_keywords: [a]"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		tones entity.Tones
		want  float64
	}{
		{"clamped low", entity.Tones{Overall: -5, Positive: 3}, 0},
		{"clamped high", entity.Tones{Negative: 30}, 10},
		// -2*2 -1*1 + 6*2 + 7*1 + 2*0.5 + 10*0.2 = 17 -> 8.5
		{"weighted", entity.Tones{Overall: -2, Positive: 1, Negative: 6, Polarity: 7, Emotionality: 2, Activity: 10}, 8.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, topic.ToneScore(tt.tones), 1e-9)
		})
	}
}

func TestTopic_Classify(t *testing.T) {
	topic, err := ingest.ParseTopic([]byte(topicYAML))
	require.NoError(t, err)

	a := &entity.Article{
		Title:  "Heatwave and a carbon tax",
		URL:    "https://example.com/climate",
		Themes: []string{"ENV_CLIMATECHANGE", "ENV_CO2", "ENV_CO2", "TAX_FNCACT"},
		Tones:  entity.Tones{Negative: 10},
	}
	c := topic.Classify(a)

	assert.Equal(t, 10.0, c.Tone)
	assert.Equal(t, 6.0, c.Theme)
	assert.Equal(t, 4.0, c.Keyword)
	assert.InDelta(t, 20.0/3, c.Score, 1e-9)
	assert.False(t, c.Flagged)

	a.Themes = append(a.Themes, "ENV_CO2", "ENV_CO2", "ENV_CO2")
	c = topic.Classify(a)
	assert.Equal(t, 10.0, c.Theme)
	assert.True(t, c.Flagged)
}
