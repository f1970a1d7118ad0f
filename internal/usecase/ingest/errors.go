// Package ingest selects topic articles from the GDELT GKG exports, scores
// them and stores them together with an ingest event per export slot.
package ingest

import (
	"errors"
	"time"
)

// SlotInterval is the publication period of the GKG exports.
const SlotInterval = 15 * time.Minute

// DefaultThreshold is the final score from which an article is flagged.
const DefaultThreshold = 7.0

var (
	// ErrEmptyTopic is returned when a topic has no title keywords.
	ErrEmptyTopic = errors.New("topic must define at least one title keyword")
	// ErrInvalidThreshold is returned for thresholds outside [0, 10].
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 10")
)
