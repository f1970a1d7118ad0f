// Package article implements the recent and historical article feeds.
package article

const (
	// DefaultRecentDays is the look-back of Recent when no value is given.
	DefaultRecentDays = 3
	// MaxRecentArticles caps the Recent result.
	MaxRecentArticles = 500
	// DefaultHistoryDays is the look-back of Historical when no value is given.
	DefaultHistoryDays = 90
	// HistoryTopN is the length of the top sources and top countries lists.
	HistoryTopN = 10
)
