package metrics

import "time"

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordCacheLookup records a response cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		ResponseCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	ResponseCacheTotal.WithLabelValues("miss").Inc()
}

// RecordStoreReload records a snapshot reload and the resulting size.
func RecordStoreReload(ok bool, articles int) {
	StoreReloadsTotal.WithLabelValues(resultLabel(ok)).Inc()
	if ok {
		StoreArticles.Set(float64(articles))
	}
}

// RecordGDELTDownload records one export download.
func RecordGDELTDownload(ok bool, duration time.Duration) {
	GDELTDownloadsTotal.WithLabelValues(resultLabel(ok)).Inc()
	GDELTDownloadDuration.Observe(duration.Seconds())
}

// IngestOutcome is the label of ArticlesIngestedTotal.
type IngestOutcome string

const (
	OutcomeMatched   IngestOutcome = "matched"
	OutcomeFlagged   IngestOutcome = "flagged"
	OutcomeInserted  IngestOutcome = "inserted"
	OutcomeDuplicate IngestOutcome = "duplicate"
	OutcomeSkipped   IngestOutcome = "skipped"
)

func RecordIngested(outcome IngestOutcome, n int) {
	if n <= 0 {
		return
	}
	ArticlesIngestedTotal.WithLabelValues(string(outcome)).Add(float64(n))
}

func RecordTopicReload(ok bool) {
	TopicReloadsTotal.WithLabelValues(resultLabel(ok)).Inc()
}
