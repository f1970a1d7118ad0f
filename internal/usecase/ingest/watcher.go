package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"mediawatch/internal/observability/metrics"
)

// TopicSource provides the topic used for the next batch.
type TopicSource interface {
	Topic() *Topic
}

// TopicWatcher serves a topic file and reloads it whenever the file changes.
// A file that fails to parse is ignored and the previous topic is kept.
type TopicWatcher struct {
	path    string
	logger  *slog.Logger
	current atomic.Pointer[Topic]
}

// NewTopicWatcher loads path. It fails when the initial topic is invalid.
func NewTopicWatcher(path string, logger *slog.Logger) (*TopicWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("topic path: %w", err)
	}
	t, err := LoadTopic(abs)
	if err != nil {
		return nil, err
	}
	w := &TopicWatcher{path: abs, logger: logger}
	w.current.Store(t)
	return w, nil
}

func (w *TopicWatcher) Topic() *Topic {
	return w.current.Load()
}

// Run watches the topic file until ctx is done. The parent directory is
// watched so that editors replacing the file by rename are noticed.
func (w *TopicWatcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.reload()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("topic watcher error", slog.Any("error", err))
		}
	}
}

func (w *TopicWatcher) reload() {
	t, err := LoadTopic(w.path)
	if err != nil {
		metrics.RecordTopicReload(false)
		w.logger.Error("topic reload failed, keeping previous topic",
			slog.String("path", w.path),
			slog.Any("error", err))
		return
	}
	w.current.Store(t)
	metrics.RecordTopicReload(true)
	w.logger.Info("topic reloaded",
		slog.String("topic", t.Name),
		slog.Int("title_keywords", len(t.TitleKeywords)))
}
