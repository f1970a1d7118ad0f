// Package gdelt downloads and parses the GDELT 2.1 Global Knowledge Graph
// exports published every 15 minutes.
package gdelt

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"

	"mediawatch/internal/observability/metrics"
	"mediawatch/internal/resilience/circuitbreaker"
	"mediawatch/internal/resilience/retry"
	"mediawatch/internal/usecase/ingest"
)

// DefaultBaseURL serves lastupdate.txt and the 15-minute exports.
const DefaultBaseURL = "http://data.gdeltproject.org/gdeltv2"

const (
	gkgSuffix        = ".gkg.csv.zip"
	maxDownloadBytes = 256 << 20
)

// ErrNoGKGEntry is returned when lastupdate.txt lists no GKG export.
var ErrNoGKGEntry = errors.New("lastupdate.txt has no gkg entry")

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Retry     retry.Config
	Breaker   circuitbreaker.Config
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	cb := circuitbreaker.GDELTConfig()
	cb.IsSuccessful = isNotFoundOrNil
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   2 * time.Minute,
		UserAgent: "mediawatch-worker/1.0",
		Retry:     retry.GDELTConfig(),
		Breaker:   cb,
	}
}

// Client implements ingest.SlotSource.
type Client struct {
	cfg     Config
	rq      *requester.Requester
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

var _ ingest.SlotSource = (*Client)(nil)

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	rq := requester.New(http.Client{Timeout: cfg.Timeout},
		middleware.Header("User-Agent", cfg.UserAgent),
	)
	return &Client{
		cfg:     cfg,
		rq:      rq,
		breaker: circuitbreaker.New(cfg.Breaker),
		logger:  logger,
	}
}

// Breaker exposes the download circuit breaker for health reporting.
func (c *Client) Breaker() *circuitbreaker.CircuitBreaker { return c.breaker }

// SlotURL returns the GKG export URL of slot.
func (c *Client) SlotURL(slot time.Time) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + slot.UTC().Format(DateLayout) + gkgSuffix
}

func isNotFound(err error) bool {
	var he *retry.HTTPError
	return errors.As(err, &he) && he.StatusCode == http.StatusNotFound
}

func isNotFoundOrNil(err error) bool { return err == nil || isNotFound(err) }

// get downloads url through the circuit breaker with retries.
func (c *Client) get(ctx context.Context, url string, retryable func(error) bool) ([]byte, error) {
	var body []byte
	err := retry.WithBackoffIf(ctx, c.cfg.Retry, retryable, func() error {
		b, err := circuitbreaker.Do(c.breaker, func() ([]byte, error) { return c.download(ctx, url) })
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	return body, err
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.rq.Do(req)
	if err != nil {
		metrics.RecordGDELTDownload(false, time.Since(start))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordGDELTDownload(false, time.Since(start))
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: url}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	metrics.RecordGDELTDownload(err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}

// LatestSlot reads lastupdate.txt and returns the time of the newest GKG export.
func (c *Client) LatestSlot(ctx context.Context) (time.Time, error) {
	body, err := c.get(ctx, strings.TrimRight(c.cfg.BaseURL, "/")+"/lastupdate.txt", retry.IsRetryable)
	if err != nil {
		return time.Time{}, fmt.Errorf("LatestSlot: %w", err)
	}
	return ParseLastUpdate(bytes.NewReader(body))
}

// ParseLastUpdate extracts the GKG export time from a lastupdate.txt body
// ("size md5 url" per line).
func ParseLastUpdate(r io.Reader) (time.Time, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		u := fields[len(fields)-1]
		if !strings.HasSuffix(u, gkgSuffix) {
			continue
		}
		name := u[strings.LastIndexByte(u, '/')+1:]
		t, err := time.ParseInLocation(DateLayout, strings.TrimSuffix(name, gkgSuffix), time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse %s: %w", name, err)
		}
		return t, nil
	}
	if err := sc.Err(); err != nil {
		return time.Time{}, err
	}
	return time.Time{}, ErrNoGKGEntry
}

// FetchSlot downloads and parses one export. Exports that stay missing after
// the retries yield no records.
func (c *Client) FetchSlot(ctx context.Context, slot time.Time) ([]ingest.Record, error) {
	url := c.SlotURL(slot)
	body, err := c.get(ctx, url, retry.IsRetryableOrNotFound)
	if isNotFound(err) {
		c.logger.Warn("gkg export missing, treating slot as empty", slog.String("url", url))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FetchSlot: %w", err)
	}

	records, err := ReadExport(body)
	if err != nil {
		return nil, fmt.Errorf("FetchSlot %s: %w", url, err)
	}
	c.logger.Debug("gkg export parsed", slog.String("url", url), slog.Int("rows", len(records)))
	return records, nil
}

// ReadExport parses every CSV member of a zipped export.
func ReadExport(data []byte) ([]ingest.Record, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	var records []ingest.Record
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		recs, err := ParseGKG(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		records = append(records, recs...)
	}
	return records, nil
}
