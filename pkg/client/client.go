// Package client fetches dashboard data from the mediawatch API.
//
// Every GET and POST response is memoized for five minutes in memory and,
// when a BoltCache is configured, on disk. The client does not retry; callers
// decide what to render on error.
package client

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"

	"mediawatch/pkg/api"
)

// DefaultTTL is the lifetime of a cached response.
const DefaultTTL = 5 * time.Minute

var errNotCached = errors.New("not cached")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Config configures a Client.
type Config struct {
	// BaseURL is the server root, e.g. http://localhost:8080. The /api/v1
	// prefix is added by the client.
	BaseURL string
	Timeout time.Duration
	// TTL defaults to DefaultTTL.
	TTL time.Duration
	// Disk is an optional persistent tier.
	Disk   *BoltCache
	Logger *slog.Logger
	// Debug logs every request and response.
	Debug bool
}

// Client is safe for concurrent use.
type Client struct {
	base   string
	rq     *requester.Requester
	mem    cache.Cache[string, []byte]
	disk   *BoltCache
	logger *slog.Logger
}

// New builds a client. It never fails; a bad BaseURL surfaces on the first call.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	mws := []middleware.RoundTripperHandler{middleware.JSON}
	if cfg.Debug {
		mws = append(mws, LoggingRoundTripper(cfg.Logger, LoggingOpts{Level: slog.LevelDebug}))
	}

	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/") + api.BasePath,
		rq:     requester.New(http.Client{Timeout: cfg.Timeout}, mws...),
		mem:    cache.NewCache[string, []byte]().WithTTL(cfg.TTL).WithMaxKeys(1000),
		disk:   cfg.Disk,
		logger: cfg.Logger,
	}
}

// CacheKey is method + path + canonical query + hash of the body.
func CacheKey(method, path string, query url.Values, body []byte) string {
	var b strings.Builder
	b.WriteString(method)
	b.WriteByte(' ')
	b.WriteString(path)
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	if len(body) > 0 {
		sum := sha256.Sum256(body)
		b.WriteByte('#')
		b.WriteString(hex.EncodeToString(sum[:8]))
	}
	return b.String()
}

// PurgeCache empties the memory tier and, if present, the disk tier.
func (c *Client) PurgeCache() error {
	c.mem.Purge()
	if c.disk == nil {
		return nil
	}
	_, err := c.disk.Purge()
	return err
}

// fetch returns the raw body of a 2xx response, serving from cache when possible.
func (c *Client) fetch(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	key := CacheKey(method, path, query, payload)
	if data, ok := c.mem.Get(key); ok {
		return data, nil
	}
	if c.disk != nil {
		if data, left, ok := c.disk.Get(key); ok {
			// 残り寿命だけメモリに載せる
			c.mem.Set(key, data, left)
			return data, nil
		}
	}

	data, err := c.do(ctx, method, path, query, payload)
	if err != nil {
		return nil, err
	}

	c.mem.Set(key, data, 0)
	if c.disk != nil {
		if err := c.disk.Put(key, data); err != nil {
			c.logger.Warn("disk cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("make request: %w", err)
	}
	return c.send(req)
}

// send performs req and returns the body of a 2xx response.
func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.rq.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e api.Error
		_ = json.Unmarshal(data, &e)
		return nil, &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	return data, nil
}

func get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	data, err := c.fetch(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

func post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	data, err := c.fetch(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}
