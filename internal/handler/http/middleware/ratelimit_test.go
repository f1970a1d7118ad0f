package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(rps float64, burst int) (*IPRateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
	l := NewIPRateLimiter(RateLimitConfig{Enabled: true, RPS: rps, Burst: burst, IdleTTL: time.Minute}, nil)
	l.now = clock.now
	return l, clock
}

func TestIPRateLimiter_Allow(t *testing.T) {
	l, clock := newTestLimiter(1, 2)

	assert.True(t, l.Allow("203.0.113.1"))
	assert.True(t, l.Allow("203.0.113.1"))
	assert.False(t, l.Allow("203.0.113.1"), "burst exhausted")
	assert.True(t, l.Allow("203.0.113.2"), "other IPs have their own bucket")

	clock.t = clock.t.Add(time.Second)
	assert.True(t, l.Allow("203.0.113.1"), "one token refilled")
	assert.False(t, l.Allow("203.0.113.1"))
}

func TestIPRateLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(1, 1)
	l.Allow("203.0.113.1")
	clock.t = clock.t.Add(30 * time.Second)
	l.Allow("203.0.113.2")
	require.Equal(t, 2, l.Len())

	clock.t = clock.t.Add(45 * time.Second)
	assert.Equal(t, 1, l.Cleanup())
	assert.Equal(t, 1, l.Len())
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l, _ := newTestLimiter(0.5, 1)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/continents", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("203.0.113.1:1000").Code)
	rec := do("203.0.113.1:1001")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())

	// 抽出できないアドレスは通す
	assert.Equal(t, http.StatusOK, do("garbage").Code)
	assert.Equal(t, http.StatusOK, do("garbage").Code)
}

func TestIPRateLimiter_Disabled(t *testing.T) {
	l := NewIPRateLimiter(RateLimitConfig{Enabled: false, RPS: 1, Burst: 1}, nil)
	calls := 0
	h := l.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls++ }))
	for range 5 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	assert.Equal(t, 5, calls)
	assert.Zero(t, l.Len())
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "-3")
	t.Setenv("RATE_LIMIT_BURST", "0")
	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, float64(20), cfg.RPS)
	assert.Equal(t, 1, cfg.Burst)
	assert.Equal(t, 10*time.Minute, cfg.IdleTTL)
}
