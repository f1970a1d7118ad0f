package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"mediawatch/internal/handler/http/respond"
	"mediawatch/internal/observability/metrics"
	"mediawatch/pkg/config"
)

// RateLimitConfig is a token bucket per client IP.
type RateLimitConfig struct {
	Enabled bool
	// RPS is the sustained request rate per IP.
	RPS float64
	// Burst is the bucket size.
	Burst int
	// IdleTTL drops the bucket of an IP after this much inactivity.
	IdleTTL time.Duration
}

// LoadRateLimitConfig reads RATE_LIMIT_ENABLED, RATE_LIMIT_RPS,
// RATE_LIMIT_BURST and RATE_LIMIT_IDLE_TTL.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: config.GetEnvBool("RATE_LIMIT_ENABLED", true),
		RPS:     config.GetEnvFloat("RATE_LIMIT_RPS", 20),
		Burst:   config.GetEnvInt("RATE_LIMIT_BURST", 40),
		IdleTTL: config.GetEnvDuration("RATE_LIMIT_IDLE_TTL", 10*time.Minute),
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 20
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	return cfg
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter rejects clients that exceed their token bucket with 429.
type IPRateLimiter struct {
	cfg       RateLimitConfig
	extractor IPExtractor
	now       func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

func NewIPRateLimiter(cfg RateLimitConfig, extractor IPExtractor) *IPRateLimiter {
	if extractor == nil {
		extractor = RemoteAddrExtractor{}
	}
	return &IPRateLimiter{
		cfg:       cfg,
		extractor: extractor,
		now:       time.Now,
		visitors:  make(map[string]*visitor),
	}
}

// Allow takes one token from the bucket of ip.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(l.cfg.RPS), l.cfg.Burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Len returns the number of tracked IPs.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Cleanup drops buckets idle for longer than IdleTTL and returns how many
// were removed.
func (l *IPRateLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.cfg.IdleTTL)
	removed := 0
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
			removed++
		}
	}
	return removed
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (l *IPRateLimiter) RunCleanup(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Cleanup(); n > 0 {
				logger.Debug("rate limiter cleanup", slog.Int("removed", n), slog.Int("active", l.Len()))
			}
		}
	}
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	if !l.cfg.Enabled {
		return next
	}
	retryAfter := strconv.Itoa(int(math.Ceil(1 / l.cfg.RPS)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, err := l.extractor.ExtractIP(r)
		if err != nil {
			// 抽出できない場合は制限しない（fail-open）
			next.ServeHTTP(w, r)
			return
		}
		if !l.Allow(ip) {
			metrics.RateLimitedTotal.Inc()
			w.Header().Set("Retry-After", retryAfter)
			respond.SafeError(w, respond.NewAppError(http.StatusTooManyRequests, "rate limit exceeded", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}
