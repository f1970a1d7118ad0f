package middleware

import (
	"net/http"
	"strings"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v2"

	"mediawatch/internal/handler/http/responsewriter"
	"mediawatch/internal/observability/metrics"
	"mediawatch/pkg/api"
)

// CacheHeader reports HIT or MISS on cacheable requests.
const CacheHeader = "X-Cache"

type cachedResponse struct {
	contentType string
	body        []byte
}

// ResponseCache memoizes successful GET responses under the API base path.
// Entries expire after the TTL; Purge drops them all.
type ResponseCache struct {
	entries cache.Cache[string, cachedResponse]
}

func NewResponseCache(ttl time.Duration, maxKeys int) *ResponseCache {
	return &ResponseCache{
		entries: cache.NewCache[string, cachedResponse]().
			WithTTL(ttl).
			WithMaxKeys(maxKeys).
			WithLRU(),
	}
}

// Key is the path plus the query with sorted keys, so parameter order does
// not split entries.
func Key(r *http.Request) string {
	q := r.URL.Query().Encode()
	if q == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + q
}

func cacheable(r *http.Request) bool {
	return r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, api.BasePath+"/")
}

// Purge drops every entry and returns how many there were.
func (c *ResponseCache) Purge() int {
	n := c.entries.Len()
	c.entries.Purge()
	return n
}

func (c *ResponseCache) Len() int { return c.entries.Len() }

func (c *ResponseCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !cacheable(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := Key(r)
		if hit, ok := c.entries.Get(key); ok {
			metrics.RecordCacheLookup(true)
			w.Header().Set("Content-Type", hit.contentType)
			w.Header().Set(CacheHeader, "HIT")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(hit.body)
			return
		}

		metrics.RecordCacheLookup(false)
		w.Header().Set(CacheHeader, "MISS")
		rw := responsewriter.WrapCapture(w)
		next.ServeHTTP(rw, r)

		if rw.StatusCode() != http.StatusOK {
			return
		}
		body := make([]byte, len(rw.Body()))
		copy(body, rw.Body())
		c.entries.Set(key, cachedResponse{contentType: rw.Header().Get("Content-Type"), body: body}, 0)
	})
}
