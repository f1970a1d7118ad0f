package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"mediawatch/pkg/config"
)

// CORSConfig is the cross-origin policy. An AllowedOrigins entry of "*"
// allows every origin.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	// MaxAge is the preflight cache duration in seconds.
	MaxAge int
	Logger *slog.Logger
}

// LoadCORSConfig reads CORS_ALLOWED_ORIGINS (default "*"),
// CORS_ALLOWED_METHODS, CORS_ALLOWED_HEADERS and CORS_MAX_AGE.
func LoadCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: config.GetEnvStringList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AllowedMethods: config.GetEnvStringList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders: config.GetEnvStringList("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "X-Request-ID"}),
		ExposedHeaders: []string{"X-Request-ID", "X-Cache", "X-Trace-Id"},
		MaxAge:         config.GetEnvInt("CORS_MAX_AGE", 86400),
	}
}

func (c CORSConfig) wildcard() bool {
	return lo.Contains(c.AllowedOrigins, "*")
}

func (c CORSConfig) allowed(origin string) bool {
	return c.wildcard() || lo.Contains(c.AllowedOrigins, origin)
}

// CORS sets the Access-Control headers for allowed origins and answers
// preflight requests with 204. Disallowed origins get no CORS headers, the
// browser then blocks the response.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !cfg.allowed(origin) {
				if cfg.Logger != nil {
					cfg.Logger.Warn("CORS: origin not allowed",
						slog.String("origin", origin),
						slog.String("path", r.URL.Path))
				}
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			if cfg.wildcard() {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				// 許可リストの場合はオリジンを返し、キャッシュを分ける
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			if len(cfg.ExposedHeaders) > 0 {
				h.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposedHeaders, ", "))
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
				h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
