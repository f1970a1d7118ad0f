// Package pathutil maps request paths to route templates so metric labels
// and span names stay bounded.
package pathutil

import (
	"regexp"
	"strings"
)

type pathPattern struct {
	pattern  *regexp.Regexp
	template string
}

// Evaluated in order, most specific first.
var pathPatterns = []pathPattern{
	{regexp.MustCompile(`^/api/v1/countries/[^/]+/time-stats$`), "/api/v1/countries/:code/time-stats"},
	{regexp.MustCompile(`^/api/v1/countries/[^/]+$`), "/api/v1/countries/:code"},
	{regexp.MustCompile(`^/swagger/.+$`), "/swagger/*"},
}

// staticRoutes are kept as-is, so /api/v1/countries/top never becomes :code.
var staticRoutes = map[string]struct{}{
	"/api/v1/countries/top": {},
}

// NormalizePath strips the query string and trailing slash and replaces
// dynamic segments with their placeholder.
//
//	NormalizePath("/api/v1/countries/FR")             // "/api/v1/countries/:code"
//	NormalizePath("/api/v1/countries/fr/time-stats")  // "/api/v1/countries/:code/time-stats"
//	NormalizePath("/api/v1/countries/top?limit=5")    // "/api/v1/countries/top"
//	NormalizePath("/health/")                         // "/health"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if _, ok := staticRoutes[path]; ok {
		return path
	}
	for _, p := range pathPatterns {
		if p.pattern.MatchString(path) {
			return p.template
		}
	}
	return path
}
