package pathutil_test

import (
	"testing"

	"mediawatch/internal/handler/http/pathutil"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/countries/FR", "/api/v1/countries/:code"},
		{"/api/v1/countries/de/", "/api/v1/countries/:code"},
		{"/api/v1/countries/US/time-stats?interval=week", "/api/v1/countries/:code/time-stats"},
		{"/api/v1/countries/top", "/api/v1/countries/top"},
		{"/api/v1/countries/top?limit=5", "/api/v1/countries/top"},
		{"/api/v1/stats/global", "/api/v1/stats/global"},
		{"/swagger/index.html", "/swagger/*"},
		{"/health/", "/health"},
		{"/", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := pathutil.NormalizePath(tt.path); got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
