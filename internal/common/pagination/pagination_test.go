package pagination_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediawatch/internal/common/pagination"
	"mediawatch/internal/domain/entity"
)

func TestCalculateOffset(t *testing.T) {
	tests := []struct{ page, limit, want int }{
		{1, 20, 0},
		{2, 20, 20},
		{3, 10, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pagination.CalculateOffset(tt.page, tt.limit))
	}
}

func TestCalculateTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 20, 1},
		{10, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 20, 5},
		{5, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pagination.CalculateTotalPages(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

func TestSlice(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	tests := []struct {
		name     string
		params   pagination.Params
		want     []string
		wantMeta pagination.Metadata
	}{
		{
			name:     "first page",
			params:   pagination.Params{Page: 1, Limit: 2},
			want:     []string{"a", "b"},
			wantMeta: pagination.Metadata{Total: 5, Page: 1, Limit: 2, TotalPages: 3},
		},
		{
			name:     "last partial page",
			params:   pagination.Params{Page: 3, Limit: 2},
			want:     []string{"e"},
			wantMeta: pagination.Metadata{Total: 5, Page: 3, Limit: 2, TotalPages: 3},
		},
		{
			name:     "past the end",
			params:   pagination.Params{Page: 9, Limit: 2},
			want:     []string{},
			wantMeta: pagination.Metadata{Total: 5, Page: 9, Limit: 2, TotalPages: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, meta := pagination.Slice(items, tt.params)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("items mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantMeta, meta); diff != "" {
				t.Errorf("metadata mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseQueryParams(t *testing.T) {
	cfg := pagination.DefaultConfig()

	tests := []struct {
		name      string
		query     string
		want      pagination.Params
		wantField string
	}{
		{name: "defaults", query: "", want: pagination.Params{Page: 1, Limit: 20}},
		{name: "explicit", query: "?page=3&limit=50", want: pagination.Params{Page: 3, Limit: 50}},
		{name: "page zero", query: "?page=0", wantField: "page"},
		{name: "page text", query: "?page=two", wantField: "page"},
		{name: "limit too large", query: "?limit=101", wantField: "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pagination.ParseQueryParams(httptest.NewRequest("GET", "/api/v1/sources/grouped"+tt.query, nil), cfg)
			if tt.wantField != "" {
				var valErr *entity.ValidationError
				require.True(t, errors.As(err, &valErr))
				assert.Equal(t, tt.wantField, valErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParams_ValidateAndDefaults(t *testing.T) {
	cfg := pagination.Config{DefaultPage: 1, DefaultLimit: 10, MaxLimit: 50}

	assert.NoError(t, pagination.Params{Page: 1, Limit: 50}.Validate(cfg))
	assert.Error(t, pagination.Params{Page: 0, Limit: 10}.Validate(cfg))
	assert.Error(t, pagination.Params{Page: 1, Limit: 51}.Validate(cfg))

	assert.Equal(t, pagination.Params{Page: 1, Limit: 10}, pagination.Params{}.WithDefaults(cfg))
	assert.Equal(t, pagination.Params{Page: 2, Limit: 50}, pagination.Params{Page: 2, Limit: 80}.WithDefaults(cfg))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PAGINATION_DEFAULT_LIMIT", "25")
	t.Setenv("PAGINATION_MAX_LIMIT", "200")
	assert.Equal(t, pagination.Config{DefaultPage: 1, DefaultLimit: 25, MaxLimit: 200}, pagination.LoadFromEnv())

	t.Setenv("PAGINATION_DEFAULT_LIMIT", "500")
	assert.Equal(t, pagination.DefaultConfig(), pagination.LoadFromEnv(), "default above max falls back")
}

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(pagination.RequestsTotal.WithLabelValues("sources_grouped", "200", "11-50"))
	pagination.RecordRequest("sources_grouped", 200, 12)
	assert.Equal(t, before+1, testutil.ToFloat64(pagination.RequestsTotal.WithLabelValues("sources_grouped", "200", "11-50")))
}
