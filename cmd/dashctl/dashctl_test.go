package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediawatch/pkg/api"
	"mediawatch/pkg/client"
)

func testEnv(t *testing.T, h http.HandlerFunc) (*env, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	var out bytes.Buffer
	return &env{
		client: client.New(client.Config{BaseURL: srv.URL, Timeout: time.Second}),
		out:    &out,
		close:  func() {},
	}, &out
}

func jsonHandler(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
}

func TestGlobalCmd(t *testing.T) {
	var rawQuery []string
	serve := jsonHandler(api.GlobalStats{
		TotalArticles:     42,
		AveragePerCountry: 21,
		Countries:         []api.Country{{Code: "FR", Name: "France", Value: 30}, {Code: "JP", Name: "Japan", Value: 12}},
		TopCountries:      []api.Country{{Code: "FR", Name: "France", Continent: "Europe", Value: 30, AverageTone: -2.25}},
		Continents:        []api.Continent{{Name: "Europe", Value: 30}},
	})
	e, out := testEnv(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = append(rawQuery, r.URL.RawQuery)
		serve(w, r)
	})

	require.NoError(t, GlobalCmd{}.run(context.Background(), e))
	assert.Equal(t, []string{""}, rawQuery)
	s := out.String()
	assert.Contains(t, s, "42 articles across 2 countries")
	assert.Contains(t, s, "France")
	assert.Contains(t, s, "-2.25")
	assert.Contains(t, s, "Europe")
}

func TestCommands_ServerErrorRendersDefault(t *testing.T) {
	e, out := testEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
	})

	require.NoError(t, ContinentsCmd{}.run(context.Background(), e))
	require.NoError(t, AveragesCmd{}.run(context.Background(), e))
	assert.Contains(t, out.String(), noData)
}

func TestCommands_InvalidDates(t *testing.T) {
	e, _ := testEnv(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	})
	ctx := context.Background()

	err := ContinentsCmd{RangeOpts{From: "2024-06-10", To: "2024-06-01"}}.run(ctx, e)
	assert.ErrorContains(t, err, "Start date must be before end date")

	err = ContinentsCmd{RangeOpts{From: "2999-01-01"}}.run(ctx, e)
	assert.ErrorContains(t, err, "Start date cannot be in the future")

	err = CompareCmd{From1: "2024-01-01", To1: "2024-01-31", From2: "bad", To2: "2024-02-28"}.run(ctx, e)
	assert.ErrorContains(t, err, "timeframe 2")

	assert.Error(t, RecentCmd{Days: -1}.run(ctx, e))
}

func TestCountryCmd_Unknown(t *testing.T) {
	e, out := testEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"country not found"}`))
	})

	require.NoError(t, CountryCmd{Code: "ZZ"}.run(context.Background(), e))
	assert.Contains(t, out.String(), "unknown country ZZ")
}

func TestCompareCmd(t *testing.T) {
	var got api.CompareRequest
	e, out := testEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		jsonHandler(api.Comparison{
			Timeframe1: api.Timeframe{StartDate: "2024-01-01T00:00:00Z", EndDate: "2024-01-31T23:59:59Z", ArticleCount: 10},
			Timeframe2: api.Timeframe{StartDate: "2024-02-01T00:00:00Z", EndDate: "2024-02-28T23:59:59Z", ArticleCount: 15},
		})(w, r)
	})

	cmd := CompareCmd{From1: "2024-01-01", To1: "2024-01-31", From2: "2024-02-01", To2: "2024-02-28"}
	require.NoError(t, cmd.run(context.Background(), e))

	assert.Equal(t, api.DateRange{StartDate: "2024-01-01", EndDate: "2024-01-31"}, got.Timeframe1)
	assert.Contains(t, out.String(), "Change: +5 articles (+50.0%)")
}

func TestRenderGrouped(t *testing.T) {
	s := renderGrouped("Articles by author", api.GroupedSources{
		Data:       []api.GroupedSource{{Name: "Unknown", ArticleCount: 3, AverageTone: 1.5, LastArticleDate: "2024-06-14T08:00:00Z"}},
		Pagination: api.Pagination{Total: 1, Page: 1, Limit: 20, TotalPages: 1},
	})
	assert.Contains(t, s, "Unknown")
	assert.Contains(t, s, "2024-06-14")
	assert.Contains(t, s, "page 1 of 1 (1 groups)")
}
