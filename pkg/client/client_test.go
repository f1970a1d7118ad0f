package client_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediawatch/pkg/api"
	"mediawatch/pkg/client"
)

/*────────────────────  テストサーバ  ────────────────────*/

type recorded struct {
	method string
	path   string
	query  url.Values
	body   []byte
	header http.Header
}

func newServer(t *testing.T, status int, response any) (*httptest.Server, *[]recorded, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	var reqs []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		reqs = append(reqs, recorded{r.Method, r.URL.Path, r.URL.Query(), body, r.Header.Clone()})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs, &calls
}

/*────────────────────  テストケース  ────────────────────*/

func TestClient_GlobalStats(t *testing.T) {
	want := api.GlobalStats{
		TotalArticles: 3,
		Countries:     []api.Country{{ID: "FR", Code: "FR", ISO2: "FR", Name: "France", Value: 3, AverageTone: -1.5}},
	}
	srv, reqs, calls := newServer(t, http.StatusOK, want)
	c := client.New(client.Config{BaseURL: srv.URL})

	got, err := c.GlobalStats(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GlobalStats mismatch (-want +got):\n%s", diff)
	}

	// 2 回目はキャッシュから
	_, err = c.GlobalStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	r := (*reqs)[0]
	assert.Equal(t, "/api/v1/stats/global", r.path)
	assert.Empty(t, r.query)
	assert.Equal(t, "application/json", r.header.Get("Accept"))
}

func TestClient_CacheKeyedByParams(t *testing.T) {
	srv, reqs, calls := newServer(t, http.StatusOK, []api.Country{})
	c := client.New(client.Config{BaseURL: srv.URL})
	ctx := context.Background()

	_, _ = c.TopCountries(ctx, 5, client.Range{})
	_, _ = c.TopCountries(ctx, 10, client.Range{})
	_, _ = c.TopCountries(ctx, 5, client.Range{})
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "5", (*reqs)[0].query.Get("limit"))

	require.NoError(t, c.PurgeCache())
	_, _ = c.TopCountries(ctx, 5, client.Range{})
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_MemoryTierExpires(t *testing.T) {
	srv, _, calls := newServer(t, http.StatusOK, []api.Continent{})
	c := client.New(client.Config{BaseURL: srv.URL, TTL: 100 * time.Millisecond})
	ctx := context.Background()

	_, err := c.Continents(ctx, client.Range{})
	require.NoError(t, err)
	_, err = c.Continents(ctx, client.Range{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	time.Sleep(200 * time.Millisecond)
	_, err = c.Continents(ctx, client.Range{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_PostBodies(t *testing.T) {
	srv, reqs, calls := newServer(t, http.StatusOK, []api.SourceAnalysis{{Source: "Jane Doe", Country: "France", ArticleCount: 2}})
	c := client.New(client.Config{BaseURL: srv.URL})
	ctx := context.Background()

	got, err := c.SourceAnalysis(ctx, api.AnalysisRequest{Country: "FR"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Jane Doe", got[0].Source)

	_, _ = c.SourceAnalysis(ctx, api.AnalysisRequest{Country: "FR"})
	_, _ = c.SourceAnalysis(ctx, api.AnalysisRequest{Country: "DE"})
	assert.Equal(t, int32(2), calls.Load(), "same body is cached, different body is not")

	r := (*reqs)[0]
	assert.Equal(t, http.MethodPost, r.method)
	assert.Equal(t, "/api/v1/sources/analysis", r.path)
	assert.JSONEq(t, `{"country":"FR"}`, string(r.body))
	assert.Equal(t, "application/json", r.header.Get("Content-Type"))
}

func TestClient_Errors(t *testing.T) {
	srv, _, calls := newServer(t, http.StatusNotFound, api.Error{Error: "country not found"})
	c := client.New(client.Config{BaseURL: srv.URL})

	_, err := c.Country(context.Background(), "zz")
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
	assert.Contains(t, err.Error(), "country not found")

	// エラーはキャッシュしない
	_, _ = c.Country(context.Background(), "zz")
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_CountryPath(t *testing.T) {
	srv, reqs, _ := newServer(t, http.StatusOK, api.CountryTimeStats{Code: "JP"})
	c := client.New(client.Config{BaseURL: srv.URL + "/"})

	_, err := c.CountryTimeStats(context.Background(), "jp", client.Range{Start: "2024-01-01", End: "2024-01-31"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/countries/JP/time-stats", (*reqs)[0].path)
	assert.Equal(t, "2024-01-31", (*reqs)[0].query.Get("end_date"))
}

func TestClient_Unreachable(t *testing.T) {
	c := client.New(client.Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	_, err := c.Continents(context.Background(), client.Range{})
	assert.Error(t, err)
	assert.False(t, client.IsNotFound(err))
}

func TestClient_RefreshServerCache(t *testing.T) {
	srv, reqs, _ := newServer(t, http.StatusOK, api.CacheRefresh{Purged: 4, Reloaded: true})
	c := client.New(client.Config{BaseURL: srv.URL})

	got, err := c.RefreshServerCache(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, api.CacheRefresh{Purged: 4, Reloaded: true}, got)
	assert.Equal(t, "Bearer tok", (*reqs)[0].header.Get("Authorization"))
	assert.Equal(t, "/api/v1/admin/cache/refresh", (*reqs)[0].path)
}

func TestClient_DebugLogMasksAuthorization(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusOK, api.CacheRefresh{})
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := client.New(client.Config{BaseURL: srv.URL, Logger: logger, Debug: true})

	_, err := c.RefreshServerCache(context.Background(), "super-secret-token")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "request sent")
	assert.Contains(t, buf.String(), "response received")
	assert.NotContains(t, buf.String(), "super-secret-token")
}

func TestCacheKey(t *testing.T) {
	a := client.CacheKey("GET", "/continents", url.Values{"b": {"2"}, "a": {"1"}}, nil)
	b := client.CacheKey("GET", "/continents", url.Values{"a": {"1"}, "b": {"2"}}, nil)
	assert.Equal(t, a, b)
	assert.Equal(t, "GET /continents?a=1&b=2", a)

	p1 := client.CacheKey("POST", "/trends/compare", nil, []byte(`{"x":1}`))
	p2 := client.CacheKey("POST", "/trends/compare", nil, []byte(`{"x":2}`))
	assert.NotEqual(t, p1, p2)
}
