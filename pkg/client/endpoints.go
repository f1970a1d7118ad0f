package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mediawatch/pkg/api"
)

// Range is an optional date window; empty fields are omitted.
type Range struct {
	Start string
	End   string
}

func (r Range) query() url.Values {
	q := url.Values{}
	if r.Start != "" {
		q.Set("start_date", r.Start)
	}
	if r.End != "" {
		q.Set("end_date", r.End)
	}
	return q
}

// GroupedQuery selects a page of the grouped sources view.
type GroupedQuery struct {
	GroupBy string // author | country
	Range   Range
	Page    int
	Limit   int
}

// GlobalStats covers every stored article; the endpoint takes no range.
func (c *Client) GlobalStats(ctx context.Context) (api.GlobalStats, error) {
	return get[api.GlobalStats](ctx, c, "/stats/global", nil)
}

func (c *Client) DailyAverages(ctx context.Context) (api.DailyAverages, error) {
	return get[api.DailyAverages](ctx, c, "/stats/daily-averages", nil)
}

// TopCountries returns at most limit countries; limit <= 0 uses the server default.
func (c *Client) TopCountries(ctx context.Context, limit int, r Range) ([]api.Country, error) {
	q := r.query()
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return get[[]api.Country](ctx, c, "/countries/top", q)
}

func (c *Client) Country(ctx context.Context, code string) (api.Country, error) {
	return get[api.Country](ctx, c, "/countries/"+url.PathEscape(strings.ToUpper(code)), nil)
}

func (c *Client) CountryTimeStats(ctx context.Context, code string, r Range) (api.CountryTimeStats, error) {
	return get[api.CountryTimeStats](ctx, c, "/countries/"+url.PathEscape(strings.ToUpper(code))+"/time-stats", r.query())
}

func (c *Client) Continents(ctx context.Context, r Range) ([]api.Continent, error) {
	return get[[]api.Continent](ctx, c, "/continents", r.query())
}

func (c *Client) GroupedSources(ctx context.Context, gq GroupedQuery) (api.GroupedSources, error) {
	q := gq.Range.query()
	if gq.GroupBy != "" {
		q.Set("group_by", gq.GroupBy)
	}
	if gq.Page > 0 {
		q.Set("page", strconv.Itoa(gq.Page))
	}
	if gq.Limit > 0 {
		q.Set("limit", strconv.Itoa(gq.Limit))
	}
	return get[api.GroupedSources](ctx, c, "/sources/grouped", q)
}

func (c *Client) SourceAnalysis(ctx context.Context, req api.AnalysisRequest) ([]api.SourceAnalysis, error) {
	return post[[]api.SourceAnalysis](ctx, c, "/sources/analysis", req)
}

func (c *Client) CompareTimeframes(ctx context.Context, req api.CompareRequest) (api.Comparison, error) {
	return post[api.Comparison](ctx, c, "/trends/compare", req)
}

// RecentArticles returns articles of the last days; days < 0 uses the server default.
func (c *Client) RecentArticles(ctx context.Context, days int) ([]api.Article, error) {
	q := url.Values{}
	if days >= 0 {
		q.Set("days", strconv.Itoa(days))
	}
	return get[[]api.Article](ctx, c, "/articles/recent", q)
}

func (c *Client) Historical(ctx context.Context, days int, interval string) (api.Historical, error) {
	q := url.Values{}
	if days >= 0 {
		q.Set("days", strconv.Itoa(days))
	}
	if interval != "" {
		q.Set("interval", interval)
	}
	return get[api.Historical](ctx, c, "/articles/historical", q)
}

// RefreshServerCache calls the admin endpoint with a bearer token. The
// result is never cached, and the local caches are purged on success.
func (c *Client) RefreshServerCache(ctx context.Context, token string) (api.CacheRefresh, error) {
	var out api.CacheRefresh
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/admin/cache/refresh", http.NoBody)
	if err != nil {
		return out, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	data, err := c.send(req)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode cache refresh: %w", err)
	}
	if err := c.PurgeCache(); err != nil {
		c.logger.Warn("local cache purge failed", slog.Any("error", err))
	}
	return out, nil
}
