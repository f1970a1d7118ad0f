package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mediawatch/internal/handler/http/auth"
	"mediawatch/pkg/api"
	"mediawatch/pkg/client"
	"mediawatch/pkg/daterange"
)

// RangeOpts are the optional date bounds shared by several commands.
type RangeOpts struct {
	From string `long:"from" description:"start date (YYYY-MM-DD or RFC 3339)"`
	To   string `long:"to" description:"end date (YYYY-MM-DD or RFC 3339)"`
}

// validate applies the API's date rules locally so bad input never leaves
// the machine.
func (r RangeOpts) validate() (client.Range, error) {
	if _, err := daterange.ParseAndValidate(r.From, r.To, time.Now(), false); err != nil {
		return client.Range{}, fmt.Errorf("invalid date range: %w", err)
	}
	return client.Range{Start: r.From, End: r.To}, nil
}

// execute runs fn with a fresh env and a timeout-bound context.
func execute(fn func(ctx context.Context, e *env) error) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout+5*time.Second)
	defer cancel()
	return fn(ctx, e)
}

// fallback logs err and returns def; views render the default instead of failing.
func fallback[T any](v T, err error, what string, def T) T {
	if err != nil {
		slog.Error("failed to fetch "+what, slog.Any("error", err))
		return def
	}
	return v
}

func (e *env) print(s string) { fmt.Fprintln(e.out, s) }

// GlobalCmd shows all-time totals; the server computes them over every article.
type GlobalCmd struct{}

func (c GlobalCmd) Execute(_ []string) error { return execute(c.run) }

func (c GlobalCmd) run(ctx context.Context, e *env) error {
	g, err := e.client.GlobalStats(ctx)
	e.print(renderGlobal(fallback(g, err, "global stats", api.GlobalStats{})))
	return nil
}

type CountryCmd struct {
	Code string `long:"code" required:"true" description:"ISO 3166 country code"`
	RangeOpts
}

func (c CountryCmd) Execute(_ []string) error { return execute(c.run) }

func (c CountryCmd) run(ctx context.Context, e *env) error {
	r, err := c.validate()
	if err != nil {
		return err
	}
	country, err := e.client.Country(ctx, c.Code)
	if client.IsNotFound(err) {
		e.print(mutedStyle.Render("unknown country " + c.Code))
		return nil
	}
	country = fallback(country, err, "country", api.Country{Code: c.Code})
	ts, err := e.client.CountryTimeStats(ctx, c.Code, r)
	e.print(renderCountry(country, fallback(ts, err, "country time stats", api.CountryTimeStats{})))
	return nil
}

type ContinentsCmd struct {
	RangeOpts
}

func (c ContinentsCmd) Execute(_ []string) error { return execute(c.run) }

func (c ContinentsCmd) run(ctx context.Context, e *env) error {
	r, err := c.validate()
	if err != nil {
		return err
	}
	cs, err := e.client.Continents(ctx, r)
	e.print(renderContinents(fallback(cs, err, "continents", nil)))
	return nil
}

type SourcesCmd struct {
	GroupBy string `long:"group-by" choice:"author" choice:"country" default:"author" description:"grouping key"`
	Page    int    `long:"page" default:"1" description:"page number"`
	Limit   int    `long:"limit" default:"20" description:"groups per page"`
	RangeOpts
}

func (c SourcesCmd) Execute(_ []string) error { return execute(c.run) }

func (c SourcesCmd) run(ctx context.Context, e *env) error {
	r, err := c.validate()
	if err != nil {
		return err
	}
	gs, err := e.client.GroupedSources(ctx, client.GroupedQuery{GroupBy: c.GroupBy, Range: r, Page: c.Page, Limit: c.Limit})
	e.print(renderGrouped("Articles by "+c.GroupBy, fallback(gs, err, "grouped sources", api.GroupedSources{})))
	return nil
}

type AnalysisCmd struct {
	Country string `long:"country" description:"country code or name"`
	Author  string `long:"author" description:"author name, or \"unknown\" for unattributed articles"`
	RangeOpts
}

func (c AnalysisCmd) Execute(_ []string) error { return execute(c.run) }

func (c AnalysisCmd) run(ctx context.Context, e *env) error {
	if _, err := c.validate(); err != nil {
		return err
	}
	items, err := e.client.SourceAnalysis(ctx, api.AnalysisRequest{
		StartDate: c.From,
		EndDate:   c.To,
		Country:   c.Country,
		Author:    c.Author,
	})
	e.print(renderAnalysis(fallback(items, err, "source analysis", nil)))
	return nil
}

type AveragesCmd struct{}

func (c AveragesCmd) Execute(_ []string) error { return execute(c.run) }

func (AveragesCmd) run(ctx context.Context, e *env) error {
	d, err := e.client.DailyAverages(ctx)
	e.print(renderAverages(fallback(d, err, "daily averages", api.DailyAverages{})))
	return nil
}

type CompareCmd struct {
	From1 string `long:"from1" required:"true" description:"start of the first timeframe"`
	To1   string `long:"to1" required:"true" description:"end of the first timeframe"`
	From2 string `long:"from2" required:"true" description:"start of the second timeframe"`
	To2   string `long:"to2" required:"true" description:"end of the second timeframe"`
}

func (c CompareCmd) Execute(_ []string) error { return execute(c.run) }

func (c CompareCmd) run(ctx context.Context, e *env) error {
	if _, err := (RangeOpts{From: c.From1, To: c.To1}).validate(); err != nil {
		return fmt.Errorf("timeframe 1: %w", err)
	}
	if _, err := (RangeOpts{From: c.From2, To: c.To2}).validate(); err != nil {
		return fmt.Errorf("timeframe 2: %w", err)
	}
	cmp, err := e.client.CompareTimeframes(ctx, api.CompareRequest{
		Timeframe1: api.DateRange{StartDate: c.From1, EndDate: c.To1},
		Timeframe2: api.DateRange{StartDate: c.From2, EndDate: c.To2},
	})
	e.print(renderComparison(fallback(cmp, err, "comparison", api.Comparison{})))
	return nil
}

type RecentCmd struct {
	Days int `long:"days" default:"3" description:"look-back window in days"`
}

func (c RecentCmd) Execute(_ []string) error { return execute(c.run) }

func (c RecentCmd) run(ctx context.Context, e *env) error {
	if c.Days < 0 {
		return fmt.Errorf("days must be >= 0")
	}
	as, err := e.client.RecentArticles(ctx, c.Days)
	e.print(renderRecent(fallback(as, err, "recent articles", nil)))
	return nil
}

type HistoricalCmd struct {
	Days     int    `long:"days" default:"90" description:"look-back window in days"`
	Interval string `long:"interval" choice:"hour" choice:"day" choice:"week" choice:"month" default:"day" description:"bucket width"`
}

func (c HistoricalCmd) Execute(_ []string) error { return execute(c.run) }

func (c HistoricalCmd) run(ctx context.Context, e *env) error {
	if c.Days < 0 {
		return fmt.Errorf("days must be >= 0")
	}
	h, err := e.client.Historical(ctx, c.Days, c.Interval)
	e.print(renderHistorical(fallback(h, err, "history", api.Historical{})))
	return nil
}

// RefreshCmd signs a short-lived admin token with the server's secret.
type RefreshCmd struct {
	Secret  string `long:"jwt-secret" env:"JWT_SECRET" required:"true" description:"secret shared with the API server"`
	Subject string `long:"subject" default:"dashctl" description:"token subject"`
}

func (c RefreshCmd) Execute(_ []string) error { return execute(c.run) }

func (c RefreshCmd) run(ctx context.Context, e *env) error {
	token, err := auth.NewToken([]byte(c.Secret), c.Subject, auth.RoleAdmin, time.Minute, time.Now())
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	res, err := e.client.RefreshServerCache(ctx, token)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	fmt.Fprintf(e.out, "purged %d cached responses, store reloaded: %t\n", res.Purged, res.Reloaded)
	return nil
}
