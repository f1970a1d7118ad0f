package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"

	"mediawatch/pkg/api"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numStyle    = cellStyle.Align(lipgloss.Right)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	negStyle    = numStyle.Foreground(lipgloss.Color("9"))
	posStyle    = numStyle.Foreground(lipgloss.Color("10"))
)

const noData = "no data"

// grid renders rows under headers. numeric marks right-aligned columns and
// toneCol (-1 for none) is colored by sign.
func grid(headers []string, rows [][]string, numeric []int, toneCol int) string {
	if len(rows) == 0 {
		return mutedStyle.Render(noData)
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == toneCol && row >= 0 && row < len(rows) {
				if strings.HasPrefix(rows[row][col], "-") {
					return negStyle
				}
				return posStyle
			}
			if lo.Contains(numeric, col) {
				return numStyle
			}
			return cellStyle
		}).
		String()
}

func title(s string) string { return titleStyle.Render(s) }

func tone(v float64) string  { return strconv.FormatFloat(v, 'f', 2, 64) }
func count(n int64) string   { return strconv.FormatInt(n, 10) }
func avg(v float64) string   { return strconv.FormatFloat(v, 'f', 1, 64) }
func orDash(s string) string { return lo.Ternary(s == "", "-", s) }

// shortDate keeps the date part of an RFC 3339 timestamp.
func shortDate(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return orDash(s)
}

func countryRows(cs []api.Country) [][]string {
	return lo.Map(cs, func(c api.Country, i int) []string {
		return []string{strconv.Itoa(i + 1), c.Code, c.Name, orDash(c.Continent), count(c.Value), tone(c.AverageTone)}
	})
}

func renderCountries(heading string, cs []api.Country) string {
	return title(heading) + "\n" +
		grid([]string{"#", "Code", "Country", "Continent", "Articles", "Tone"}, countryRows(cs), []int{0, 4, 5}, 5)
}

func renderContinents(cs []api.Continent) string {
	rows := lo.Map(cs, func(c api.Continent, _ int) []string {
		return []string{c.Name, count(c.Value), tone(c.AverageTone), strconv.Itoa(len(c.Countries))}
	})
	return title("Continents") + "\n" + grid([]string{"Continent", "Articles", "Tone", "Countries"}, rows, []int{1, 2, 3}, 2)
}

func renderGlobal(g api.GlobalStats) string {
	summary := fmt.Sprintf("%s articles across %d countries, %s per country on average",
		count(g.TotalArticles), len(g.Countries), avg(g.AveragePerCountry))
	return title("Global coverage") + "\n" + summary + "\n" +
		renderCountries("Top countries", g.TopCountries) + "\n" +
		renderContinents(g.Continents)
}

func articleRows(as []api.ArticleRef) [][]string {
	return lo.Map(as, func(a api.ArticleRef, _ int) []string {
		return []string{shortDate(a.Date), a.Title, orDash(a.Source), tone(a.Tone)}
	})
}

func renderCountry(c api.Country, ts api.CountryTimeStats) string {
	var b strings.Builder
	b.WriteString(title(fmt.Sprintf("%s (%s)", orDash(c.Name), c.Code)) + "\n")
	fmt.Fprintf(&b, "Continent: %s  Articles: %s  Tone: %s\n", orDash(c.Continent), count(c.Value), tone(c.AverageTone))

	timeline := lo.Map(ts.TimelineData, func(p api.TimelinePoint, _ int) []string {
		return []string{shortDate(p.Date), count(p.Count), tone(p.Tone)}
	})
	b.WriteString(title("Timeline") + "\n" + grid([]string{"Date", "Articles", "Tone"}, timeline, []int{1, 2}, 2) + "\n")
	b.WriteString(title("Recent articles") + "\n" + grid([]string{"Date", "Title", "Source", "Tone"}, articleRows(ts.Articles), nil, 3))
	return b.String()
}

func renderGrouped(heading string, gs api.GroupedSources) string {
	rows := lo.Map(gs.Data, func(g api.GroupedSource, _ int) []string {
		return []string{g.Name, count(g.ArticleCount), tone(g.AverageTone), shortDate(g.LastArticleDate)}
	})
	p := gs.Pagination
	footer := mutedStyle.Render(fmt.Sprintf("page %d of %d (%d groups)", p.Page, p.TotalPages, p.Total))
	return title(heading) + "\n" + grid([]string{"Name", "Articles", "Tone", "Last article"}, rows, []int{1, 2}, 2) + "\n" + footer
}

func renderAnalysis(items []api.SourceAnalysis) string {
	rows := lo.Map(items, func(s api.SourceAnalysis, _ int) []string {
		return []string{s.Source, s.Country, count(s.ArticleCount), tone(s.AverageTone), shortDate(s.LastArticleDate)}
	})
	return title("Source analysis") + "\n" + grid([]string{"Source", "Country", "Articles", "Tone", "Last article"}, rows, []int{2, 3}, 3)
}

func renderAverages(d api.DailyAverages) string {
	toRows := func(xs []api.DailyAverage) [][]string {
		return lo.Map(xs, func(x api.DailyAverage, _ int) []string {
			return []string{x.Code, x.Country, avg(x.AverageArticles)}
		})
	}
	headers := []string{"Code", "Country", "Per day"}
	return title("Highest daily averages") + "\n" + grid(headers, toRows(d.Highest), []int{2}, -1) + "\n" +
		title("Lowest daily averages") + "\n" + grid(headers, toRows(d.Lowest), []int{2}, -1)
}

func renderTimeframe(heading string, tf api.Timeframe) string {
	rows := lo.Map(tf.DailyData, func(d api.DailyCount, _ int) []string {
		return []string{d.Date, count(d.ArticleCount), tone(d.AverageTone)}
	})
	span := fmt.Sprintf("%s to %s: %s articles", shortDate(tf.StartDate), shortDate(tf.EndDate), count(tf.ArticleCount))
	return title(heading) + "\n" + span + "\n" + grid([]string{"Date", "Articles", "Tone"}, rows, []int{1, 2}, 2)
}

func renderComparison(c api.Comparison) string {
	diff := c.Timeframe2.ArticleCount - c.Timeframe1.ArticleCount
	change := "n/a"
	if c.Timeframe1.ArticleCount > 0 {
		change = fmt.Sprintf("%+.1f%%", float64(diff)/float64(c.Timeframe1.ArticleCount)*100)
	}
	return renderTimeframe("Timeframe 1", c.Timeframe1) + "\n" +
		renderTimeframe("Timeframe 2", c.Timeframe2) + "\n" +
		fmt.Sprintf("Change: %+d articles (%s)", diff, change)
}

func renderRecent(as []api.Article) string {
	rows := lo.Map(as, func(a api.Article, _ int) []string {
		flag := lo.Ternary(a.Flagged, "*", "")
		return []string{shortDate(a.Date), a.Title, orDash(a.SourceName), orDash(a.SourceCountry), tone(a.Tone), flag}
	})
	return title("Recent articles") + "\n" + grid([]string{"Date", "Title", "Source", "Country", "Tone", "Flag"}, rows, []int{4}, 4)
}

func renderHistorical(h api.Historical) string {
	timeline := lo.Map(h.Timeline, func(p api.TimelinePoint, _ int) []string {
		return []string{p.Date, count(p.Count), tone(p.Tone)}
	})
	sources := lo.Map(h.TopSources, func(s api.SourceCount, _ int) []string {
		return []string{s.Source, count(s.Count)}
	})
	countries := lo.Map(h.TopCountries, func(c api.CountryCount, _ int) []string {
		return []string{c.Country, count(c.Count)}
	})
	return title("History") + "\n" + grid([]string{"Bucket", "Articles", "Tone"}, timeline, []int{1, 2}, 2) + "\n" +
		title("Top sources") + "\n" + grid([]string{"Source", "Articles"}, sources, []int{1}, -1) + "\n" +
		title("Top countries") + "\n" + grid([]string{"Country", "Articles"}, countries, []int{1}, -1)
}
