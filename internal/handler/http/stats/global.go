// Package stats serves the country, continent and trend statistics.
package stats

import (
	"net/http"
	"time"

	"github.com/samber/lo"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/handler/http/dto"
	"mediawatch/internal/handler/http/respond"
	statsUC "mediawatch/internal/usecase/stats"
	"mediawatch/pkg/api"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

type GlobalHandler struct {
	Svc *statsUC.Service
}

// ServeHTTP グローバル統計
// @Summary      Global statistics
// @Description  Total article count, per-country aggregates, the top 10 countries and continent totals.
// @Tags         stats
// @Produce      json
// @Success      200 {object} api.GlobalStats
// @Failure      500 {object} api.Error
// @Router       /api/v1/stats/global [get]
func (h GlobalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s, err := h.Svc.GlobalStats(r.Context())
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, api.GlobalStats{
		TotalArticles:     s.TotalArticles,
		Countries:         dto.Countries(s.Countries),
		AveragePerCountry: s.AveragePerCountry,
		TopCountries:      dto.Countries(s.TopCountries),
		Continents:        dto.Continents(s.Continents),
	})
}

type DailyAveragesHandler struct {
	Svc *statsUC.Service
}

// ServeHTTP 国別の1日平均記事数
// @Summary      Daily averages
// @Description  Articles per active day for each country: the 7 highest and the 7 lowest.
// @Tags         stats
// @Produce      json
// @Success      200 {object} api.DailyAverages
// @Failure      500 {object} api.Error
// @Router       /api/v1/stats/daily-averages [get]
func (h DailyAveragesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	avgs, err := h.Svc.DailyAverages(r.Context())
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	conv := func(d entity.DailyAverage, _ int) api.DailyAverage {
		return api.DailyAverage{Code: d.Code, Country: d.Name, AverageArticles: d.AverageArticles}
	}
	respond.JSON(w, http.StatusOK, api.DailyAverages{
		Highest: lo.Map(avgs.Highest, conv),
		Lowest:  lo.Map(avgs.Lowest, conv),
	})
}
