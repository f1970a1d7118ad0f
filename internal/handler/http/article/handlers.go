// Package article serves the recent and historical article feeds.
package article

import (
	"net/http"

	"github.com/samber/lo"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/handler/http/dto"
	"mediawatch/internal/handler/http/params"
	"mediawatch/internal/handler/http/respond"
	artUC "mediawatch/internal/usecase/article"
	"mediawatch/pkg/api"
)

type RecentHandler struct {
	Svc *artUC.Service
}

// ServeHTTP 最近の記事
// @Summary      Recent articles
// @Description  Articles of the last days, newest first, at most 500.
// @Tags         articles
// @Produce      json
// @Param        days  query  int  false  "look-back in days"  default(3) minimum(0)
// @Success      200 {array}  api.Article
// @Failure      400 {object} api.Error
// @Failure      500 {object} api.Error
// @Router       /api/v1/articles/recent [get]
func (h RecentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	days, err := params.Int(r, "days", artUC.DefaultRecentDays)
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	articles, err := h.Svc.Recent(r.Context(), days)
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.Articles(articles))
}

type HistoricalHandler struct {
	Svc *artUC.Service
}

// ServeHTTP 期間別の推移
// @Summary      Historical data
// @Description  Article counts bucketed by interval with the 10 busiest sources and countries.
// @Tags         articles
// @Produce      json
// @Param        days      query  int     false  "look-back in days"  default(90) minimum(0)
// @Param        interval  query  string  false  "bucket width"       default(day) Enums(hour, day, week, month)
// @Success      200 {object} api.Historical
// @Failure      400 {object} api.Error
// @Failure      500 {object} api.Error
// @Router       /api/v1/articles/historical [get]
func (h HistoricalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	days, err := params.Int(r, "days", artUC.DefaultHistoryDays)
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	interval, err := entity.ParseInterval(r.URL.Query().Get("interval"))
	if err != nil {
		respond.SafeError(w, err)
		return
	}

	hist, err := h.Svc.Historical(r.Context(), days, interval)
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, api.Historical{
		Timeline: dto.Timeline(hist.Timeline, interval),
		TopSources: lo.Map(hist.TopSources, func(n entity.NamedCount, _ int) api.SourceCount {
			return api.SourceCount{Source: n.Name, Count: n.Count}
		}),
		TopCountries: lo.Map(hist.TopCountries, func(n entity.NamedCount, _ int) api.CountryCount {
			return api.CountryCount{Country: n.Name, Count: n.Count}
		}),
	})
}

// Register mounts the article routes under api.BasePath.
func Register(mux *http.ServeMux, svc *artUC.Service) {
	mux.Handle("GET "+api.BasePath+"/articles/recent", RecentHandler{svc})
	mux.Handle("GET "+api.BasePath+"/articles/historical", HistoricalHandler{svc})
}
