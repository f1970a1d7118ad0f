package stats

import (
	"net/http"

	statsUC "mediawatch/internal/usecase/stats"
	"mediawatch/pkg/api"
)

// Register mounts the statistics routes under api.BasePath.
func Register(mux *http.ServeMux, svc *statsUC.Service, now Clock) {
	mux.Handle("GET  "+api.BasePath+"/stats/global", GlobalHandler{svc})
	mux.Handle("GET  "+api.BasePath+"/stats/daily-averages", DailyAveragesHandler{svc})
	mux.Handle("POST "+api.BasePath+"/trends/compare", CompareHandler{svc})

	mux.Handle("GET  "+api.BasePath+"/countries/top", TopCountriesHandler{Svc: svc, Now: now})
	mux.Handle("GET  "+api.BasePath+"/countries/{code}", CountryHandler{svc})
	mux.Handle("GET  "+api.BasePath+"/countries/{code}/time-stats", TimeStatsHandler{Svc: svc, Now: now})
	mux.Handle("GET  "+api.BasePath+"/continents", ContinentsHandler{Svc: svc, Now: now})
}
