package source

import (
	"log/slog"
	"net/http"
	"time"

	"mediawatch/internal/common/pagination"
	srcUC "mediawatch/internal/usecase/source"
	"mediawatch/pkg/api"
)

func Register(mux *http.ServeMux, svc *srcUC.Service, paginationCfg pagination.Config, logger *slog.Logger, now func() time.Time) {
	mux.Handle("GET  "+api.BasePath+groupedEndpoint, GroupedHandler{
		Svc:           svc,
		PaginationCfg: paginationCfg,
		Logger:        logger,
		Now:           now,
	})
	mux.Handle("POST "+api.BasePath+"/sources/analysis", AnalysisHandler{Svc: svc, Now: now})
}
