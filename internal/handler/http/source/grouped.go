// Package source serves the author and country breakdowns.
package source

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/lo"

	"mediawatch/internal/common/pagination"
	"mediawatch/internal/domain/entity"
	"mediawatch/internal/handler/http/dto"
	"mediawatch/internal/handler/http/params"
	"mediawatch/internal/handler/http/respond"
	"mediawatch/internal/observability/logging"
	srcUC "mediawatch/internal/usecase/source"
	"mediawatch/pkg/api"
)

const groupedEndpoint = "/sources/grouped"

type GroupedHandler struct {
	Svc           *srcUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
	Now           func() time.Time
}

// ServeHTTP 著者別・国別のグループ一覧
// @Summary      Grouped sources
// @Description  Articles grouped by author or by source country, largest group first, one page at a time.
// @Tags         sources
// @Produce      json
// @Param        group_by    query  string  false  "author or country"  default(author) Enums(author, country)
// @Param        start_date  query  string  false  "YYYY-MM-DD or RFC 3339"
// @Param        end_date    query  string  false  "YYYY-MM-DD or RFC 3339"
// @Param        page        query  int     false  "1-based page"  default(1) minimum(1)
// @Param        limit       query  int     false  "page size"     default(20) minimum(1) maximum(100)
// @Success      200 {object} api.GroupedSources
// @Failure      400 {object} api.Error
// @Failure      500 {object} api.Error
// @Router       /api/v1/sources/grouped [get]
func (h GroupedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.logger())

	field, err := entity.ParseGroupField(r.URL.Query().Get("group_by"))
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	page, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		logger.Warn("invalid pagination parameters", slog.String("error", err.Error()))
		pagination.RecordError(groupedEndpoint, "validation")
		respond.SafeError(w, err)
		return
	}
	rng, err := params.DateRange(r, h.now())
	if err != nil {
		respond.SafeError(w, err)
		return
	}

	result, err := h.Svc.Grouped(ctx, field, rng, page)
	if err != nil {
		pagination.RecordError(groupedEndpoint, "repository")
		respond.SafeError(w, err)
		return
	}

	logger.Debug("grouped sources",
		slog.String("group_by", string(field)),
		slog.Int("page", page.Page),
		slog.Int("limit", page.Limit),
		slog.Int64("total", result.Pagination.Total))
	pagination.RecordRequest(groupedEndpoint, http.StatusOK, page.Page)

	respond.JSON(w, http.StatusOK, api.GroupedSources{
		Data: lo.Map(result.Data, func(g entity.Group, _ int) api.GroupedSource {
			return api.GroupedSource{
				Name:            g.Name,
				ArticleCount:    g.Count,
				AverageTone:     g.AvgTone,
				LastArticleDate: dto.Timestamp(g.LastArticleAt),
				RecentArticles:  dto.ArticleRefs(g.Recent),
			}
		}),
		Pagination: api.Pagination{
			Total:      result.Pagination.Total,
			Page:       result.Pagination.Page,
			Limit:      result.Pagination.Limit,
			TotalPages: result.Pagination.TotalPages,
		},
	})
}

func (h GroupedHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func (h GroupedHandler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}
