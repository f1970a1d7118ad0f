package source

import (
	"net/http"
	"time"

	"github.com/samber/lo"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/handler/http/dto"
	"mediawatch/internal/handler/http/params"
	"mediawatch/internal/handler/http/respond"
	srcUC "mediawatch/internal/usecase/source"
	"mediawatch/pkg/api"
	"mediawatch/pkg/daterange"
)

type AnalysisHandler struct {
	Svc *srcUC.Service
	Now func() time.Time
}

// ServeHTTP 情報源の分析
// @Summary      Source analysis
// @Description  Articles de-duplicated by title and grouped by (country, author set).
// @Description  country accepts an ISO code or a country name; author "unknown" selects unattributed articles.
// @Tags         sources
// @Accept       json
// @Produce      json
// @Param        body  body  api.AnalysisRequest  false  "filters"
// @Success      200 {array}  api.SourceAnalysis
// @Failure      400 {object} api.Error
// @Failure      500 {object} api.Error
// @Router       /api/v1/sources/analysis [post]
func (h AnalysisHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req api.AnalysisRequest
	if err := params.DecodeJSON(r, &req); err != nil {
		respond.SafeError(w, err)
		return
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	rng, err := daterange.ParseAndValidate(req.StartDate, req.EndDate, now, false)
	if err != nil {
		respond.SafeError(w, err)
		return
	}

	stats, err := h.Svc.Analysis(r.Context(), srcUC.AnalysisInput{
		Range:   rng,
		Country: req.Country,
		Author:  req.Author,
	})
	if err != nil {
		respond.SafeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, lo.Map(stats, func(s entity.SourceStatistics, _ int) api.SourceAnalysis {
		return api.SourceAnalysis{
			Source:          s.Source(),
			Country:         s.CountryName,
			ArticleCount:    s.Count,
			AverageTone:     s.AvgTone,
			LastArticleDate: dto.Timestamp(s.LastArticleAt),
			RecentArticles:  dto.ArticleRefs(s.Recent),
		}
	}))
}
