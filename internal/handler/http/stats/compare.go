package stats

import (
	"fmt"
	"net/http"

	"github.com/samber/lo"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/handler/http/dto"
	"mediawatch/internal/handler/http/params"
	"mediawatch/internal/handler/http/respond"
	statsUC "mediawatch/internal/usecase/stats"
	"mediawatch/pkg/api"
	"mediawatch/pkg/daterange"
)

type CompareHandler struct {
	Svc *statsUC.Service
}

// ServeHTTP 2期間の比較
// @Summary      Compare timeframes
// @Description  Daily article counts of two closed date ranges.
// @Tags         trends
// @Accept       json
// @Produce      json
// @Param        body  body  api.CompareRequest  true  "the two timeframes"
// @Success      200 {object} api.Comparison
// @Failure      400 {object} api.Error
// @Failure      500 {object} api.Error
// @Router       /api/v1/trends/compare [post]
func (h CompareHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req api.CompareRequest
	if err := params.DecodeJSON(r, &req); err != nil {
		respond.SafeError(w, err)
		return
	}

	first, err := parseTimeframe("timeframe1", req.Timeframe1)
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	second, err := parseTimeframe("timeframe2", req.Timeframe2)
	if err != nil {
		respond.SafeError(w, err)
		return
	}

	cmp, err := h.Svc.ComparePeriods(r.Context(), first, second)
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, api.Comparison{
		Timeframe1: timeframe(cmp.First),
		Timeframe2: timeframe(cmp.Second),
	})
}

func parseTimeframe(field string, dr api.DateRange) (daterange.Range, error) {
	r, err := daterange.Parse(dr.StartDate, dr.EndDate)
	if err != nil {
		return daterange.Range{}, fmt.Errorf("%s: %w", field, err)
	}
	return r, nil
}

func timeframe(tf entity.Timeframe) api.Timeframe {
	return api.Timeframe{
		StartDate:    dto.Day(tf.Start),
		EndDate:      dto.Day(tf.End),
		ArticleCount: tf.ArticleCount,
		DailyData: lo.Map(tf.Daily, func(p entity.TimelinePoint, _ int) api.DailyCount {
			return api.DailyCount{Date: dto.Day(p.Date), ArticleCount: p.Count, AverageTone: p.AvgTone}
		}),
	}
}
