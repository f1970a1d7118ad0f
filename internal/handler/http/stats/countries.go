package stats

import (
	"net/http"

	"mediawatch/internal/domain/entity"
	"mediawatch/internal/handler/http/dto"
	"mediawatch/internal/handler/http/params"
	"mediawatch/internal/handler/http/respond"
	statsUC "mediawatch/internal/usecase/stats"
	"mediawatch/pkg/api"
)

type TopCountriesHandler struct {
	Svc *statsUC.Service
	Now Clock
}

// ServeHTTP 記事数上位の国
// @Summary      Top countries
// @Description  Countries ordered by article count within an optional date range.
// @Tags         countries
// @Produce      json
// @Param        limit       query  int     false  "number of countries"  default(10) minimum(1) maximum(250)
// @Param        start_date  query  string  false  "YYYY-MM-DD or RFC 3339"
// @Param        end_date    query  string  false  "YYYY-MM-DD or RFC 3339"
// @Success      200 {array}  api.Country
// @Failure      400 {object} api.Error
// @Failure      500 {object} api.Error
// @Router       /api/v1/countries/top [get]
func (h TopCountriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit, err := params.Int(r, "limit", statsUC.DefaultTopLimit)
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	rng, err := params.DateRange(r, h.Now.now())
	if err != nil {
		respond.SafeError(w, err)
		return
	}

	countries, err := h.Svc.TopCountries(r.Context(), limit, rng)
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.Countries(countries))
}

type CountryHandler struct {
	Svc *statsUC.Service
}

// ServeHTTP 国の詳細
// @Summary      Country details
// @Tags         countries
// @Produce      json
// @Param        code  path  string  true  "ISO 3166 alpha-2 code"
// @Success      200 {object} api.Country
// @Failure      404 {object} api.Error
// @Failure      500 {object} api.Error
// @Router       /api/v1/countries/{code} [get]
func (h CountryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.CountryDetails(r.Context(), r.PathValue("code"))
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.Country(*c))
}

type TimeStatsHandler struct {
	Svc *statsUC.Service
	Now Clock
}

// ServeHTTP 国の日別推移
// @Summary      Country time statistics
// @Description  Daily timeline, de-duplicated totals and the 10 most recent articles of one country.
// @Tags         countries
// @Produce      json
// @Param        code        path   string  true   "ISO 3166 alpha-2 code"
// @Param        start_date  query  string  false  "YYYY-MM-DD or RFC 3339"
// @Param        end_date    query  string  false  "YYYY-MM-DD or RFC 3339"
// @Success      200 {object} api.CountryTimeStats
// @Failure      400 {object} api.Error
// @Failure      404 {object} api.Error
// @Failure      500 {object} api.Error
// @Router       /api/v1/countries/{code}/time-stats [get]
func (h TimeStatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rng, err := params.DateRange(r, h.Now.now())
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	s, err := h.Svc.CountryTimeStats(r.Context(), r.PathValue("code"), rng)
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, api.CountryTimeStats{
		Code:         s.Code,
		Name:         s.Name,
		ArticleCount: s.ArticleCount,
		AverageTone:  s.AvgTone,
		TimelineData: dto.Timeline(s.Timeline, entity.IntervalDay),
		Articles:     dto.ArticleRefs(s.Articles),
	})
}

type ContinentsHandler struct {
	Svc *statsUC.Service
	Now Clock
}

// ServeHTTP 大陸別集計
// @Summary      Continents
// @Description  Known countries grouped by continent with article-weighted tone.
// @Tags         countries
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD or RFC 3339"
// @Param        end_date    query  string  false  "YYYY-MM-DD or RFC 3339"
// @Success      200 {array}  api.Continent
// @Failure      400 {object} api.Error
// @Failure      500 {object} api.Error
// @Router       /api/v1/continents [get]
func (h ContinentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rng, err := params.DateRange(r, h.Now.now())
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	cs, err := h.Svc.Continents(r.Context(), rng)
	if err != nil {
		respond.SafeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.Continents(cs))
}
