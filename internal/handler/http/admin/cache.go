// Package admin serves the operator endpoints under /api/v1/admin.
package admin

import (
	"log/slog"
	"net/http"

	"mediawatch/internal/handler/http/auth"
	"mediawatch/internal/handler/http/respond"
	"mediawatch/internal/repository"
	"mediawatch/pkg/api"
)

// Purger drops cached responses and reports how many there were.
type Purger interface {
	Purge() int
}

// CacheRefreshHandler empties the response cache and re-reads the store
// snapshot when the backend has one.
type CacheRefreshHandler struct {
	Cache    Purger
	Reloader repository.Reloader
	Logger   *slog.Logger
}

// ServeHTTP キャッシュ再読込
// @Summary      Refresh caches
// @Description  Purges the response cache and reloads the article snapshot.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.CacheRefresh
// @Failure      401 {object} api.Error
// @Failure      403 {object} api.Error
// @Failure      500 {object} api.Error
// @Router       /admin/cache/refresh [post]
func (h CacheRefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// 再読み込みが終わってからキャッシュを捨てる
	var out api.CacheRefresh
	if h.Reloader != nil {
		if err := h.Reloader.Reload(r.Context()); err != nil {
			respond.SafeError(w, err)
			return
		}
		out.Reloaded = true
	}
	if h.Cache != nil {
		out.Purged = h.Cache.Purge()
	}

	user, _ := auth.UserFromContext(r.Context())
	logger.Info("cache refreshed",
		slog.String("user", user),
		slog.Int("purged", out.Purged),
		slog.Bool("reloaded", out.Reloaded))
	respond.JSON(w, http.StatusOK, out)
}

// Register mounts the admin routes behind RequireAdmin.
func Register(mux *http.ServeMux, h CacheRefreshHandler, secret []byte) {
	guard := auth.RequireAdmin(secret, h.Logger)
	mux.Handle("POST /api/v1/admin/cache/refresh", guard(h))
}
