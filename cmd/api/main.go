package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"mediawatch/internal/common/pagination"
	"mediawatch/internal/handler/http/respond"
	"mediawatch/internal/infra/adapter/persistence"
	"mediawatch/internal/observability/logging"
	"mediawatch/internal/observability/tracing"
	"mediawatch/pkg/config"

	artUC "mediawatch/internal/usecase/article"
	srcUC "mediawatch/internal/usecase/source"
	statsUC "mediawatch/internal/usecase/stats"

	hhttp "mediawatch/internal/handler/http"
	hadmin "mediawatch/internal/handler/http/admin"
	harticle "mediawatch/internal/handler/http/article"
	hauth "mediawatch/internal/handler/http/auth"
	"mediawatch/internal/handler/http/middleware"
	"mediawatch/internal/handler/http/requestid"
	hsrc "mediawatch/internal/handler/http/source"
	hstats "mediawatch/internal/handler/http/stats"

	_ "mediawatch/docs" // swagger docs
)

// @title           mediawatch API
// @version         1.0
// @description     GDELT をもとにした国別・大陸別・ソース別の報道量統計 API
// @description     期間比較、ソース分析、最新記事の取得を提供します。

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description admin ロールの JWT。ヘッダーに "Bearer {token}" 形式で指定してください。

// serverComponents bundles what runServer needs besides the handler.
type serverComponents struct {
	Handler     http.Handler
	RateLimiter *middleware.IPRateLimiter
	IdleTTL     time.Duration
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	secret := loadJWTSecret(logger)
	version := config.GetEnvString("VERSION", "dev")

	shutdownTracing := initTracing(logger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	stores, err := persistence.Open(context.Background(), persistence.ConfigFromEnv(), logger)
	if err != nil {
		logger.Error("failed to open store", slog.String("error", respond.SanitizeError(err)))
		os.Exit(1)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Error("failed to close store", slog.Any("error", err))
		}
	}()

	components := setupServer(logger, stores, secret, version)
	runServer(logger, components, version)
}

// loadJWTSecret returns nil when JWT_SECRET is unset; the admin routes are
// then not mounted. A weak secret aborts startup.
func loadJWTSecret(logger *slog.Logger) []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Warn("JWT_SECRET is not set, admin endpoints are disabled")
		return nil
	}
	if err := hauth.ValidateSecret(secret); err != nil {
		logger.Error("JWT_SECRET validation failed", slog.Any("error", err))
		os.Exit(1)
	}
	return []byte(secret)
}

func initTracing(logger *slog.Logger) func(context.Context) error {
	if !config.GetEnvBool("TRACING_ENABLED", false) {
		return func(context.Context) error { return nil }
	}
	ratio := config.GetEnvFloat("TRACING_SAMPLE_RATIO", 1)
	logger.Info("tracing enabled", slog.Float64("sample_ratio", ratio))
	return tracing.Init(ratio)
}

// setupServer wires the services, the routes and the middleware chain.
func setupServer(logger *slog.Logger, stores *persistence.Stores, secret []byte, version string) *serverComponents {
	now := time.Now

	statsSvc := &statsUC.Service{Repo: stores.Articles}
	srcSvc := &srcUC.Service{Repo: stores.Articles}
	artSvc := &artUC.Service{Repo: stores.Articles, Now: now}

	cache := middleware.NewResponseCache(
		config.GetEnvDuration("RESPONSE_CACHE_TTL", 5*time.Minute),
		config.GetEnvInt("RESPONSE_CACHE_MAX_KEYS", 1000),
	)

	mux := http.NewServeMux()

	// 統計 API
	hstats.Register(mux, statsSvc, now)
	hsrc.Register(mux, srcSvc, pagination.LoadFromEnv(), logger, now)
	harticle.Register(mux, artSvc)

	if secret != nil {
		hadmin.Register(mux, hadmin.CacheRefreshHandler{
			Cache:    cache,
			Reloader: stores.Reloader,
			Logger:   logger,
		}, secret)
	}

	// 運用エンドポイント
	mux.Handle("GET /health", &hhttp.HealthHandler{Pinger: stores.Pinger, DB: stores.DB, Backend: stores.Backend, Version: version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{Pinger: stores.Pinger})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)
	mux.Handle("GET /{$}", hhttp.WelcomeHandler{Version: version})

	rlCfg := middleware.LoadRateLimitConfig()
	proxyCfg, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		logger.Error("invalid trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}
	limiter := middleware.NewIPRateLimiter(rlCfg, middleware.NewIPExtractor(proxyCfg))
	logger.Info("rate limiting configured",
		slog.Bool("enabled", rlCfg.Enabled),
		slog.Float64("rps", rlCfg.RPS),
		slog.Int("burst", rlCfg.Burst),
		slog.Bool("trust_proxy", proxyCfg.Enabled))

	corsCfg := middleware.LoadCORSConfig()
	corsCfg.Logger = logger
	logger.Info("CORS configured",
		slog.Any("allowed_origins", corsCfg.AllowedOrigins),
		slog.Any("allowed_methods", corsCfg.AllowedMethods),
		slog.Int("max_age", corsCfg.MaxAge))

	// Order: CORS → Request ID → IP Rate Limit → Recovery → Tracing → Logging →
	// Body Limit → Metrics → Response Cache
	handler := hhttp.Chain(mux,
		middleware.CORS(corsCfg),
		requestid.Middleware,
		limiter.Middleware,
		hhttp.Recover(logger),
		tracing.Middleware,
		hhttp.Logging(logger),
		hhttp.LimitRequestBody(hhttp.DefaultMaxBodyBytes),
		hhttp.MetricsMiddleware,
		cache.Middleware,
	)

	return &serverComponents{
		Handler:     handler,
		RateLimiter: limiter,
		IdleTTL:     rlCfg.IdleTTL,
	}
}

// runServer serves until SIGINT/SIGTERM, then shuts down gracefully.
func runServer(logger *slog.Logger, components *serverComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if components.RateLimiter != nil {
		interval := components.IdleTTL / 2
		if interval < time.Minute {
			interval = time.Minute
		}
		go components.RateLimiter.RunCleanup(ctx, interval, logger)
		logger.Info("rate limit cleanup started", slog.Duration("interval", interval))
	}

	addr := ":" + config.GetEnvString("PORT", "8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
