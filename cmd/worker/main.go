package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"mediawatch/internal/handler/http/respond"
	"mediawatch/internal/infra/adapter/persistence"
	"mediawatch/internal/infra/gdelt"
	workerPkg "mediawatch/internal/infra/worker"
	"mediawatch/internal/observability/logging"
	"mediawatch/internal/usecase/ingest"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := workerPkg.NewWorkerMetrics(nil)
	cfg := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Duration("ingest_timeout", cfg.IngestTimeout),
		slog.Int("max_slots", cfg.MaxSlots),
		slog.Int("concurrency", cfg.Concurrency),
		slog.Bool("require_attribution", cfg.RequireAttribution))

	storeCfg := persistence.ConfigFromEnv()
	storeCfg.Breaker = true
	stores, err := persistence.Open(ctx, storeCfg, logger)
	if err != nil {
		logger.Error("failed to open store", slog.String("error", respond.SanitizeError(err)))
		os.Exit(1)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Error("failed to close store", slog.Any("error", err))
		}
	}()

	topics, err := ingest.NewTopicWatcher(cfg.TopicFile, logger)
	if err != nil {
		logger.Error("failed to load topic", slog.String("path", cfg.TopicFile), slog.Any("error", err))
		os.Exit(1)
	}

	mapper, err := gdelt.LoadMapping(cfg.CountryMappingFile)
	if err != nil {
		logger.Error("failed to load country mapping", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("country mapping loaded", slog.Int("domains", mapper.Len()))

	gdeltCfg := gdelt.DefaultConfig()
	gdeltCfg.BaseURL = cfg.GDELTBaseURL
	client := gdelt.NewClient(gdeltCfg, logger)

	svc := &ingest.Service{
		Source:    client,
		Articles:  stores.Articles,
		Events:    stores.Events,
		Topics:    topics,
		Countries: mapper,
		Config: ingest.Config{
			MaxSlots:           cfg.MaxSlots,
			Concurrency:        cfg.Concurrency,
			RequireAttribution: cfg.RequireAttribution,
		},
		Logger: logger,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := topics.Run(ctx); err != nil {
			logger.Error("topic watcher stopped", slog.Any("error", err))
		}
	}()

	startMetricsServer(ctx, logger, cfg.MetricsPort)

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", cfg.HealthPort), logger)
	healthServer.AddCheck("store", stores.Pinger.Ping)
	healthServer.AddCheck("gdelt", func(context.Context) error {
		if client.Breaker().IsOpen() {
			return errors.New("circuit breaker open")
		}
		return nil
	})
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	runCron(ctx, logger, svc, cfg, workerMetrics, healthServer)
	wg.Wait()
}

// runCron schedules ingest runs until ctx is cancelled.
func runCron(ctx context.Context, logger *slog.Logger, svc *ingest.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	c := cron.New(cron.WithLocation(cfg.Location()))
	if _, err := c.AddFunc(cfg.CronSchedule, func() { runIngestJob(ctx, logger, svc, cfg, metrics) }); err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	// 起動直後に一度実行する
	go runIngestJob(ctx, logger, svc, cfg, metrics)

	<-ctx.Done()
	healthServer.SetReady(false)
	logger.Info("shutdown requested, waiting for running job")
	<-c.Stop().Done()
	logger.Info("worker stopped")
}

// jobMu skips a run while the previous one is still going.
var jobMu sync.Mutex

func runIngestJob(parent context.Context, logger *slog.Logger, svc *ingest.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	if !jobMu.TryLock() {
		logger.Info("ingest already running, skipping")
		return
	}
	defer jobMu.Unlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, cfg.IngestTimeout)
	defer cancel()

	stats, err := svc.Run(ctx)
	var lastSlot time.Time
	if n := len(stats.Slots); n > 0 {
		lastSlot = stats.Slots[n-1].Slot
	}
	metrics.RecordRun(err, time.Since(start), len(stats.Slots), lastSlot)

	if err != nil {
		logger.Error("ingest failed",
			slog.Int("slots_stored", len(stats.Slots)),
			slog.String("error", respond.SanitizeError(err)))
		return
	}
	logger.Info("ingest completed",
		slog.Time("latest_slot", stats.Latest),
		slog.Int("slots", len(stats.Slots)),
		slog.Int("inserted", stats.Inserted()),
		slog.Duration("duration", time.Since(start)))
}
