package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dealerfeed/internal/cache"
	"dealerfeed/internal/config"
	"dealerfeed/internal/handler"
	"dealerfeed/internal/hub"
	"dealerfeed/internal/ingestor"
	"dealerfeed/internal/logging"
	"dealerfeed/internal/metrics"
	"dealerfeed/internal/middleware"
	"dealerfeed/internal/store"
	"dealerfeed/pkg/dealerapi"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting dealerfeed server",
		"version", version,
		"log_level", cfg.LogLevel.String(),
		"http_addr", cfg.HTTPAddr,
		"engine_types", cfg.FeedEngineTypes,
		"redis_enabled", cfg.RedisEnabled,
	)

	layers := []cache.SnapshotCache{}
	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, logger)
		if err != nil {
			logger.Warn("redis unavailable, continuing with disk cache only", "error", err)
		} else {
			defer redisCache.Close()
			layers = append(layers, redisCache)
		}
	}
	diskCache := cache.NewDiskCache(cfg.CacheDir, logger)
	layers = append(layers, diskCache)
	snapshots := cache.NewLayered(logger, layers...)

	catalogStore := store.New()
	wsHub := hub.NewHub(logger)
	wsHub.OnClientCount(func(n int) { metrics.WebSocketClients.Set(float64(n)) })

	apiClient := dealerapi.New(cfg.FeedURL, cfg.FeedAPIKey, cfg.FeedTimeout)
	ing := ingestor.New(apiClient, catalogStore, wsHub, snapshots, ingestor.Options{
		EngineTypes:  cfg.FeedEngineTypes,
		VisibleOnly:  cfg.FeedVisibleOnly,
		Limit:        cfg.FeedLimit,
		Sort:         cfg.FeedSort,
		PollInterval: cfg.PollInterval,
	}, logger)

	stats := handler.NewStats()
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerWindow, cfg.RateLimitWindow, cfg.RateLimitWhitelist,
		func(string) {
			stats.IncRateLimitBlocked()
			metrics.RateLimited.Inc()
		}, logger)

	router := handler.NewRouter(handler.Routes{
		HTTP:     handler.NewHTTPHandler(catalogStore, ing, cfg.DefaultPageSize, cfg.MaxPageSize),
		WS:       handler.NewWSHandler(wsHub, catalogStore, stats, logger),
		Health:   handler.NewHealthHandler(ing, catalogStore),
		Stats:    handler.NewStatsHandler(stats, catalogStore, limiter, version),
		Metrics:  promhttp.Handler(),
		Limiter:  limiter,
		Counters: stats,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go wsHub.Run(ctx)
	go limiter.Run(ctx)
	go ing.Run(ctx)

	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
