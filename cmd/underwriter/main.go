package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/Underwriter/internal/api"
	"github.com/MikeSquared-Agency/Underwriter/internal/cache"
	"github.com/MikeSquared-Agency/Underwriter/internal/config"
	"github.com/MikeSquared-Agency/Underwriter/internal/hermes"
	"github.com/MikeSquared-Agency/Underwriter/internal/present"
	"github.com/MikeSquared-Agency/Underwriter/internal/simulation"
	"github.com/MikeSquared-Agency/Underwriter/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Policy registry (optional)
	pol := cfg.Policy
	var policyStore store.PolicyStore
	if cfg.Database.URL != "" {
		db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		pol, err = store.Resolve(ctx, db, cfg.Database.PolicyVersion)
		if err != nil {
			logger.Error("failed to load policy", "version", cfg.Database.PolicyVersion, "error", err)
			os.Exit(1)
		}
		policyStore = db
		logger.Info("connected to policy registry")
	}

	engine, err := simulation.NewEngine(pol)
	if err != nil {
		logger.Error("invalid policy", "error", err)
		os.Exit(1)
	}
	engines := api.NewEngineSource(engine)
	logger.Info("policy loaded", "version", pol.Version)

	presenter, err := present.New()
	if err != nil {
		logger.Error("failed to load message catalog", "error", err)
		os.Exit(1)
	}

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	if hermesClient != nil && policyStore != nil {
		if err := api.WatchPolicy(hermesClient, policyStore, engines, logger); err != nil {
			logger.Warn("policy hot reload disabled", "error", err)
		}
	}

	// Report cache (optional)
	var reportCache cache.ReportCache
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("failed to connect to redis, running without report cache", "error", err)
		} else {
			reportCache = cache.NewRedisCache(rdb, cfg.CacheTTL())
			defer rdb.Close()
			logger.Info("connected to redis", "ttl", cfg.CacheTTL())
		}
	}

	// API server
	router := api.NewRouter(api.Deps{
		Engines:   engines,
		Presenter: presenter,
		Cache:     reportCache,
		Hermes:    hermesClient,
		Store:     policyStore,
		RateLimit: cfg.Server.RateLimitPerMin,
		Logger:    logger,
	})
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
