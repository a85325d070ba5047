package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/insightlab/insightpilot-go/internal/api"
	"github.com/insightlab/insightpilot-go/internal/api/handlers"
	"github.com/insightlab/insightpilot-go/internal/cache"
	"github.com/insightlab/insightpilot-go/internal/config"
	"github.com/insightlab/insightpilot-go/internal/dataset"
	"github.com/insightlab/insightpilot-go/internal/insight"
	"github.com/insightlab/insightpilot-go/internal/logging"
	"github.com/insightlab/insightpilot-go/internal/services"
)

func main() {
	// Load .env if present; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	// Optional Redis-backed result cache.
	var redisClient *redis.Client
	var resultCache *cache.ResultCache
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable, serving without result cache")
			redisClient = nil
		} else {
			resultCache = cache.NewResultCache(redisClient, time.Duration(cfg.Cache.TTLMinutes)*time.Minute, logger)
			logger.Info("result cache enabled")
		}
		cancel()
		if redisClient != nil {
			defer func() { _ = redisClient.Close() }()
		}
	}

	store := dataset.NewStore()
	if cfg.Dataset.LoadSample {
		snap := store.Replace(dataset.GenerateSample(cfg.Dataset.SampleDays, dataset.Midnight(time.Now()), cfg.Dataset.SampleSeed))
		logger.WithField("version", snap.Version).Info("sample dataset loaded at startup")
	}

	summary := services.NewSummaryService(logger)
	kpis := services.NewKPIService(cfg.Analytics, logger)
	trends := services.NewTrendService(logger)
	forecasts := services.NewForecastService(cfg.Analytics, trends, logger)
	anomalies := services.NewAnomalyService(cfg.Analytics, trends, summary, logger)
	segments := services.NewSegmentationService(cfg.Analytics, logger)

	// Optional Gemini insight provider; without it the insight engine
	// answers locally.
	var provider services.InsightProvider
	if cfg.Insight.GeminiAPIKey != "" {
		gemini, err := insight.NewGeminiProvider(context.Background(), cfg.Insight.GeminiAPIKey, cfg.Insight.Model)
		if err != nil {
			logger.WithError(err).Warn("gemini provider unavailable, falling back to local insights")
		} else {
			provider = gemini
			defer func() { _ = gemini.Close() }()
			logger.WithField("model", cfg.Insight.Model).Info("gemini insight provider enabled")
		}
	}
	insights := services.NewInsightService(provider, summary, kpis, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	api.SetupRoutes(router, &api.Handlers{
		Health:    handlers.NewHealthHandler(store, redisClient),
		Dataset:   handlers.NewDatasetHandler(store, summary, cfg.Dataset, logger),
		Analytics: handlers.NewAnalyticsHandler(store, kpis, trends, resultCache, logger),
		Forecast:  handlers.NewForecastHandler(store, forecasts, resultCache, logger),
		Anomaly:   handlers.NewAnomalyHandler(store, anomalies, resultCache, logger),
		Segment:   handlers.NewSegmentHandler(store, segments, logger),
		Insight:   handlers.NewInsightHandler(store, insights, logger),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("server forced to shutdown")
	}

	logger.Info("server exited")
}
