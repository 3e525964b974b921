// Package main provides the entry point for the LinkShrink URL shortener.
//
//	@title			LinkShrink API
//	@version		1.0.0
//	@description	A URL shortener with asynchronous click analytics.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Authorization header. Format: "Bearer {token}"
package main

import (
	"context"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"linkshrink-backend/internal/analytics"
	"linkshrink-backend/internal/auth"
	"linkshrink-backend/internal/config"
	"linkshrink-backend/internal/database"
	httpHandler "linkshrink-backend/internal/handler/http"
	"linkshrink-backend/internal/queue"
	"linkshrink-backend/internal/repository/postgres"
	"linkshrink-backend/internal/service"
	"linkshrink-backend/internal/stats"
	"linkshrink-backend/pkg/logger"
	"linkshrink-backend/pkg/useragent"

	_ "linkshrink-backend/docs" // swagger docs
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env, &logger.FileConfig{
		Path:       cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting linkshrink backend", zap.String("env", cfg.Env))

	// Database
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	storage := postgres.New(db, log)

	// User-Agent parser for click analytics
	uaParser, err := useragent.NewParser(cfg.Analytics.UARegexesPath)
	if err != nil {
		log.Warn("failed to initialize User-Agent parser, using heuristics", zap.Error(err))
		uaParser = nil
	}

	// Click queue: Redis-backed when configured, in-process otherwise
	var clickQueue queue.Queue
	if cfg.Redis.Enabled {
		redisQueue, err := queue.NewRedisQueue(&cfg.Redis, log)
		if err != nil {
			log.Fatal("failed to start redis click queue", zap.Error(err))
		}
		clickQueue = redisQueue
	} else {
		clickQueue = queue.NewMemoryQueue(cfg.Analytics.BufferSize, log)
	}

	// Click recorder workers
	recorder := analytics.NewRecorder(storage, clickQueue, uaParser, log, &cfg.Analytics)
	if err := recorder.Start(); err != nil {
		log.Fatal("failed to start click recorder", zap.Error(err))
	}

	// Daily stats aggregation
	aggregator := stats.NewAggregator(storage, log, cfg.Analytics.AggregationSpec)
	if err := aggregator.Start(); err != nil {
		log.Fatal("failed to start stats aggregator", zap.Error(err))
	}

	// Services and HTTP server
	shortener := service.NewShortener(storage, &cfg.URLShortener)
	jwtService := auth.NewJWTService(&cfg.Auth)
	passwordService := auth.NewPasswordService(cfg.Auth.BcryptCost)

	apiServer := httpHandler.NewServer(
		storage,
		shortener,
		clickQueue,
		jwtService,
		passwordService,
		log,
		cfg.URLShortener.BaseURL,
	)

	httpServer := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      apiServer.SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down linkshrink backend...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	// Drain the click queue before letting the process exit.
	if err := recorder.Stop(); err != nil {
		log.Error("failed to stop click recorder", zap.Error(err))
	}

	aggregator.Stop()
}
