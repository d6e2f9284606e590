package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/i474232898/climate-dashboard/internal/api/http"
	"github.com/i474232898/climate-dashboard/internal/app"
	"github.com/i474232898/climate-dashboard/internal/config"
	"github.com/i474232898/climate-dashboard/internal/logging"
	"github.com/i474232898/climate-dashboard/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.DotEnvLoaded {
		logger.Info("no .env file loaded, using process environment")
	}
	if cfg.WeatherbitAPIKey == "" {
		logger.Warn("WEATHERBIT_API_KEY is not set; weather requests will fail")
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise application", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close store", zap.Error(err))
		}
	}()

	// Keep caches warm between requests.
	sched := scheduler.New(cfg.RefreshInterval, 2*cfg.HTTPTimeout, logger.Named("scheduler"), a.Warmers()...)
	if err := sched.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	server := httpapi.NewServer(httpapi.Deps{
		Climate:   a.Climate,
		Weather:   a.Weather,
		Metrics:   a.Metrics,
		Logger:    logger.Named("http"),
		AccessLog: true,
	})

	go func() {
		logger.Info("listening", zap.String("port", cfg.Port), zap.String("store", string(cfg.StoreBackend)))
		if err := server.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
}
