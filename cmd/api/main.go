package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/mpd/internal/api"
	"github.com/saturnino-fabrica-de-software/mpd/internal/config"
	"github.com/saturnino-fabrica-de-software/mpd/internal/database"
	"github.com/saturnino-fabrica-de-software/mpd/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting MPD API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.Int("fanout_workers", cfg.WebhookFanoutWorkers),
		slog.Duration("webhook_timeout", cfg.WebhookTimeout()),
	)

	metrics.Register()

	// Database
	poolCfg := database.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	if poolCfg.MinConns > poolCfg.MaxConns {
		poolCfg.MinConns = poolCfg.MaxConns
	}

	pool, err := database.NewPool(context.Background(), poolCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		version, err := database.MigrateUp(database.SQLDB(pool), pool.Config().ConnConfig.Database)
		if err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		logger.Info("migrations applied", slog.Uint64("version", uint64(version)))
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Delivery gauges
	aggregator := metrics.NewAggregator(metrics.NewRepository(pool), logger, cfg.MetricsInterval, cfg.MetricsWindow)
	go aggregator.Start(ctx)
	defer aggregator.Stop()

	// Setup router
	router := api.NewRouter(logger, api.OptionsFromConfig(cfg), api.NewDependencies(pool, cfg, logger))
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")

	// Fan-outs ignore request cancellation and run to completion; the
	// deadline below bounds how long shutdown waits for them
	done := make(chan error, 1)
	go func() { done <- router.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	case <-time.After(cfg.WebhookTimeout() + 5*time.Second):
		logger.Warn("shutdown timed out")
	}

	logger.Info("server stopped")

	return nil
}
