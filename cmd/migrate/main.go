package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/saturnino-fabrica-de-software/mpd/internal/config"
	"github.com/saturnino-fabrica-de-software/mpd/internal/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	action := flag.String("action", "up", "Migration action: up, down, version, force")
	version := flag.Int("version", 0, "Target version (for force action)")
	steps := flag.Int("steps", 1, "Migrations to roll back (for down action)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)

	poolCfg := database.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = 2
	poolCfg.MinConns = 0

	pool, err := database.NewPool(context.Background(), poolCfg)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer pool.Close()

	dbName := pool.Config().ConnConfig.Database
	logger.Info("connected to database", slog.String("database", dbName))

	// golang-migrate needs database/sql; share the pool's connections
	migrator, err := database.NewMigrator(database.SQLDB(pool), dbName)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() { _ = migrator.Close() }()

	switch *action {
	case "up":
		if err := migrator.Up(); err != nil {
			return fmt.Errorf("migration up failed: %w", err)
		}

	case "down":
		logger.Warn("rolling back migrations", slog.Int("steps", *steps))
		if err := migrator.Down(*steps); err != nil {
			return fmt.Errorf("migration down failed: %w", err)
		}

	case "version":
		// reported below

	case "force":
		if *version == 0 {
			return errors.New("version flag is required for force action")
		}
		logger.Warn("forcing migration version", slog.Int("version", *version))
		if err := migrator.Force(*version); err != nil {
			return fmt.Errorf("force migration failed: %w", err)
		}

	default:
		return fmt.Errorf("invalid action: %s (use: up, down, version, force)", *action)
	}

	v, dirty, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}
	logger.Info("migration state",
		slog.String("action", *action),
		slog.Uint64("version", uint64(v)),
		slog.Bool("dirty", dirty),
	)

	return nil
}
