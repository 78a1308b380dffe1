// Package main implements the entry point for the Revisio API server, which
// tracks a learner's progress through flashcard, multiple-choice and
// table-exercise series.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/revisio/revisio-api/internal/config"
	"github.com/revisio/revisio-api/internal/platform/logger"
	"github.com/revisio/revisio-api/internal/platform/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// run loads configuration, wires the application and serves HTTP until a
// shutdown signal arrives.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("failed to close database", slog.String("error", closeErr.Error()))
		}
	}()

	if err := postgres.RunMigrations(db); err != nil {
		return err
	}
	appLogger.Info("database migrations applied")

	app := newApplication(cfg, appLogger, db)
	return app.serve(context.Background())
}
