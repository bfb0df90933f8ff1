// Package main implements the entry point for the CallHound API server,
// which manages users' uploaded call recordings and drives their
// transcription through a remote provider.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/callhound/callhound-api/internal/config"
	"github.com/callhound/callhound-api/internal/platform/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "run pending database migrations and exit")
	flag.Parse()

	if err := run(*migrateOnly); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run loads configuration, wires dependencies and either runs migrations
// or starts the HTTP server.
func run(migrateOnly bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(logger.Config{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if err := runMigrations(db, appLogger); err != nil {
		closeDatabase(db, appLogger)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if migrateOnly {
		closeDatabase(db, appLogger)
		appLogger.Info("Migrations applied, exiting")
		return nil
	}

	ctx := context.Background()

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		closeDatabase(db, appLogger)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Run(ctx); err != nil {
		return err
	}

	return nil
}

// closeDatabase closes the connection pool, logging rather than failing.
func closeDatabase(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Error("Error closing database connection", slog.String("error", err.Error()))
	}
}
