package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/callhound/callhound-api/internal/config"
	"github.com/callhound/callhound-api/internal/platform/postgres"
	"github.com/callhound/callhound-api/internal/platform/transkriptor"
	"github.com/callhound/callhound-api/internal/service"
	"github.com/callhound/callhound-api/internal/service/auth"
	"github.com/callhound/callhound-api/internal/service/transcription"
	"github.com/callhound/callhound-api/internal/store"
)

// application holds the shared application dependencies so wiring happens
// in one place and cleanup on shutdown can reach everything.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore      store.UserStore
	recordingStore store.RecordingStore
	jobStore       store.JobStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	recordingService     service.RecordingService
	transcriptionService transcription.Service
}

// newApplication creates an application instance with all dependencies
// initialized. Configuration, logging and the database connection must
// already be established.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewUserStore(db, logger)
	app.recordingStore = postgres.NewRecordingStore(db, logger)
	app.jobStore = postgres.NewJobStore(db, logger)

	providerClient, err := transkriptor.NewClient(cfg.Transcription,
		logger.With(slog.String("component", "transkriptor_client")))
	if err != nil {
		return nil, fmt.Errorf("failed to create provider client: %w", err)
	}

	app.recordingService, err = service.NewRecordingService(
		db,
		app.recordingStore,
		cfg.Storage.UploadDir,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording service: %w", err)
	}

	app.transcriptionService = transcription.NewService(
		app.recordingStore,
		app.jobStore,
		providerClient,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection",
				slog.String("error", err.Error()))
		}
	}

	app.logger.Info("Application shutdown completed")
}
