package main

import (
	"net/http"

	"github.com/callhound/callhound-api/internal/api"
	apiMiddleware "github.com/callhound/callhound-api/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupRouter creates the application router with all routes and
// middleware registered.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	recordingHandler := api.NewRecordingHandler(
		app.recordingService,
		app.config.Storage.MaxUploadBytes,
		app.logger,
	)
	jobHandler := api.NewJobHandler(app.transcriptionService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Recording endpoints
			r.Get("/recordings", recordingHandler.List)
			r.Post("/recordings", recordingHandler.Upload)
			r.Delete("/recordings/{id}", recordingHandler.Delete)

			// Transcription job endpoints
			r.Post("/recordings/{id}/transcriptions", jobHandler.Start)
			r.Get("/transcriptions/{id}", jobHandler.Status)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
