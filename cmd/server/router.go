package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dosewise/dosewise-api/internal/api"
	apiMiddleware "github.com/dosewise/dosewise-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	jobsHandler := api.NewJobsHandler(
		app.generationService,
		app.adherenceService,
		app.scanner,
		app.logger,
	)
	adherenceHandler := api.NewAdherenceHandler(app.adherenceService, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Manual job triggers
		r.Post("/jobs/generation", jobsHandler.TriggerGeneration)
		r.Post("/jobs/dispatch", jobsHandler.TriggerDispatch)
		r.Post("/jobs/sweep", jobsHandler.TriggerSweep)

		// Adherence records (confirm/skip flow)
		r.Get("/adherence", adherenceHandler.List)
		r.Post("/adherence/{id}/status", adherenceHandler.UpdateStatus)
	})

	// Health check endpoint with a database ping
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := app.db.PingContext(ctx); err != nil {
			app.logger.Error("health check database ping failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
