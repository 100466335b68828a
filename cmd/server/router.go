package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nfoster/taskrelay/internal/api"
	apiMiddleware "github.com/nfoster/taskrelay/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	generationHandler := api.NewGenerationHandler(app.generator, app.runner, app.logger)
	taskHandler := api.NewTaskHandler(app.registry, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generations", generationHandler.CreateGeneration)
		r.Get("/tasks", taskHandler.ListActiveTasks)
		r.Get("/tasks/{taskID}", taskHandler.GetTask)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
