package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/arcanalab/tarot-api/internal/api"
	apiMiddleware "github.com/arcanalab/tarot-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(apiMiddleware.OpenIDMiddleware)

	readingHandler := api.NewReadingHandler(app.readingService, app.logger)

	r.Route("/api/tarot", func(r chi.Router) {
		// Polling is open so an in-flight poll survives a session refresh;
		// the ownership check still applies when identity is present.
		r.Get("/result", readingHandler.GetResult)

		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.RequireOwner)
			r.Post("/", readingHandler.SubmitReading)
			r.Get("/history", readingHandler.ListHistory)
			r.Post("/delete", readingHandler.DeleteReading)
			r.Post("/delete_all", readingHandler.DeleteAllReadings)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
