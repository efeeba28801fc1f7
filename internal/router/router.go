// Package router sets up the HTTP routes and middleware chain for the
// sportboard query API.
package router

import (
	"github.com/go-chi/chi/v5"

	"sportboard/internal/handlers"
	"sportboard/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(categories *handlers.Categories, results *handlers.Results, schedule *handlers.Schedule) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categories.List)
			r.Get("/tree", categories.Tree)
			r.Get("/merged", categories.Merged)
			r.Get("/search", categories.Search)
			r.Get("/node/{id}", categories.Node)
			r.Get("/{id}", categories.ByID)
		})

		r.Route("/results", func(r chi.Router) {
			r.Get("/", results.List)
			r.Get("/tree", results.Tree)
			r.Get("/{id}", results.ByID)
		})

		r.Get("/schedule", schedule.Range)
	})

	return r
}
