// Package router sets up all HTTP routes and middleware chains for the
// treepress API server.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"treepress/internal/handlers"
	"treepress/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. A nil limiter disables rate limiting.
func New(api *handlers.API, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check, never rate limited.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", api.ListCategories)
			r.Get("/all", api.ListAllCategories)
			r.Get("/tree", api.CategoryTree)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", api.GetCategory)
				r.Get("/children", api.CategoryChildren)
				r.Get("/tree", api.CategoryTreeOf)
				r.Get("/path", api.CategoryPath)
				r.Get("/descendants", api.CategoryDescendants)
				r.Get("/posts", api.CategoryPosts)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", api.ListPosts)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", api.GetPost)
				r.Get("/content", api.PostContent)
				r.Get("/annotations", api.PostAnnotations)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
