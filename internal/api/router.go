package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// Config entry lifecycle
			r.Route("/entries", func(r chi.Router) {
				r.Get("/", s.handleListEntries)

				r.Route("/{entryID}", func(r chi.Router) {
					r.Get("/", s.handleGetEntry)
					r.Post("/setup", s.handleSetupEntry)
					r.Post("/unload", s.handleUnloadEntry)
					r.Delete("/", s.handleRemoveEntry)
					r.Delete("/devices/{deviceID}", s.handleRemoveDevice)
				})
			})

			// Generic service invocation
			r.Post("/services/{domain}/{service}", s.handleCallService)
		})
	})

	return r
}
