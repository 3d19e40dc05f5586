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
		// Health, live state and login need no auth: dashboards poll them
		// before an operator has signed in.
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes: everything that moves machinery or inventory.
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/operations", func(r chi.Router) {
				r.Post("/entrance", s.handleStartEntrance)
				r.Post("/exit", s.handleStartExit)
			})

			r.Post("/emergency/reset", s.handleEmergencyReset)

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", s.handleListInventory)
				r.Post("/", s.handleCreateRecord)
			})
		})

		// WebSocket (auth via token query parameter, validated in handler)
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	connected := s.gateway != nil && s.gateway.IsConnected()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"version":       s.version,
		"bus_connected": connected,
	})
}
