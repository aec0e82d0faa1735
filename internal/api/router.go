package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
//
// There is no auth middleware gate: every route gets an authorization
// context, and handlers that need a caller identity fail closed when
// the context cannot produce one.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.identityMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Sessions
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/revoke", s.handleRevoke)

		// Caller traversals
		r.Route("/me", func(r chi.Router) {
			r.Get("/", s.handleMe)
			r.Get("/device", s.handleMyDevice)
			r.Get("/devices", s.handleMyDevices)
			r.Get("/groups", s.handleMyGroups)
			r.Get("/events", s.handleMyEvents)
			r.Get("/schedules", s.handleMySchedules)
			r.Get("/tags", s.handleMyTags)
			r.Get("/capabilities", s.handleMyCapabilities)
			r.Get("/organisation", s.handleMyOrganisation)
		})

		// Device location (always the calling device)
		r.Put("/devices/location", s.handleUpdateLocation)

		// Groups
		r.Route("/groups", func(r chi.Router) {
			r.Post("/", s.handleCreateGroup)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/users", s.handleGroupUsers)
				r.Get("/schedules", s.handleGroupSchedules)
				r.Get("/events", s.handleGroupEvents)
				r.Get("/tags", s.handleGroupTags)
				r.Post("/members", s.handleAddGroupMember)
				r.Post("/events", s.handleCreateEvent)
			})
		})

		// Schedules
		r.Route("/schedules", func(r chi.Router) {
			r.Post("/", s.handleCreateSchedule)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/segments", s.handleScheduleSegments)
				r.Post("/segments", s.handleAddTimeSegment)
			})
		})

		// Organisations
		r.Route("/organisations", func(r chi.Router) {
			r.Post("/", s.handleCreateOrganisation)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/groups", s.handleOrganisationGroups)
				r.Get("/users", s.handleOrganisationUsers)
				r.Get("/tags", s.handleOrganisationTags)
				r.Get("/capabilities", s.handleOrganisationCapabilities)
			})
		})

		// WebSocket (token auth inside the handler)
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
