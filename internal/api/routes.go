package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RegisterRoutes sets up all the API endpoints and middleware for the
// application. There is no session middleware: the event keycode is the
// capability token and every privileged handler re-checks it on each call.
func (s *Server) RegisterRoutes(r *chi.Mux) {
	// --- Global Middleware (Applied to ALL routes) ---
	r.Use(middleware.Logger)    // Logs incoming requests
	r.Use(middleware.Recoverer) // Recovers from panics and returns a 500 error

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			// Beacons and the public map page post from anywhere, so the API
			// serves an open CORS policy unless a frontend origin is pinned.
			AllowedOrigins:   []string{s.config.FrontendURL},
			AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300, // How long the browser can cache preflight results
		}))

		// Queries
		r.Get("/events/{eventID}", s.handleGetEvent)
		r.Get("/events/by-name/{eventName}", s.handleGetEventByName)
		r.Post("/login", s.handleLogin)
		r.Get("/updates", s.handleGetUpdates)
		r.Post("/export", s.handleExportEventData)
		r.Get("/events/{eventID}/gpx", s.handleExportGPX)

		// Mutations
		r.Post("/events", s.handleCreateEvent)
		r.Post("/teams", s.handleCreateTeam)
		r.Post("/updates", s.handleCreateLocationUpdate)
		r.Patch("/events/{eventID}/image", s.handleUpdateEventImage)
		r.Patch("/events/{eventID}/logo", s.handleUpdateEventLogo)
		r.Patch("/events/{eventID}/organization", s.handleUpdateOrganizationName)
		r.Patch("/teams/{teamID}/color", s.handleUpdateTeamColor)

		// Expiration sweep, triggered by an external scheduler (POST) or
		// manually (GET). Both carry the operator secret as a bearer token.
		r.Post("/cleanup", s.handleCleanup)
		r.Get("/cleanup", s.handleCleanup)
	})
}
