package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardduel/cardduel/internal/api/handlers"
	"github.com/cardduel/cardduel/internal/api/response"
	"github.com/cardduel/cardduel/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// WebSocket endpoint (no JSON content-type requirement)
	s.router.Get("/ws", s.wsHub.ServeWs)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.healthCheck)

		// Card catalog is public
		cardHandler := handlers.NewCardHandler()
		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cardHandler.ListCards)
			r.Get("/{cardID}", cardHandler.GetCard)
		})

		// Match routes require a verified identity
		matchHandler := handlers.NewMatchHandler(s.engine)
		r.Route("/matches", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/", matchHandler.CreateMatch)
			r.Get("/{matchID}", matchHandler.GetMatch)
			r.Post("/{matchID}/move", matchHandler.SubmitMove)
			r.Post("/{matchID}/surrender", matchHandler.Surrender)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "cardduel-api",
		"version": version.GetVersion(),
	})
}
