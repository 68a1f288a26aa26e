package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/wallproof/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	configurationsHandler := handlers.NewConfigurationsHandler()
	proofHandler := handlers.NewProofHandler(s.renderer, s.debug)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1/configurations", func(r chi.Router) {
		r.Post("/", configurationsHandler.Create)
		r.Get("/{id}", configurationsHandler.Get)
		r.Get("/{id}/proof", proofHandler.Proof)
	})
}
