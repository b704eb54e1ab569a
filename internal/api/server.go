// Package api exposes the engine and store over HTTP. The engine stays
// I/O-free; handlers fetch records, invoke pure computations and map errors
// to status codes.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a chi router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", h.Health)

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetUser)

			r.Get("/goal", h.GetGoal)
			r.Put("/goal", h.SaveGoal)

			r.Get("/accounts", h.ListAccounts)
			r.Post("/accounts", h.CreateAccount)
			r.Delete("/accounts/{accountID}", h.DeleteAccount)

			r.Get("/investments", h.ListInvestments)
			r.Post("/investments", h.CreateInvestment)
			r.Delete("/investments/{investmentID}", h.DeleteInvestment)

			r.Get("/projection", h.GetProjection)
			r.Get("/simulation", h.GetSimulation)
			r.Get("/allocation", h.GetAllocation)
			r.Get("/contributions", h.GetContributions)
			r.Get("/timeline", h.GetTimeline)
			r.Get("/analysis", h.GetAnalysis)
		})
	})

	return r
}
