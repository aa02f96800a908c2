/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for local clients

ROUTE GROUPS:
  /api/bank/*          Hour-bank operations
  /api/commitment/*    Commitment lifecycle and status
  /api/sessions        Session reporting
  /api/sweep/*         Missed-day settlement
  /healthz             Liveness probe

SECURITY NOTE:
  This is a single-user local service; there is no authentication
  middleware. Bind it to loopback.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8787"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Hour bank
		r.Route("/bank", func(r chi.Router) {
			r.Get("/balance", h.GetBalance)
			r.Post("/consume", h.Consume)
			r.Get("/purchases", h.ListPurchases)
			r.Post("/purchases", h.CreatePurchase)
			r.Post("/lifetime", h.GrantLifetime)
			r.Post("/reconcile", h.Reconcile)
		})

		// Commitment
		r.Route("/commitment", func(r chi.Router) {
			r.Get("/", h.GetCommitment)
			r.Post("/", h.StartCommitment)
			r.Post("/exit", h.EmergencyExit)
			r.Get("/today", h.GetToday)
			r.Get("/days", h.ListDayLogs)
			r.Get("/history", h.GetHistory)
			r.Get("/outcomes", h.GetOutcomeTable)
		})

		// Sessions
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.ListSessions)
			r.Post("/", h.CompleteSession)
		})

		// Sweep
		r.Route("/sweep", func(r chi.Router) {
			r.Post("/run", h.RunSweep)
			r.Get("/pending", h.GetPendingSweep)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
