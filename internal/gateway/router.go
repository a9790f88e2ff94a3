package gateway

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gatherly-go/internal/auth"
)

// NewRouter assembles the gateway's routes. The admin journal surface is
// guarded by the shared-secret JWT middleware.
func NewRouter(handler *Handler, adminSecret string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/v1/events", handler.ListEvents)
	r.Get("/api/v1/events/{eventId}/form", handler.GetForm)
	r.Post("/api/v1/events/{eventId}/quote", handler.Quote)
	r.Post("/api/v1/events/{eventId}/registrations", handler.SubmitRegistration)
	r.Get("/api/v1/registrations/{attemptId}/ticket", handler.GetTicket)

	r.Group(func(admin chi.Router) {
		admin.Use(auth.AdminMiddleware(adminSecret))
		admin.Get("/api/v1/admin/attempts", handler.ListAttempts)
	})

	return r
}
