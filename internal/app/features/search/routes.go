// internal/app/features/search/routes.go
package search

import (
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn, sm.RequireOrganization)
		pr.Get("/", h.ServeSearch)
		pr.Post("/", h.HandleSearch)
	})

	return r
}
