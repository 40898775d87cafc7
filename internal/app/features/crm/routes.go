// internal/app/features/crm/routes.go
package crm

import (
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the CRM under its base path (typically "/crm" from
// bootstrap). Role checks beyond signed-in membership happen in the
// handlers, where caller-role requests also pass the per-entry
// ownership policy.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn, sm.RequireOrganization)

		pr.Get("/", h.ServeLists)
		pr.Post("/", h.HandleCreateList)

		pr.Get("/{listID}", h.ServeList)
		pr.Post("/{listID}", h.HandleEditList)
		pr.Post("/{listID}/delete", h.HandleDeleteList)

		pr.Post("/{listID}/entries", h.HandleCreateEntry)
		pr.Get("/{listID}/entries/{entryID}", h.ServeEntry)
		pr.Post("/{listID}/entries/{entryID}", h.HandleEditEntry)
		pr.Post("/{listID}/entries/{entryID}/assign", h.HandleAssign)
		pr.Post("/{listID}/entries/{entryID}/delete", h.HandleDeleteEntry)
	})

	return r
}
