// internal/app/features/messaging/routes.go
package messaging

import (
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the messaging pages under the base path (typically
// "/messaging" from bootstrap).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Members: read access to templates and scripts.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn, sm.RequireOrganization)
		pr.Get("/", h.ServeIndex)
	})

	// Admins and managers: maintenance.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn, sm.RequireOrganization)
		pr.Use(sm.RequireRole("admin", "manager"))
		pr.Post("/", h.HandleCreate)
		pr.Get("/{templateID}", h.ServeEdit)
		pr.Post("/{templateID}", h.HandleEdit)
		pr.Post("/{templateID}/delete", h.HandleDelete)
		pr.Post("/{templateID}/test", h.HandleSendTest)
	})

	return r
}
