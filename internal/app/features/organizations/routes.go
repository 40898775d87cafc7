// internal/app/features/organizations/routes.go
package organizations

import (
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all organization routes under the base path
// (typically "/organizations" from bootstrap).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Signed-in, no organization required: the create/join flows.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/new", h.ServeNew)
		pr.Post("/new", h.HandleCreate)
		pr.Get("/join", h.ServeJoin)
		pr.Post("/join", h.HandleJoin)
	})

	// Members: the organization dashboard.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn, sm.RequireOrganization)
		pr.Get("/", h.ServeView)
	})

	// Admins and managers: team visibility and invites.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn, sm.RequireOrganization)
		pr.Use(sm.RequireRole("admin", "manager"))
		pr.Get("/team", h.ServeTeam)
		pr.Get("/invites", h.ServeInvites)
		pr.Post("/invites", h.HandleGenerateInvite)
		pr.Post("/invites/deactivate", h.HandleDeactivateInvite)
	})

	// Admin-only: organization settings and member management.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn, sm.RequireOrganization)
		pr.Use(sm.RequireRole("admin"))
		pr.Get("/edit", h.ServeEdit)
		pr.Post("/edit", h.HandleEdit)
		pr.Post("/team/role", h.HandleSetRole)
		pr.Post("/team/remove", h.HandleRemoveMember)
		pr.Post("/team/permissions", h.HandlePermissions)
	})

	return r
}
