// internal/app/features/history/routes.go
package history

import (
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the history pages under the base path (typically "/history"
// from bootstrap). The per-user history permission is checked in the
// handlers, where the admin override applies.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn, sm.RequireOrganization)
		pr.Get("/", h.ServeHistory)
		pr.Get("/shared/{token}", h.ServeShared)
	})

	return r
}
