package home

import (
	"net/http"

	"github.com/dalemusser/leadscout/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the landing page.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// ServeRoot handles GET /.
// Signed-in users with an organization land on the search page; everyone
// else gets the marketing landing page.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	base := viewdata.NewBaseVM(r, "Welcome", "/")
	if base.IsLoggedIn && base.UserOrg != "" {
		http.Redirect(w, r, "/search", http.StatusSeeOther)
		return
	}

	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: base,
	}

	templates.Render(w, r, "home", data)
}
