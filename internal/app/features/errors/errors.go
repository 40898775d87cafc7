// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for error pages.
type pageData struct {
	Title      string
	IsLoggedIn bool
	Role       string
	UserName   string
	Message    string
	BackURL    string
}

// Handler serves the standalone /forbidden and /unauthorized pages that
// gates redirect to. No DB needed; it just renders templates.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders the "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	renderErrorPage(w, r, "Access denied",
		"Your account doesn't have access to this page.", "/")
}

// Unauthorized renders the "sign in required" page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	renderErrorPage(w, r, "Sign in required", "Please sign in to continue.", "/login")
}

func renderErrorPage(w http.ResponseWriter, r *http.Request, title, msg, backURL string) {
	data := pageData{
		Title:   title,
		Message: msg,
		BackURL: backURL,
	}
	if u, ok := auth.CurrentUser(r); ok && u != nil {
		data.IsLoggedIn = true
		data.Role = u.Role
		data.UserName = u.Name
	}
	templates.Render(w, r, "error_forbidden", data)
}
