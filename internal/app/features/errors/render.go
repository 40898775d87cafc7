// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	nav "github.com/dalemusser/waffle/pantry/httpnav"
)

// RenderUnauthorized shows the "sign in required" page inline (without a
// redirect). An empty backURL defaults to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	renderErrorPage(w, r, "Sign in required", "Please sign in to continue.", backURL)
}

// RenderForbidden shows the access-error page inline with a caller-supplied
// message. An empty backURL resolves a safe back URL from the request.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = nav.ResolveBackURL(r, "/")
	}
	renderErrorPage(w, r, "Access denied", msg, backURL)
}
