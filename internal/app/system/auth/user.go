// internal/app/system/auth/user.go
package auth

import (
	"context"
	"net/http"
)

// SessionUser is what we cache in the session & inject into r.Context().
//
// Permission flags are loaded from the permissions store by the UserFetcher
// on each request, so admin changes take effect immediately.
type SessionUser struct {
	ID               string
	Name             string
	Email            string
	Role             string
	OrganizationID   string // hex ObjectID; empty means no organization
	OrganizationName string

	CanSearch      bool
	CanViewHistory bool
	CanManageCRM   bool
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects a user into the request context, bypassing the
// session middleware. For tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}
