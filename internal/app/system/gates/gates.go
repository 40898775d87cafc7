// Package gates provides authorization gate functions for HTTP handlers.
// Gates check authentication and authorization, rendering appropriate error
// pages when checks fail.
//
// Route groups with uniform requirements use the auth.SessionManager
// middleware (RequireSignedIn, RequireRole, RequireOrganization) in
// routes.go. Gates are for handlers that need a different check than their
// route group, and return the user context so the handler does not have to
// re-derive it. Resource-specific authorization that needs the record itself
// lives in internal/app/policy.
package gates

import (
	"net/http"

	uierrors "github.com/dalemusser/leadscout/internal/app/features/errors"
	"github.com/dalemusser/leadscout/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result contains the result of an authorization gate check.
type Result struct {
	Role   string
	Name   string
	UserID primitive.ObjectID
	OrgID  primitive.ObjectID
	OK     bool
}

// RequireAuth ensures a user is authenticated.
// If not authenticated, it renders an unauthorized error and returns OK=false.
func RequireAuth(w http.ResponseWriter, r *http.Request, loginURL string) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, loginURL)
		return Result{OK: false}
	}
	return Result{Role: role, Name: name, UserID: uid, OrgID: authz.UserOrgID(r), OK: true}
}

// RequireAdmin ensures the user is authenticated and has the admin role.
func RequireAdmin(w http.ResponseWriter, r *http.Request, forbiddenMsg, fallbackURL string) Result {
	return RequireAnyRole(w, r, forbiddenMsg, fallbackURL, "admin")
}

// RequireAdminOrManager ensures the user is authenticated and has the admin
// or manager role (the roles allowed to manage CRM structure and the team).
func RequireAdminOrManager(w http.ResponseWriter, r *http.Request, forbiddenMsg, fallbackURL string) Result {
	return RequireAnyRole(w, r, forbiddenMsg, fallbackURL, "admin", "manager")
}

// RequireAnyRole ensures the user is authenticated and has one of the
// specified roles. Not authenticated renders unauthorized; wrong role
// renders forbidden.
func RequireAnyRole(w http.ResponseWriter, r *http.Request, forbiddenMsg, fallbackURL string, allowedRoles ...string) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return Result{OK: false}
	}

	for _, allowed := range allowedRoles {
		if role == allowed {
			return Result{Role: role, Name: name, UserID: uid, OrgID: authz.UserOrgID(r), OK: true}
		}
	}

	uierrors.RenderForbidden(w, r, forbiddenMsg, fallbackURL)
	return Result{OK: false}
}

// RequireOrganization ensures the user is authenticated and belongs to an
// organization. Users without one are redirected to the join-or-create flow.
func RequireOrganization(w http.ResponseWriter, r *http.Request) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return Result{OK: false}
	}
	orgID := authz.UserOrgID(r)
	if orgID == primitive.NilObjectID {
		http.Redirect(w, r, "/organizations/join", http.StatusSeeOther)
		return Result{OK: false}
	}
	return Result{Role: role, Name: name, UserID: uid, OrgID: orgID, OK: true}
}
