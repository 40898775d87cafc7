// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a
// found flag. If no user is present in context or the user ID is malformed,
// it returns "visitor", "", NilObjectID, false. This ensures callers can
// trust that ok=true means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed for security.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// IsManager reports whether the current request's user is a manager.
func IsManager(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "manager"
}

// IsCaller reports whether the current request's user holds the restricted
// caller role.
func IsCaller(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "caller"
}

// UserOrgID returns the current user's organization ID as an ObjectID.
// Returns NilObjectID if the user is not logged in or has no organization.
func UserOrgID(r *http.Request) primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok || user.OrganizationID == "" {
		return primitive.NilObjectID
	}
	oid, err := primitive.ObjectIDFromHex(user.OrganizationID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

// CanSearch reports whether the current user may run directory searches.
// Admins always can; others can unless an admin revoked the permission.
func CanSearch(r *http.Request) bool {
	return hasCapability(r, func(u *auth.SessionUser) bool { return u.CanSearch })
}

// CanViewHistory reports whether the current user may view search history.
func CanViewHistory(r *http.Request) bool {
	return hasCapability(r, func(u *auth.SessionUser) bool { return u.CanViewHistory })
}

// CanManageCRM reports whether the current user may create/edit/delete CRM
// lists and entries. Callers are further restricted to assigned entries by
// policy/crmpolicy.
func CanManageCRM(r *http.Request) bool {
	return hasCapability(r, func(u *auth.SessionUser) bool { return u.CanManageCRM })
}

func hasCapability(r *http.Request, flag func(*auth.SessionUser) bool) bool {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return false
	}
	if strings.ToLower(user.Role) == "admin" {
		return true
	}
	return flag(user)
}
