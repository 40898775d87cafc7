// Package crmpolicy provides authorization policies for CRM entries.
//
// Authorization rules:
//   - Admins and managers can view and manage all entries in their organization
//   - Callers (restricted role) can only act on entries assigned to them
//   - Everything is implicitly organization-scoped: entries are loaded
//     through the tenant filter, so a foreign entry id behaves as missing
package crmpolicy

import (
	"net/http"
	"strings"

	"github.com/dalemusser/leadscout/internal/app/system/authz"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExtractRecordID finds the target record id for an ownership check: chi URL
// parameters are consulted first, then posted form values. The second return
// is false when none of the keys yields a valid ObjectID.
func ExtractRecordID(r *http.Request, keys ...string) (primitive.ObjectID, bool) {
	for _, key := range keys {
		if v := chi.URLParam(r, key); v != "" {
			if id, err := primitive.ObjectIDFromHex(strings.TrimSpace(v)); err == nil {
				return id, true
			}
		}
	}
	for _, key := range keys {
		if v := r.FormValue(key); v != "" {
			if id, err := primitive.ObjectIDFromHex(strings.TrimSpace(v)); err == nil {
				return id, true
			}
		}
	}
	return primitive.NilObjectID, false
}

// CanAccessEntry reports whether the current user may act on the entry.
// Admins and managers may; a caller only when the entry is assigned to them.
func CanAccessEntry(r *http.Request, entry models.CRMEntry) bool {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	switch role {
	case models.RoleAdmin, models.RoleManager:
		return true
	case models.RoleCaller:
		return entry.AssignedTo != nil && *entry.AssignedTo == userID
	default:
		return false
	}
}

// OwnershipRequired reports whether the role is subject to record-level
// ownership checks.
func OwnershipRequired(role string) bool {
	return strings.ToLower(role) == models.RoleCaller
}

// RequireEntryAccess decides access for a route that targets a single entry.
// For restricted roles the record id must be extractable from the request;
// when it is not, the check DENIES rather than skipping — a route without an
// obvious id parameter is not a license to bypass ownership.
func RequireEntryAccess(r *http.Request, lookup func(primitive.ObjectID) (models.CRMEntry, bool), keys ...string) bool {
	role, _, _, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	if !OwnershipRequired(role) {
		return authz.HasAnyRole(r, models.RoleAdmin, models.RoleManager)
	}

	id, found := ExtractRecordID(r, keys...)
	if !found {
		return false
	}
	entry, ok := lookup(id)
	if !ok {
		return false
	}
	return CanAccessEntry(r, entry)
}
