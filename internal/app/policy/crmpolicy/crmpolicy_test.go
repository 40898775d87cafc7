package crmpolicy_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/leadscout/internal/app/policy/crmpolicy"
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func requestAs(role string, userID primitive.ObjectID) *http.Request {
	req := httptest.NewRequest("GET", "/crm", nil)
	return auth.WithTestUser(req, &auth.SessionUser{
		ID:             userID.Hex(),
		Name:           "Test User",
		Role:           role,
		OrganizationID: primitive.NewObjectID().Hex(),
	})
}

func withURLParam(r *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func formRequestAs(role string, userID primitive.ObjectID, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", "/crm", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return auth.WithTestUser(req, &auth.SessionUser{
		ID:             userID.Hex(),
		Role:           role,
		OrganizationID: primitive.NewObjectID().Hex(),
	})
}

func TestExtractRecordID_FromURLParam(t *testing.T) {
	id := primitive.NewObjectID()
	req := withURLParam(httptest.NewRequest("GET", "/crm", nil), "entryID", id.Hex())

	got, ok := crmpolicy.ExtractRecordID(req, "entryID")
	if !ok || got != id {
		t.Errorf("ExtractRecordID: got %v/%v, want %v/true", got, ok, id)
	}
}

func TestExtractRecordID_FromForm(t *testing.T) {
	id := primitive.NewObjectID()
	req := formRequestAs(models.RoleCaller, primitive.NewObjectID(), url.Values{
		"entry_id": {id.Hex()},
	})

	got, ok := crmpolicy.ExtractRecordID(req, "entryID", "entry_id")
	if !ok || got != id {
		t.Errorf("ExtractRecordID: got %v/%v, want %v/true", got, ok, id)
	}
}

func TestExtractRecordID_MalformedHexNotFound(t *testing.T) {
	req := withURLParam(httptest.NewRequest("GET", "/crm", nil), "entryID", "not-a-hex-id")

	if _, ok := crmpolicy.ExtractRecordID(req, "entryID"); ok {
		t.Error("malformed hex must not extract")
	}
}

func TestCanAccessEntry(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	assigned := models.CRMEntry{AssignedTo: &owner}
	unassigned := models.CRMEntry{}

	cases := []struct {
		name  string
		role  string
		user  primitive.ObjectID
		entry models.CRMEntry
		want  bool
	}{
		{"admin any entry", models.RoleAdmin, stranger, assigned, true},
		{"manager any entry", models.RoleManager, stranger, assigned, true},
		{"caller own entry", models.RoleCaller, owner, assigned, true},
		{"caller foreign entry", models.RoleCaller, stranger, assigned, false},
		{"caller unassigned entry", models.RoleCaller, owner, unassigned, false},
		{"unknown role", "auditor", owner, assigned, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := crmpolicy.CanAccessEntry(requestAs(tc.role, tc.user), tc.entry); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanAccessEntry_NoUserDenied(t *testing.T) {
	req := httptest.NewRequest("GET", "/crm", nil)
	owner := primitive.NewObjectID()
	if crmpolicy.CanAccessEntry(req, models.CRMEntry{AssignedTo: &owner}) {
		t.Error("unauthenticated request must be denied")
	}
}

func TestOwnershipRequired(t *testing.T) {
	if !crmpolicy.OwnershipRequired(models.RoleCaller) {
		t.Error("caller role must require ownership")
	}
	if !crmpolicy.OwnershipRequired("Caller") {
		t.Error("role comparison must be case-insensitive")
	}
	if crmpolicy.OwnershipRequired(models.RoleAdmin) || crmpolicy.OwnershipRequired(models.RoleManager) {
		t.Error("admin and manager are not ownership-restricted")
	}
}

func TestRequireEntryAccess_CallerOwnEntry(t *testing.T) {
	userID := primitive.NewObjectID()
	entryID := primitive.NewObjectID()
	entry := models.CRMEntry{ID: entryID, AssignedTo: &userID}

	req := withURLParam(requestAs(models.RoleCaller, userID), "entryID", entryID.Hex())
	ok := crmpolicy.RequireEntryAccess(req, func(id primitive.ObjectID) (models.CRMEntry, bool) {
		return entry, id == entryID
	}, "entryID")
	if !ok {
		t.Error("caller must be able to access their assigned entry")
	}
}

func TestRequireEntryAccess_DeniesCallerWhenIDMissing(t *testing.T) {
	// A route with no extractable id must deny restricted roles, not skip
	// the ownership check.
	req := requestAs(models.RoleCaller, primitive.NewObjectID())
	ok := crmpolicy.RequireEntryAccess(req, func(primitive.ObjectID) (models.CRMEntry, bool) {
		t.Fatal("lookup must not run without an extracted id")
		return models.CRMEntry{}, false
	}, "entryID")
	if ok {
		t.Error("missing record id must deny a restricted role")
	}
}

func TestRequireEntryAccess_ManagerSkipsLookup(t *testing.T) {
	req := requestAs(models.RoleManager, primitive.NewObjectID())
	ok := crmpolicy.RequireEntryAccess(req, func(primitive.ObjectID) (models.CRMEntry, bool) {
		t.Fatal("lookup must not run for unrestricted roles")
		return models.CRMEntry{}, false
	}, "entryID")
	if !ok {
		t.Error("manager must pass without an ownership lookup")
	}
}

func TestRequireEntryAccess_MissingEntryDenied(t *testing.T) {
	req := withURLParam(requestAs(models.RoleCaller, primitive.NewObjectID()),
		"entryID", primitive.NewObjectID().Hex())
	ok := crmpolicy.RequireEntryAccess(req, func(primitive.ObjectID) (models.CRMEntry, bool) {
		return models.CRMEntry{}, false
	}, "entryID")
	if ok {
		t.Error("unknown entry id must deny")
	}
}
