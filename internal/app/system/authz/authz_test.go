package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/dalemusser/leadscout/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func request(u *auth.SessionUser) *http.Request {
	req := httptest.NewRequest("GET", "/", nil)
	if u == nil {
		return req
	}
	return auth.WithTestUser(req, u)
}

func TestUserCtx_NoUserIsVisitor(t *testing.T) {
	role, _, _, ok := authz.UserCtx(request(nil))
	if ok || role != "visitor" {
		t.Errorf("got role %q ok=%v, want visitor/false", role, ok)
	}
}

func TestUserCtx_MalformedIDFailsClosed(t *testing.T) {
	req := request(&auth.SessionUser{ID: "not-hex", Role: "admin"})
	role, _, id, ok := authz.UserCtx(req)
	if ok || role != "visitor" || id != primitive.NilObjectID {
		t.Errorf("malformed session id must fail closed, got role %q ok=%v", role, ok)
	}
}

func TestUserCtx_NormalizesRole(t *testing.T) {
	uid := primitive.NewObjectID()
	req := request(&auth.SessionUser{ID: uid.Hex(), Name: "Ada", Role: "Admin"})
	role, name, id, ok := authz.UserCtx(req)
	if !ok || role != "admin" || name != "Ada" || id != uid {
		t.Errorf("got %q/%q/%v/%v", role, name, id, ok)
	}
}

func TestHasAnyRole(t *testing.T) {
	uid := primitive.NewObjectID().Hex()
	req := request(&auth.SessionUser{ID: uid, Role: "manager"})

	if !authz.HasAnyRole(req, "admin", "manager") {
		t.Error("manager should match {admin,manager}")
	}
	if authz.HasAnyRole(req, "admin") {
		t.Error("manager should not match {admin}")
	}
}

func TestCapabilities_AdminBypassesFlags(t *testing.T) {
	uid := primitive.NewObjectID().Hex()
	admin := request(&auth.SessionUser{ID: uid, Role: "admin"})
	caller := request(&auth.SessionUser{ID: uid, Role: "caller", CanSearch: true})
	revoked := request(&auth.SessionUser{ID: uid, Role: "caller"})

	if !authz.CanSearch(admin) || !authz.CanViewHistory(admin) || !authz.CanManageCRM(admin) {
		t.Error("admin must hold every capability regardless of flags")
	}
	if !authz.CanSearch(caller) {
		t.Error("caller with the flag must be able to search")
	}
	if authz.CanSearch(revoked) {
		t.Error("caller without the flag must not search")
	}
}

func TestUserOrgID(t *testing.T) {
	orgID := primitive.NewObjectID()
	uid := primitive.NewObjectID().Hex()

	withOrg := request(&auth.SessionUser{ID: uid, Role: "caller", OrganizationID: orgID.Hex()})
	if got := authz.UserOrgID(withOrg); got != orgID {
		t.Errorf("UserOrgID = %v, want %v", got, orgID)
	}

	noOrg := request(&auth.SessionUser{ID: uid, Role: "caller"})
	if got := authz.UserOrgID(noOrg); got != primitive.NilObjectID {
		t.Errorf("UserOrgID without org = %v, want NilObjectID", got)
	}
}
