package home_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/leadscout/internal/app/features/home"
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *home.Handler {
	t.Helper()
	return home.NewHandler(zap.NewNop())
}

func TestNewHandler(t *testing.T) {
	h := newTestHandler(t)
	if h == nil {
		t.Fatal("NewHandler() returned nil")
	}
}

func TestServeRoot_Unauthenticated(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	// Handler will try to render a template which may panic without initialized templates
	func() {
		defer func() {
			if r := recover(); r != nil {
				// Template rendering may panic in tests - that's expected
			}
		}()
		handler.ServeRoot(rec, req)
	}()
}

func TestServeRoot_MemberWithOrgRedirectsToSearch(t *testing.T) {
	handler := newTestHandler(t)

	sessionUser := &auth.SessionUser{
		ID:               "68b1a2c3d4e5f60718293a4b",
		Name:             "Casey Caller",
		Email:            "casey@example.com",
		Role:             "caller",
		OrganizationName: "Acme Outreach",
	}

	req := httptest.NewRequest("GET", "/", nil)
	req = auth.WithTestUser(req, sessionUser)
	rec := httptest.NewRecorder()

	handler.ServeRoot(rec, req)

	if rec.Code != 303 {
		t.Fatalf("expected 303 redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/search" {
		t.Fatalf("expected redirect to /search, got %q", loc)
	}
}

func TestServeRoot_MemberWithoutOrgSeesLanding(t *testing.T) {
	handler := newTestHandler(t)

	sessionUser := &auth.SessionUser{
		ID:    "68b1a2c3d4e5f60718293a4c",
		Name:  "New User",
		Email: "new@example.com",
		Role:  "manager",
	}

	req := httptest.NewRequest("GET", "/", nil)
	req = auth.WithTestUser(req, sessionUser)
	rec := httptest.NewRecorder()

	func() {
		defer func() {
			if r := recover(); r != nil {
				// Template rendering may panic in tests - that's expected
			}
		}()
		handler.ServeRoot(rec, req)
	}()

	if rec.Code == 303 {
		t.Fatal("user without an organization should not be redirected to /search")
	}
}
