package signup_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/leadscout/internal/app/features/errors"
	"github.com/dalemusser/leadscout/internal/app/features/signup"
	userstore "github.com/dalemusser/leadscout/internal/app/store/users"
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/dalemusser/leadscout/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T) (*signup.Handler, *userstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return signup.NewHandler(db, sessionMgr, errLog, logger), userstore.New(db)
}

func postSignup(t *testing.T, handler *signup.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	// Handler may try to render a template which panics without initialized templates
	func() {
		defer func() { recover() }()
		handler.HandleSignupPost(rec, req)
	}()
	return rec
}

func TestHandleSignupPost_CreatesUserAndSignsIn(t *testing.T) {
	handler, users := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := postSignup(t, handler, url.Values{
		"full_name": {"Riley Rep"},
		"email":     {"riley@example.com"},
		"password":  {"hunter2hunter2"},
	})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/organizations/join" {
		t.Errorf("Location: got %q, want %q", loc, "/organizations/join")
	}

	u, err := users.GetByEmailCI(ctx, "Riley@Example.com")
	if err != nil {
		t.Fatalf("GetByEmailCI: %v", err)
	}
	if u.OrganizationID != nil {
		t.Error("new account should have no organization")
	}
	if u.Role != "" {
		t.Errorf("new account should have no role, got %q", u.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Error("stored hash does not match the submitted password")
	}
}

func TestHandleSignupPost_DuplicateEmail(t *testing.T) {
	handler, _ := newTestHandler(t)

	first := postSignup(t, handler, url.Values{
		"full_name": {"Riley Rep"},
		"email":     {"riley@example.com"},
		"password":  {"hunter2hunter2"},
	})
	if first.Code != http.StatusSeeOther {
		t.Fatalf("first signup failed: %d", first.Code)
	}

	second := postSignup(t, handler, url.Values{
		"full_name": {"Other Person"},
		"email":     {"RILEY@example.com"}, // same address, different case
		"password":  {"hunter2hunter2"},
	})
	if second.Code == http.StatusSeeOther {
		t.Fatal("duplicate email should not create a second account")
	}
}

func TestHandleSignupPost_ShortPassword(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postSignup(t, handler, url.Values{
		"full_name": {"Riley Rep"},
		"email":     {"riley@example.com"},
		"password":  {"short"},
	})
	if rec.Code == http.StatusSeeOther {
		t.Fatal("short password should be rejected")
	}
}
