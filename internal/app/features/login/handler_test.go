package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/leadscout/internal/app/features/errors"
	"github.com/dalemusser/leadscout/internal/app/features/login"
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/dalemusser/leadscout/internal/app/system/ratelimit"
	"github.com/dalemusser/leadscout/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*login.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)

	// Session manager for testing (dev mode, weak key allowed)
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	limiter := ratelimit.New(10, time.Minute)
	handler := login.NewHandler(db, sessionMgr, errLog, limiter, false, logger)
	fixtures := testutil.NewFixtures(t, db)
	return handler, fixtures
}

func postLogin(t *testing.T, handler *login.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "203.0.113.10:4455"

	rec := httptest.NewRecorder()
	// Handler may try to render a template which panics without initialized templates
	func() {
		defer func() { recover() }()
		handler.HandleLoginPost(rec, req)
	}()
	return rec
}

func TestHandleLoginPost_Success(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUserWithPassword(ctx, "Test Admin", "admin@example.com", "correct horse")

	rec := postLogin(t, handler, url.Values{
		"email":    {"admin@example.com"},
		"password": {"correct horse"},
	})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/search" {
		t.Errorf("Location: got %q, want %q", location, "/search")
	}

	cookies := rec.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == "test-session" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected session cookie to be set")
	}
}

func TestHandleLoginPost_WithReturnURL(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUserWithPassword(ctx, "Test Admin", "admin@example.com", "correct horse")

	rec := postLogin(t, handler, url.Values{
		"email":    {"admin@example.com"},
		"password": {"correct horse"},
		"return":   {"/organizations"},
	})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/organizations" {
		t.Errorf("Location: got %q, want %q", location, "/organizations")
	}
}

func TestHandleLoginPost_WrongPassword(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUserWithPassword(ctx, "Test Admin", "admin@example.com", "correct horse")

	rec := postLogin(t, handler, url.Values{
		"email":    {"admin@example.com"},
		"password": {"wrong horse"},
	})

	if rec.Code == http.StatusSeeOther {
		t.Fatal("wrong password should not redirect to a signed-in page")
	}
}

func TestHandleLoginPost_NonexistentEmail(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postLogin(t, handler, url.Values{
		"email":    {"nobody@example.com"},
		"password": {"whatever"},
	})

	if rec.Code == http.StatusSeeOther {
		t.Fatal("unknown email should not redirect to a signed-in page")
	}
}

func TestHandleLoginPost_RateLimited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	limiter := ratelimit.New(1, time.Minute)
	handler := login.NewHandler(db, sessionMgr, errLog, limiter, false, logger)

	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures.CreateUserWithPassword(ctx, "Test Admin", "admin@example.com", "correct horse")

	// First attempt consumes the only slot in the window.
	_ = postLogin(t, handler, url.Values{
		"email":    {"admin@example.com"},
		"password": {"wrong horse"},
	})

	// Second attempt is throttled even with the right password.
	rec := postLogin(t, handler, url.Values{
		"email":    {"admin@example.com"},
		"password": {"correct horse"},
	})
	if rec.Code == http.StatusSeeOther {
		t.Fatal("rate-limited attempt should not sign the user in")
	}
}

func TestServeLogin_RendersForm(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/login?return=/search", nil)
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		handler.ServeLogin(rec, req)
	}()
}
