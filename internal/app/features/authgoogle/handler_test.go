package authgoogle_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/leadscout/internal/app/features/authgoogle"
	uierrors "github.com/dalemusser/leadscout/internal/app/features/errors"
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/dalemusser/leadscout/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, clientID, clientSecret string) *authgoogle.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return authgoogle.NewHandler(db, sessionMgr, errLog,
		clientID, clientSecret, "http://localhost:8080", "test-oauth-state-key-32-bytes!!!", logger)
}

func TestServeLogin_NotConfigured(t *testing.T) {
	handler := newTestHandler(t, "", "")

	req := httptest.NewRequest("GET", "/auth/google", nil)
	rec := httptest.NewRecorder()

	handler.ServeLogin(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=google_not_configured") {
		t.Errorf("Location: got %q, want google_not_configured error", loc)
	}
}

func TestServeLogin_RedirectsToGoogle(t *testing.T) {
	handler := newTestHandler(t, "client-id", "client-secret")

	req := httptest.NewRequest("GET", "/auth/google?return=/search", nil)
	rec := httptest.NewRecorder()

	handler.ServeLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected status %d, got %d", http.StatusTemporaryRedirect, rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "accounts.google.com") {
		t.Errorf("expected redirect to Google, got %q", loc)
	}
	if !strings.Contains(loc, "state=") {
		t.Errorf("expected state parameter in %q", loc)
	}

	// A signed state cookie should accompany the redirect.
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "oauth_state" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected oauth_state cookie to be set")
	}
}

func TestServeCallback_MissingState(t *testing.T) {
	handler := newTestHandler(t, "client-id", "client-secret")

	req := httptest.NewRequest("GET", "/auth/google/callback?code=abc", nil)
	rec := httptest.NewRecorder()

	handler.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=invalid_state") {
		t.Errorf("Location: got %q, want invalid_state error", loc)
	}
}

func TestServeCallback_GoogleDenied(t *testing.T) {
	handler := newTestHandler(t, "client-id", "client-secret")

	req := httptest.NewRequest("GET", "/auth/google/callback?error=access_denied", nil)
	rec := httptest.NewRecorder()

	handler.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=google_denied") {
		t.Errorf("Location: got %q, want google_denied error", loc)
	}
}

func TestServeCallback_TamperedStateCookie(t *testing.T) {
	handler := newTestHandler(t, "client-id", "client-secret")

	req := httptest.NewRequest("GET", "/auth/google/callback?code=abc&state=xyz", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "not-a-signed-value"})
	rec := httptest.NewRecorder()

	handler.ServeCallback(rec, req)

	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=invalid_state") {
		t.Errorf("Location: got %q, want invalid_state error", loc)
	}
}
