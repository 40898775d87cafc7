package search_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/leadscout/internal/app/features/errors"
	"github.com/dalemusser/leadscout/internal/app/features/search"
	organizationstore "github.com/dalemusser/leadscout/internal/app/store/organizations"
	usagestore "github.com/dalemusser/leadscout/internal/app/store/usage"
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/dalemusser/leadscout/internal/app/system/directory"
	"github.com/dalemusser/leadscout/internal/app/system/quota"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/dalemusser/leadscout/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func staticDirectory(n int) *directory.Static {
	businesses := make([]directory.Business, n)
	for i := range businesses {
		businesses[i] = directory.Business{
			Name:     "Plumber Co",
			Phone:    "573-555-0100",
			Address:  "Columbia, MO",
			Category: "plumbing",
		}
	}
	return &directory.Static{Businesses: businesses}
}

func newTestHandler(t *testing.T, dir directory.Client) (*search.Handler, *mongo.Database, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	tracker := quota.NewTracker(organizationstore.New(db), usagestore.New(db), logger)
	handler := search.NewHandler(db, errLog, dir, tracker, logger)
	return handler, db, testutil.NewFixtures(t, db)
}

func searchAs(t *testing.T, handler *search.Handler, u *auth.SessionUser, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = auth.WithTestUser(req, u)

	rec := httptest.NewRecorder()
	// Handler may try to render a template which panics without initialized templates
	func() {
		defer func() { recover() }()
		handler.HandleSearch(rec, req)
	}()
	return rec
}

func sessionMember(u models.User, org models.Organization, canSearch bool) *auth.SessionUser {
	return &auth.SessionUser{
		ID:               u.ID.Hex(),
		Name:             u.FullName,
		Role:             u.Role,
		OrganizationID:   org.ID.Hex(),
		OrganizationName: org.Name,
		CanSearch:        canSearch,
		CanViewHistory:   true,
		CanManageCRM:     true,
	}
}

func TestHandleSearch_ChargesQuota(t *testing.T) {
	handler, db, fixtures := newTestHandler(t, staticDirectory(10))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Acme Outreach", models.PlanBronze)
	caller := fixtures.CreateMember(ctx, "Casey Caller", "casey@example.com", models.RoleCaller, org.ID)

	searchAs(t, handler, sessionMember(caller, org, true), url.Values{
		"term":        {"plumber"},
		"max_results": {"10"},
	})

	row, err := usagestore.New(db).Get(ctx, org.ID, models.UsageDay(time.Now()))
	if err != nil {
		t.Fatalf("usage Get: %v", err)
	}
	if row.SearchCount != 1 {
		t.Errorf("search_count: got %d, want 1", row.SearchCount)
	}
	if row.ResultCount != 10 {
		t.Errorf("result_count: got %d, want 10", row.ResultCount)
	}
}

func TestHandleSearch_QuotaExceededBlocks(t *testing.T) {
	handler, db, fixtures := newTestHandler(t, staticDirectory(10))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Acme Outreach", models.PlanBronze) // limit 100
	caller := fixtures.CreateMember(ctx, "Casey Caller", "casey@example.com", models.RoleCaller, org.ID)

	// Consume 95 of the 100 credits.
	usage := usagestore.New(db)
	if ok, err := usage.IncrementWithin(ctx, org.ID, models.UsageDay(time.Now()), 95, 100); err != nil || !ok {
		t.Fatalf("seed usage: ok=%v err=%v", ok, err)
	}

	rec := searchAs(t, handler, sessionMember(caller, org, true), url.Values{
		"term":        {"plumber"},
		"max_results": {"10"},
	})

	if rec.Code == http.StatusSeeOther {
		t.Fatal("unexpected redirect")
	}

	row, _ := usage.Get(ctx, org.ID, models.UsageDay(time.Now()))
	if row.ResultCount != 95 {
		t.Errorf("result_count after refused search: got %d, want 95", row.ResultCount)
	}
}

func TestHandleSearch_UnlimitedPlanNeverBlocks(t *testing.T) {
	handler, db, fixtures := newTestHandler(t, staticDirectory(50))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Acme Outreach", models.PlanUnlimited)
	manager := fixtures.CreateMember(ctx, "Morgan Manager", "morgan@example.com", models.RoleManager, org.ID)

	// Pile up usage way past any bounded tier.
	usage := usagestore.New(db)
	for i := 0; i < 12; i++ {
		if ok, err := usage.IncrementWithin(ctx, org.ID, models.UsageDay(time.Now()), 100, -1); err != nil || !ok {
			t.Fatalf("seed usage: ok=%v err=%v", ok, err)
		}
	}

	searchAs(t, handler, sessionMember(manager, org, true), url.Values{
		"term":        {"plumber"},
		"max_results": {"50"},
	})

	row, _ := usage.Get(ctx, org.ID, models.UsageDay(time.Now()))
	if row.ResultCount != 1250 {
		t.Errorf("result_count: got %d, want 1250", row.ResultCount)
	}
}

func TestHandleSearch_PermissionFlagBlocksCaller(t *testing.T) {
	handler, db, fixtures := newTestHandler(t, staticDirectory(10))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Acme Outreach", models.PlanBronze)
	caller := fixtures.CreateMember(ctx, "Casey Caller", "casey@example.com", models.RoleCaller, org.ID)

	searchAs(t, handler, sessionMember(caller, org, false), url.Values{
		"term": {"plumber"},
	})

	row, _ := usagestore.New(db).Get(ctx, org.ID, models.UsageDay(time.Now()))
	if row.SearchCount != 0 {
		t.Error("a user without the search permission must not consume quota")
	}
}

func TestHandleSearch_DirectoryFailureDoesNotCharge(t *testing.T) {
	dir := &directory.Static{Err: errDirectoryDown}
	handler, db, fixtures := newTestHandler(t, dir)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Acme Outreach", models.PlanBronze)
	caller := fixtures.CreateMember(ctx, "Casey Caller", "casey@example.com", models.RoleCaller, org.ID)

	searchAs(t, handler, sessionMember(caller, org, true), url.Values{
		"term": {"plumber"},
	})

	row, _ := usagestore.New(db).Get(ctx, org.ID, models.UsageDay(time.Now()))
	if row.SearchCount != 0 || row.ResultCount != 0 {
		t.Error("a failed directory call must not consume quota")
	}
}

var errDirectoryDown = &directoryError{"directory unavailable"}

type directoryError struct{ msg string }

func (e *directoryError) Error() string { return e.msg }
