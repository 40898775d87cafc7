package organizations_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/leadscout/internal/app/features/errors"
	"github.com/dalemusser/leadscout/internal/app/features/organizations"
	invitestore "github.com/dalemusser/leadscout/internal/app/store/invites"
	organizationstore "github.com/dalemusser/leadscout/internal/app/store/organizations"
	usagestore "github.com/dalemusser/leadscout/internal/app/store/usage"
	userstore "github.com/dalemusser/leadscout/internal/app/store/users"
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/dalemusser/leadscout/internal/app/system/invites"
	"github.com/dalemusser/leadscout/internal/app/system/quota"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/dalemusser/leadscout/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const testPromo = "LAUNCH24"

func newTestHandler(t *testing.T) (*organizations.Handler, *mongo.Database, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	invSvc := invites.NewService(invitestore.New(db), userstore.New(db), logger)
	tracker := quota.NewTracker(organizationstore.New(db), usagestore.New(db), logger)
	handler := organizations.NewHandler(db, errLog, invSvc, tracker, testPromo, logger)
	return handler, db, testutil.NewFixtures(t, db)
}

func postForm(t *testing.T, path string, form url.Values, u *auth.SessionUser, fn http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if u != nil {
		req = auth.WithTestUser(req, u)
	}

	rec := httptest.NewRecorder()
	// Handler may try to render a template which panics without initialized templates
	func() {
		defer func() { recover() }()
		fn(rec, req)
	}()
	return rec
}

func TestHandleCreate_AssignsCreatorAsAdmin(t *testing.T) {
	handler, db, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Founder", "founder@example.com")

	rec := postForm(t, "/organizations/new", url.Values{
		"name": {"Acme Outreach"},
	}, &auth.SessionUser{ID: u.ID.Hex(), Name: u.FullName, Role: ""}, handler.HandleCreate)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	got, err := userstore.New(db).GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("creator role: got %q, want %q", got.Role, models.RoleAdmin)
	}
	if got.OrganizationID == nil {
		t.Fatal("creator should belong to the new organization")
	}

	org, err := organizationstore.New(db).GetByID(ctx, *got.OrganizationID)
	if err != nil {
		t.Fatalf("org GetByID: %v", err)
	}
	if org.Plan != models.PlanBronze {
		t.Errorf("plan without promo: got %q, want bronze", org.Plan)
	}
}

func TestHandleCreate_PromoCodeGrantsUnlimited(t *testing.T) {
	handler, db, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Founder", "founder@example.com")

	rec := postForm(t, "/organizations/new", url.Values{
		"name":       {"Acme Outreach"},
		"promo_code": {testPromo},
	}, &auth.SessionUser{ID: u.ID.Hex(), Name: u.FullName}, handler.HandleCreate)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	got, err := userstore.New(db).GetByID(ctx, u.ID)
	if err != nil || got.OrganizationID == nil {
		t.Fatalf("creator has no organization (err=%v)", err)
	}
	org, err := organizationstore.New(db).GetByID(ctx, *got.OrganizationID)
	if err != nil {
		t.Fatalf("org GetByID: %v", err)
	}
	if org.Plan != models.PlanUnlimited {
		t.Errorf("plan with promo: got %q, want unlimited", org.Plan)
	}
}

func TestHandleCreate_PromoCodeIsCaseInsensitive(t *testing.T) {
	handler, db, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Founder", "founder@example.com")

	rec := postForm(t, "/organizations/new", url.Values{
		"name":       {"Acme Outreach"},
		"promo_code": {strings.ToLower(testPromo)},
	}, &auth.SessionUser{ID: u.ID.Hex(), Name: u.FullName}, handler.HandleCreate)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	got, err := userstore.New(db).GetByID(ctx, u.ID)
	if err != nil || got.OrganizationID == nil {
		t.Fatalf("creator has no organization (err=%v)", err)
	}
	org, err := organizationstore.New(db).GetByID(ctx, *got.OrganizationID)
	if err != nil {
		t.Fatalf("org GetByID: %v", err)
	}
	if org.Plan != models.PlanUnlimited {
		t.Errorf("plan with case-variant promo: got %q, want unlimited", org.Plan)
	}
}

func TestHandleCreate_BadPromoCodeRejected(t *testing.T) {
	handler, db, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Founder", "founder@example.com")

	rec := postForm(t, "/organizations/new", url.Values{
		"name":       {"Acme Outreach"},
		"promo_code": {"WRONG"},
	}, &auth.SessionUser{ID: u.ID.Hex(), Name: u.FullName}, handler.HandleCreate)

	if rec.Code == http.StatusSeeOther {
		t.Fatal("invalid promo code should not create an organization")
	}
	got, _ := userstore.New(db).GetByID(ctx, u.ID)
	if got.OrganizationID != nil {
		t.Error("user should not have been assigned to an organization")
	}
}

func TestHandleJoin_WithValidInvite(t *testing.T) {
	handler, db, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Acme Outreach", models.PlanBronze)
	joiner := fixtures.CreateUser(ctx, "Casey Caller", "casey@example.com")

	invSvc := invites.NewService(invitestore.New(db), userstore.New(db), zap.NewNop())
	inv, err := invSvc.Generate(ctx, org.ID, models.RoleCaller, 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	rec := postForm(t, "/organizations/join", url.Values{
		"code": {inv.Code},
	}, &auth.SessionUser{ID: joiner.ID.Hex(), Name: joiner.FullName}, handler.HandleJoin)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	got, err := userstore.New(db).GetByID(ctx, joiner.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.OrganizationID == nil || *got.OrganizationID != org.ID {
		t.Error("joiner should belong to the invite's organization")
	}
	if got.Role != models.RoleCaller {
		t.Errorf("joiner role: got %q, want caller", got.Role)
	}
}

func TestHandleJoin_UsedCodeRejected(t *testing.T) {
	handler, db, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Acme Outreach", models.PlanBronze)
	first := fixtures.CreateUser(ctx, "First", "first@example.com")
	second := fixtures.CreateUser(ctx, "Second", "second@example.com")

	invSvc := invites.NewService(invitestore.New(db), userstore.New(db), zap.NewNop())
	inv, err := invSvc.Generate(ctx, org.ID, models.RoleCaller, 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	ok, err := invSvc.Join(ctx, first.ID, inv.Code)
	if err != nil || !ok {
		t.Fatalf("first join failed: ok=%v err=%v", ok, err)
	}

	rec := postForm(t, "/organizations/join", url.Values{
		"code": {inv.Code},
	}, &auth.SessionUser{ID: second.ID.Hex(), Name: second.FullName}, handler.HandleJoin)

	if rec.Code == http.StatusSeeOther {
		t.Fatal("a consumed invite code must not grant membership again")
	}
	got, _ := userstore.New(db).GetByID(ctx, second.ID)
	if got.OrganizationID != nil {
		t.Error("second user should not have joined")
	}
}

func TestHandleSetRole_AdminCannotChangeOwnRole(t *testing.T) {
	handler, db, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Acme Outreach", models.PlanBronze)
	admin := fixtures.CreateMember(ctx, "Ada Admin", "ada@example.com", models.RoleAdmin, org.ID)

	rec := postForm(t, "/organizations/team/role", url.Values{
		"user_id": {admin.ID.Hex()},
		"role":    {"caller"},
	}, &auth.SessionUser{
		ID: admin.ID.Hex(), Name: admin.FullName,
		Role: models.RoleAdmin, OrganizationID: org.ID.Hex(),
	}, handler.HandleSetRole)

	if rec.Code == http.StatusSeeOther {
		t.Fatal("admin must not be able to change their own role")
	}
	got, _ := userstore.New(db).GetByID(ctx, admin.ID)
	if got.Role != models.RoleAdmin {
		t.Errorf("role changed: got %q", got.Role)
	}
}

func TestHandleSetRole_ForeignMemberRejected(t *testing.T) {
	handler, db, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Acme Outreach", models.PlanBronze)
	other := fixtures.CreateOrganization(ctx, "Rival Org", models.PlanBronze)
	admin := fixtures.CreateMember(ctx, "Ada Admin", "ada@example.com", models.RoleAdmin, org.ID)
	outsider := fixtures.CreateMember(ctx, "Oscar Outsider", "oscar@example.com", models.RoleCaller, other.ID)

	rec := postForm(t, "/organizations/team/role", url.Values{
		"user_id": {outsider.ID.Hex()},
		"role":    {"manager"},
	}, &auth.SessionUser{
		ID: admin.ID.Hex(), Name: admin.FullName,
		Role: models.RoleAdmin, OrganizationID: org.ID.Hex(),
	}, handler.HandleSetRole)

	if rec.Code == http.StatusSeeOther {
		t.Fatal("an admin must not manage members of another organization")
	}
	got, _ := userstore.New(db).GetByID(ctx, outsider.ID)
	if got.Role != models.RoleCaller {
		t.Errorf("foreign member's role changed: got %q", got.Role)
	}
}
