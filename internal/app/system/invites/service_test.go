package invites_test

import (
	"testing"
	"time"

	invitestore "github.com/dalemusser/leadscout/internal/app/store/invites"
	userstore "github.com/dalemusser/leadscout/internal/app/store/users"
	"github.com/dalemusser/leadscout/internal/app/system/invites"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/dalemusser/leadscout/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newService(db *mongo.Database) *invites.Service {
	return invites.NewService(invitestore.New(db), userstore.New(db), zap.NewNop())
}

func TestGenerate_ProducesRedeemableCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := testutil.NewFixtures(t, db).CreateOrganization(ctx, "Acme Outreach", models.PlanBronze)
	svc := newService(db)

	inv, err := svc.Generate(ctx, org.ID, models.RoleCaller, 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(inv.Code) != invites.CodeLength {
		t.Errorf("code length = %d, want %d", len(inv.Code), invites.CodeLength)
	}
	if inv.Role != models.RoleCaller || !inv.IsActive {
		t.Errorf("invite = %+v, want active caller invite", inv)
	}
	if !inv.ExpiresAt.After(time.Now()) {
		t.Errorf("invite already expired: %v", inv.ExpiresAt)
	}

	ok, err := svc.Validate(ctx, inv.Code)
	if err != nil || !ok {
		t.Errorf("Validate fresh code: got %v/%v, want true", ok, err)
	}
}

func TestValidate_UnknownCodeIsNo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ok, err := newService(db).Validate(ctx, "NOPE1234")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ok {
		t.Error("unknown code must not validate")
	}
}

func TestJoin_AddsUserWithInviteRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	org := fixtures.CreateOrganization(ctx, "Acme Outreach", models.PlanBronze)
	user := fixtures.CreateUser(ctx, "Casey Caller", "casey@example.com")
	svc := newService(db)

	inv, err := svc.Generate(ctx, org.ID, models.RoleCaller, 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	joined, err := svc.Join(ctx, user.ID, inv.Code)
	if err != nil || !joined {
		t.Fatalf("Join: got %v/%v, want true", joined, err)
	}

	got, err := userstore.New(db).GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.OrganizationID == nil || *got.OrganizationID != org.ID {
		t.Errorf("user organization = %v, want %v", got.OrganizationID, org.ID)
	}
	if got.Role != models.RoleCaller {
		t.Errorf("user role = %q, want caller", got.Role)
	}
}

func TestJoin_CodeIsSingleUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	org := fixtures.CreateOrganization(ctx, "Acme Outreach", models.PlanBronze)
	first := fixtures.CreateUser(ctx, "First", "first@example.com")
	second := fixtures.CreateUser(ctx, "Second", "second@example.com")
	svc := newService(db)

	inv, err := svc.Generate(ctx, org.ID, models.RoleCaller, 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if joined, err := svc.Join(ctx, first.ID, inv.Code); err != nil || !joined {
		t.Fatalf("first Join: got %v/%v, want true", joined, err)
	}
	if joined, err := svc.Join(ctx, second.ID, inv.Code); err != nil || joined {
		t.Errorf("second Join on a used code: got %v/%v, want false", joined, err)
	}
}

func TestJoin_ReactivatesWhenUserAlreadyInOrganization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	org := fixtures.CreateOrganization(ctx, "Acme Outreach", models.PlanBronze)
	other := fixtures.CreateOrganization(ctx, "Rival Co", models.PlanBronze)
	member := fixtures.CreateMember(ctx, "Taken", "taken@example.com", models.RoleCaller, other.ID)
	svc := newService(db)

	inv, err := svc.Generate(ctx, org.ID, models.RoleCaller, 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	joined, err := svc.Join(ctx, member.ID, inv.Code)
	if err != nil || joined {
		t.Fatalf("Join for an already-member user: got %v/%v, want false", joined, err)
	}

	// The claim was rolled back, so the code is not burned.
	ok, err := svc.Validate(ctx, inv.Code)
	if err != nil || !ok {
		t.Errorf("code after rolled-back join: got %v/%v, want still valid", ok, err)
	}
}

func TestExpiredCode_StillActiveButUnusable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	org := fixtures.CreateOrganization(ctx, "Acme Outreach", models.PlanBronze)
	user := fixtures.CreateUser(ctx, "Casey Caller", "casey@example.com")
	svc := newService(db)

	inv, err := svc.Generate(ctx, org.ID, models.RoleCaller, 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// Push the expiry into the past without touching is_active.
	_, err = db.Collection(invitestore.Collection).UpdateOne(ctx,
		bson.M{"code": inv.Code},
		bson.M{"$set": bson.M{"expires_at": time.Now().UTC().Add(-time.Hour)}})
	if err != nil {
		t.Fatalf("backdating expiry: %v", err)
	}

	got, err := invitestore.New(db).GetByCode(ctx, inv.Code)
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if !got.IsActive {
		t.Fatal("invite should still be flagged active")
	}

	ok, err := svc.Validate(ctx, inv.Code)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if ok {
		t.Error("expired code must not validate, even while active")
	}

	joined, err := svc.Join(ctx, user.ID, inv.Code)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if joined {
		t.Error("expired code must not grant membership")
	}
	member, err := userstore.New(db).GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if member.OrganizationID != nil {
		t.Error("user should not have joined through an expired code")
	}
}

func TestDeactivate_RevokesCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	org := fixtures.CreateOrganization(ctx, "Acme Outreach", models.PlanBronze)
	user := fixtures.CreateUser(ctx, "Casey Caller", "casey@example.com")
	svc := newService(db)

	inv, err := svc.Generate(ctx, org.ID, models.RoleCaller, 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	done, err := svc.Deactivate(ctx, inv.Code)
	if err != nil || !done {
		t.Fatalf("Deactivate: got %v/%v, want true", done, err)
	}
	if joined, err := svc.Join(ctx, user.ID, inv.Code); err != nil || joined {
		t.Errorf("Join on a revoked code: got %v/%v, want false", joined, err)
	}
}

func TestDeactivateForOrganization_IgnoresForeignCodes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	orgA := fixtures.CreateOrganization(ctx, "Acme Outreach", models.PlanBronze)
	orgB := fixtures.CreateOrganization(ctx, "Rival Co", models.PlanBronze)
	svc := newService(db)

	inv, err := svc.Generate(ctx, orgB.ID, models.RoleCaller, 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	done, err := svc.DeactivateForOrganization(ctx, orgA.ID, inv.Code)
	if err != nil {
		t.Fatalf("DeactivateForOrganization: %v", err)
	}
	if done {
		t.Error("a foreign organization's code must report false")
	}

	// Still redeemable by its own organization's invitees.
	ok, err := svc.Validate(ctx, inv.Code)
	if err != nil || !ok {
		t.Errorf("foreign deactivation attempt burned the code: got %v/%v", ok, err)
	}
}
