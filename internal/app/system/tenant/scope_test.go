package tenant_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/leadscout/internal/app/system/tenant"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestScopeFilter_RestrictsToOrganization(t *testing.T) {
	tenant.Register("scope_test_widgets", "organization_id")

	orgID := primitive.NewObjectID()
	filter, err := tenant.ScopeFilter("scope_test_widgets", orgID)
	if err != nil {
		t.Fatalf("ScopeFilter: %v", err)
	}
	if got := filter["organization_id"]; got != orgID {
		t.Errorf("organization_id filter: got %v, want %v", got, orgID)
	}
}

func TestScopeFilter_NilOrgMatchesNothing(t *testing.T) {
	tenant.Register("scope_test_widgets", "organization_id")

	filter, err := tenant.ScopeFilter("scope_test_widgets", primitive.NilObjectID)
	if err != nil {
		t.Fatalf("ScopeFilter: %v", err)
	}
	// A user without a tenant must see no rows at all. The filter keys on
	// _id (always present) being absent, which no document satisfies.
	cond, ok := filter["_id"].(bson.M)
	if !ok {
		t.Fatalf("expected _id condition, got %v", filter)
	}
	if exists, _ := cond["$exists"].(bool); exists {
		t.Errorf("nil-org filter must match nothing, got %v", filter)
	}
}

func TestScopeFilter_UnregisteredCollectionFailsClosed(t *testing.T) {
	_, err := tenant.ScopeFilter("scope_test_never_registered", primitive.NewObjectID())
	if !errors.Is(err, tenant.ErrUnscopedCollection) {
		t.Errorf("expected ErrUnscopedCollection, got %v", err)
	}
}

func TestScopedFilter_ExtraCannotOverrideOrganization(t *testing.T) {
	tenant.Register("scope_test_widgets", "organization_id")

	orgID := primitive.NewObjectID()
	foreign := primitive.NewObjectID()
	filter, err := tenant.ScopedFilter("scope_test_widgets", orgID, bson.M{
		"organization_id": foreign,
		"status":          "new",
	})
	if err != nil {
		t.Fatalf("ScopedFilter: %v", err)
	}
	if got := filter["organization_id"]; got != orgID {
		t.Errorf("extra conditions widened the tenant filter: got %v, want %v", got, orgID)
	}
	if got := filter["status"]; got != "new" {
		t.Errorf("extra condition dropped: got %v", got)
	}
}

func TestRegister_ConflictingFieldPanics(t *testing.T) {
	tenant.Register("scope_test_conflict", "organization_id")

	defer func() {
		if recover() == nil {
			t.Error("expected panic on conflicting re-registration")
		}
	}()
	tenant.Register("scope_test_conflict", "org_id")
}
