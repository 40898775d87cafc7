// internal/app/system/tenant/resolver.go

// Package tenant resolves the current request to an organization and builds
// the row-level filters that keep one tenant's data invisible to another.
//
// Resolution is strictly from the authenticated principal in the request
// context — never from query strings, form values, or route parameters —
// so a caller cannot spoof another tenant by editing a request.
package tenant

import (
	"context"
	"net/http"

	organizationstore "github.com/dalemusser/leadscout/internal/app/store/organizations"
	"github.com/dalemusser/leadscout/internal/app/system/authz"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CurrentOrganizationID resolves the calling principal to an organization id.
// The second return is false when the principal is absent or has no
// membership; that sentinel is an expected state, not an error — callers
// decide whether it is fatal for their operation.
func CurrentOrganizationID(r *http.Request) (primitive.ObjectID, bool) {
	orgID := authz.UserOrgID(r)
	if orgID == primitive.NilObjectID {
		return primitive.NilObjectID, false
	}
	return orgID, true
}

// Resolver additionally loads the full organization document.
type Resolver struct {
	orgs *organizationstore.Store
}

// NewResolver builds a Resolver over the organization store.
func NewResolver(orgs *organizationstore.Store) *Resolver {
	return &Resolver{orgs: orgs}
}

// CurrentOrganization loads the organization the request's principal belongs
// to. Returns (nil, nil) when no organization is resolved; a non-nil error
// only for store failures. Performs at most one data lookup per call.
func (res *Resolver) CurrentOrganization(ctx context.Context, r *http.Request) (*models.Organization, error) {
	orgID, ok := CurrentOrganizationID(r)
	if !ok {
		return nil, nil
	}
	org, err := res.orgs.GetByID(ctx, orgID)
	if err != nil {
		if err == organizationstore.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}
