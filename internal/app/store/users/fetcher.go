// internal/app/store/users/fetcher.go
package userstore

import (
	"context"

	organizationstore "github.com/dalemusser/leadscout/internal/app/store/organizations"
	permissionstore "github.com/dalemusser/leadscout/internal/app/store/permissions"
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fetcher implements auth.UserFetcher: it loads fresh user data (plus
// organization name and permission flags) on every request, so role and
// permission changes take effect immediately.
type Fetcher struct {
	users *Store
	orgs  *organizationstore.Store
	perms *permissionstore.Store
}

func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{
		users: New(db),
		orgs:  organizationstore.New(db),
		perms: permissionstore.New(db),
	}
}

// FetchSessionUser resolves a session user id to the current SessionUser.
// Returns (nil, nil) for unknown or disabled accounts so the middleware
// treats the session as stale rather than erroring.
func (f *Fetcher) FetchSessionUser(ctx context.Context, userID string) (*auth.SessionUser, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}
	u, err := f.users.GetByID(ctx, uid)
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if u.Status != "active" {
		return nil, nil
	}

	su := &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,

		// Defaults; refined below when the user has an organization.
		CanSearch:      true,
		CanViewHistory: true,
		CanManageCRM:   true,
	}

	if u.OrganizationID != nil {
		su.OrganizationID = u.OrganizationID.Hex()
		if org, err := f.orgs.GetByID(ctx, *u.OrganizationID); err == nil {
			su.OrganizationName = org.Name
		}
		perms, err := f.perms.Get(ctx, u.ID, *u.OrganizationID)
		if err != nil {
			return nil, err
		}
		su.CanSearch = perms.CanSearch
		su.CanViewHistory = perms.CanViewHistory
		su.CanManageCRM = perms.CanManageCRM
	}

	return su, nil
}
