// internal/app/store/permissions/permissionstore.go
package permissionstore

import (
	"context"
	"time"

	"github.com/dalemusser/leadscout/internal/app/system/tenant"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "organization_permissions"

func init() {
	tenant.Register(Collection, "organization_id")
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Get returns the permissions document for a user, or the defaults
// (everything allowed) when no document exists. Absence implies allow:
// admins create a document only to restrict.
func (s *Store) Get(ctx context.Context, userID, orgID primitive.ObjectID) (models.OrganizationPermissions, error) {
	var p models.OrganizationPermissions
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "organization_id": orgID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.DefaultPermissions(userID, orgID), nil
	}
	if err != nil {
		return models.OrganizationPermissions{}, err
	}
	return p, nil
}

// Upsert writes the permissions for a user, creating the document if needed.
func (s *Store) Upsert(ctx context.Context, p models.OrganizationPermissions) error {
	p.UpdatedAt = time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": p.UserID, "organization_id": p.OrganizationID},
		bson.M{"$set": bson.M{
			"can_search":       p.CanSearch,
			"can_view_history": p.CanViewHistory,
			"can_manage_crm":   p.CanManageCRM,
			"updated_at":       p.UpdatedAt,
		}},
		options.Update().SetUpsert(true))
	return err
}

// ListByOrganization returns all explicit permissions documents for an
// organization, read through the tenant filter.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.OrganizationPermissions, error) {
	filter, err := tenant.ScopeFilter(Collection, orgID)
	if err != nil {
		return nil, err
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.OrganizationPermissions
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
