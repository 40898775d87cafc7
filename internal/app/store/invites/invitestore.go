// internal/app/store/invites/invitestore.go
package invitestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/leadscout/internal/app/system/tenant"
	"github.com/dalemusser/leadscout/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "organization_invites"

func init() {
	tenant.Register(Collection, "organization_id")
}

type Store struct {
	c *mongo.Collection
}

// ErrDuplicateCode means the generated code collided with an existing one
// (active or not — codes are globally unique for their whole lifetime).
var ErrDuplicateCode = errors.New("invite code already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Insert persists a new invite. The unique index on code turns a collision
// into ErrDuplicateCode so the caller can retry with a fresh code.
func (s *Store) Insert(ctx context.Context, inv models.OrganizationInvite) (models.OrganizationInvite, error) {
	inv.ID = primitive.NewObjectID()
	_, err := s.c.InsertOne(ctx, inv)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.OrganizationInvite{}, ErrDuplicateCode
		}
		return models.OrganizationInvite{}, err
	}
	return inv, nil
}

// IsNoDocuments reports whether err means "no invite with that code".
func IsNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// GetByCode returns the invite with the given code, or mongo.ErrNoDocuments.
func (s *Store) GetByCode(ctx context.Context, code string) (models.OrganizationInvite, error) {
	var inv models.OrganizationInvite
	err := s.c.FindOne(ctx, bson.M{"code": code}).Decode(&inv)
	if err != nil {
		return models.OrganizationInvite{}, err
	}
	return inv, nil
}

// ConsumeActive atomically claims an invite: the update is guarded by
// is_active=true and an unexpired expiry, and flips is_active to false.
// Under concurrent redemption of the same code, exactly one caller gets
// (invite, true); everyone else gets false.
func (s *Store) ConsumeActive(ctx context.Context, code string, now time.Time) (models.OrganizationInvite, bool, error) {
	var inv models.OrganizationInvite
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{
			"code":       code,
			"is_active":  true,
			"expires_at": bson.M{"$gte": now.UTC()},
		},
		bson.M{"$set": bson.M{"is_active": false}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return models.OrganizationInvite{}, false, nil
	}
	if err != nil {
		return models.OrganizationInvite{}, false, err
	}
	return inv, true, nil
}

// Reactivate undoes a consume, used when the membership write after a
// successful claim fails (e.g., the user joined another org concurrently).
func (s *Store) Reactivate(ctx context.Context, code string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"code": code},
		bson.M{"$set": bson.M{"is_active": true}})
	return err
}

// Deactivate marks an invite inactive. Returns false when no invite with
// the code exists; true otherwise, even if it was already inactive.
func (s *Store) Deactivate(ctx context.Context, code string) (bool, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"code": code},
		bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// ActiveByOrganization returns the organization's invites that are active
// and unexpired as of now, newest first.
func (s *Store) ActiveByOrganization(ctx context.Context, orgID primitive.ObjectID, now time.Time) ([]models.OrganizationInvite, error) {
	filter, err := tenant.ScopedFilter(Collection, orgID, bson.M{
		"is_active":  true,
		"expires_at": bson.M{"$gte": now.UTC()},
	})
	if err != nil {
		return nil, err
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var invites []models.OrganizationInvite
	if err := cur.All(ctx, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}
