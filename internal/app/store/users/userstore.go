// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/leadscout/internal/app/system/tenant"
	"github.com/dalemusser/leadscout/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const Collection = "users"

func init() {
	// Membership is a weak relation, but team listings are still tenant
	// reads and must go through the scope registry.
	tenant.Register(Collection, "organization_id")
}

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	ErrNotFound       = errors.New("user not found")
)

// IsNotFound reports whether err is the store's missing-user error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create inserts a new user. Role and OrganizationID are usually empty at
// signup; they are set later when the user creates or joins an organization.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.FullNameCI = text.Fold(u.FullName)
	u.EmailCI = text.Fold(u.Email)
	if u.Status == "" {
		u.Status = "active"
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, u)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByEmailCI looks up a user by case-insensitive email.
func (s *Store) GetByEmailCI(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(email)}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// SetOrganization assigns the user to an organization with the given role.
// Guarded by organization_id being unset: a user already in an organization
// cannot be moved by a concurrent join.
func (s *Store) SetOrganization(ctx context.Context, userID, orgID primitive.ObjectID, role string) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID, "organization_id": nil},
		bson.M{"$set": bson.M{
			"organization_id": orgID,
			"role":            role,
			"updated_at":      time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// SetRole changes a member's role within their organization.
func (s *Store) SetRole(ctx context.Context, userID primitive.ObjectID, role string) error {
	res, err := s.c.UpdateByID(ctx, userID, bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveFromOrganization clears the user's membership and role.
func (s *Store) RemoveFromOrganization(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$unset": bson.M{"organization_id": "", "role": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// ListByOrganization returns the members of an organization.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.User, error) {
	filter, err := tenant.ScopeFilter(Collection, orgID)
	if err != nil {
		return nil, err
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CountByOrganization returns how many users belong to an organization.
func (s *Store) CountByOrganization(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	filter, err := tenant.ScopeFilter(Collection, orgID)
	if err != nil {
		return 0, err
	}
	return s.c.CountDocuments(ctx, filter)
}
