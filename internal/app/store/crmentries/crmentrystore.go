// internal/app/store/crmentries/crmentrystore.go
package crmentrystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/leadscout/internal/app/system/tenant"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "crm_entries"

func init() {
	tenant.Register(Collection, "organization_id")
}

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("crm entry not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func (s *Store) Create(ctx context.Context, e models.CRMEntry) (models.CRMEntry, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.BusinessNameCI = text.Fold(e.BusinessName)
	if e.Status == "" {
		e.Status = "new"
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, e)
	if err != nil {
		return models.CRMEntry{}, err
	}
	return e, nil
}

// GetByID loads an entry, restricted to the caller's organization.
func (s *Store) GetByID(ctx context.Context, orgID, id primitive.ObjectID) (models.CRMEntry, error) {
	filter, err := tenant.ScopedFilter(Collection, orgID, bson.M{"_id": id})
	if err != nil {
		return models.CRMEntry{}, err
	}
	var e models.CRMEntry
	err = s.c.FindOne(ctx, filter).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return models.CRMEntry{}, ErrNotFound
	}
	if err != nil {
		return models.CRMEntry{}, err
	}
	return e, nil
}

// ListByList returns the entries of one CRM list.
func (s *Store) ListByList(ctx context.Context, orgID, listID primitive.ObjectID) ([]models.CRMEntry, error) {
	filter, err := tenant.ScopedFilter(Collection, orgID, bson.M{"list_id": listID})
	if err != nil {
		return nil, err
	}
	return s.find(ctx, filter)
}

// ListAssignedTo returns the entries assigned to one user — the slice of the
// CRM a caller-role user is allowed to work.
func (s *Store) ListAssignedTo(ctx context.Context, orgID, userID primitive.ObjectID) ([]models.CRMEntry, error) {
	filter, err := tenant.ScopedFilter(Collection, orgID, bson.M{"assigned_to": userID})
	if err != nil {
		return nil, err
	}
	return s.find(ctx, filter)
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.CRMEntry, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.M{"business_name_ci": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var entries []models.CRMEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Update rewrites an entry's mutable fields.
func (s *Store) Update(ctx context.Context, orgID primitive.ObjectID, e models.CRMEntry) error {
	filter, err := tenant.ScopedFilter(Collection, orgID, bson.M{"_id": e.ID})
	if err != nil {
		return err
	}
	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"business_name":    e.BusinessName,
		"business_name_ci": text.Fold(e.BusinessName),
		"phone":            e.Phone,
		"email":            e.Email,
		"website":          e.Website,
		"address":          e.Address,
		"category":         e.Category,
		"status":           e.Status,
		"notes":            e.Notes,
		"updated_at":       time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Assign sets (or clears, with nil) the entry's assigned user.
func (s *Store) Assign(ctx context.Context, orgID, id primitive.ObjectID, userID *primitive.ObjectID) error {
	filter, err := tenant.ScopedFilter(Collection, orgID, bson.M{"_id": id})
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
	if userID == nil {
		update["$unset"] = bson.M{"assigned_to": ""}
	} else {
		update["$set"].(bson.M)["assigned_to"] = *userID
	}
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, orgID, id primitive.ObjectID) (int64, error) {
	filter, err := tenant.ScopedFilter(Collection, orgID, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	res, err := s.c.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByList removes all entries of a list (used when a list is deleted).
func (s *Store) DeleteByList(ctx context.Context, orgID, listID primitive.ObjectID) (int64, error) {
	filter, err := tenant.ScopedFilter(Collection, orgID, bson.M{"list_id": listID})
	if err != nil {
		return 0, err
	}
	res, err := s.c.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
