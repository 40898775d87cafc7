// internal/app/store/crmlists/crmliststore.go
package crmliststore

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

const Collection = "crm_lists"

func init() {
	tenant.Register(Collection, "organization_id")
}

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("crm list not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func (s *Store) Create(ctx context.Context, list models.CRMList) (models.CRMList, error) {
	now := time.Now().UTC()
	list.ID = primitive.NewObjectID()
	list.NameCI = text.Fold(list.Name)
	list.CreatedAt = now
	list.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, list)
	if err != nil {
		return models.CRMList{}, err
	}
	return list, nil
}

// GetByID loads a list, restricted to the caller's organization. A list id
// from another tenant behaves exactly like a missing list.
func (s *Store) GetByID(ctx context.Context, orgID, id primitive.ObjectID) (models.CRMList, error) {
	filter, err := tenant.ScopedFilter(Collection, orgID, bson.M{"_id": id})
	if err != nil {
		return models.CRMList{}, err
	}
	var list models.CRMList
	err = s.c.FindOne(ctx, filter).Decode(&list)
	if err == mongo.ErrNoDocuments {
		return models.CRMList{}, ErrNotFound
	}
	if err != nil {
		return models.CRMList{}, err
	}
	return list, nil
}

func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.CRMList, error) {
	filter, err := tenant.ScopeFilter(Collection, orgID)
	if err != nil {
		return nil, err
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.M{"name_ci": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var lists []models.CRMList
	if err := cur.All(ctx, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (s *Store) Update(ctx context.Context, orgID, id primitive.ObjectID, name, description string) error {
	filter, err := tenant.ScopedFilter(Collection, orgID, bson.M{"_id": id})
	if err != nil {
		return err
	}
	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"name":        name,
		"name_ci":     text.Fold(name),
		"description": description,
		"updated_at":  time.Now().UTC(),
	}})
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
