// internal/app/store/messagetemplates/templatestore.go
package templatestore

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

const Collection = "message_templates"

func init() {
	tenant.Register(Collection, "organization_id")
}

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("message template not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func (s *Store) Create(ctx context.Context, t models.MessageTemplate) (models.MessageTemplate, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.NameCI = text.Fold(t.Name)
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, t)
	if err != nil {
		return models.MessageTemplate{}, err
	}
	return t, nil
}

func (s *Store) GetByID(ctx context.Context, orgID, id primitive.ObjectID) (models.MessageTemplate, error) {
	filter, err := tenant.ScopedFilter(Collection, orgID, bson.M{"_id": id})
	if err != nil {
		return models.MessageTemplate{}, err
	}
	var t models.MessageTemplate
	err = s.c.FindOne(ctx, filter).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return models.MessageTemplate{}, ErrNotFound
	}
	if err != nil {
		return models.MessageTemplate{}, err
	}
	return t, nil
}

// ListByKind returns the organization's templates of one kind (email or
// script), sorted by name.
func (s *Store) ListByKind(ctx context.Context, orgID primitive.ObjectID, kind string) ([]models.MessageTemplate, error) {
	filter, err := tenant.ScopedFilter(Collection, orgID, bson.M{"kind": kind})
	if err != nil {
		return nil, err
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.M{"name_ci": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var templates []models.MessageTemplate
	if err := cur.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (s *Store) Update(ctx context.Context, orgID primitive.ObjectID, t models.MessageTemplate) error {
	filter, err := tenant.ScopedFilter(Collection, orgID, bson.M{"_id": t.ID})
	if err != nil {
		return err
	}
	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"name":       t.Name,
		"name_ci":    text.Fold(t.Name),
		"subject":    t.Subject,
		"body":       t.Body,
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
