// internal/app/store/savedsearches/savedsearchstore.go
package savedsearchstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/leadscout/internal/app/system/tenant"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "saved_searches"

func init() {
	tenant.Register(Collection, "organization_id")
}

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("saved search not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Record appends a search to the organization's history. The share token is
// assigned here so every saved search is linkable within the organization.
func (s *Store) Record(ctx context.Context, ss models.SavedSearch) (models.SavedSearch, error) {
	ss.ID = primitive.NewObjectID()
	ss.ShareToken = uuid.NewString()
	ss.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, ss)
	if err != nil {
		return models.SavedSearch{}, err
	}
	return ss, nil
}

// ListByOrganization returns the organization's search history, newest first.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID, limit int64) ([]models.SavedSearch, error) {
	filter, err := tenant.ScopeFilter(Collection, orgID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var searches []models.SavedSearch
	if err := cur.All(ctx, &searches); err != nil {
		return nil, err
	}
	return searches, nil
}

// GetByToken resolves a share token within the caller's organization. Tokens
// from other tenants behave like missing searches.
func (s *Store) GetByToken(ctx context.Context, orgID primitive.ObjectID, token string) (models.SavedSearch, error) {
	filter, err := tenant.ScopedFilter(Collection, orgID, bson.M{"share_token": token})
	if err != nil {
		return models.SavedSearch{}, err
	}
	var ss models.SavedSearch
	err = s.c.FindOne(ctx, filter).Decode(&ss)
	if err == mongo.ErrNoDocuments {
		return models.SavedSearch{}, ErrNotFound
	}
	if err != nil {
		return models.SavedSearch{}, err
	}
	return ss, nil
}
