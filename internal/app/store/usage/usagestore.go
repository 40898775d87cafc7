// internal/app/store/usage/usagestore.go
package usagestore

import (
	"context"
	"time"

	"github.com/dalemusser/leadscout/internal/app/system/tenant"
	"github.com/dalemusser/leadscout/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "organization_search_usage"

func init() {
	tenant.Register(Collection, "organization_id")
}

// Store persists the per-(organization, day) usage ledger. All mutation is
// expressed as single conditional updates; correctness under concurrent
// requests depends on that, not on in-process locks.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Get returns the usage row for a day. Missing row means zero usage.
func (s *Store) Get(ctx context.Context, orgID primitive.ObjectID, day string) (models.SearchUsage, error) {
	var u models.SearchUsage
	err := s.c.FindOne(ctx, bson.M{"organization_id": orgID, "day": day}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.SearchUsage{OrganizationID: orgID, Day: day}, nil
	}
	if err != nil {
		return models.SearchUsage{}, err
	}
	return u, nil
}

// EnsureRow materializes a zeroed row for the day if none exists. The unique
// (organization_id, day) index makes concurrent calls safe: the loser of the
// upsert race sees a duplicate error, which is success for our purposes.
func (s *Store) EnsureRow(ctx context.Context, orgID primitive.ObjectID, day string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"organization_id": orgID, "day": day},
		bson.M{
			"$setOnInsert": bson.M{
				"organization_id": orgID,
				"day":             day,
				"search_count":    0,
				"result_count":    0,
				"last_updated":    time.Now().UTC(),
			},
		},
		options.Update().SetUpsert(true))
	if err != nil && wafflemongo.IsDup(err) {
		return nil
	}
	return err
}

// IncrementWithin adds one search and results result-rows to the day's
// counters, but only if the post-increment result count stays within
// maxResults. Returns false when the guard fails (the quota re-check at
// write time). maxResults < 0 means unbounded.
func (s *Store) IncrementWithin(ctx context.Context, orgID primitive.ObjectID, day string, results, maxResults int) (bool, error) {
	if err := s.EnsureRow(ctx, orgID, day); err != nil {
		return false, err
	}

	filter := bson.M{"organization_id": orgID, "day": day}
	if maxResults >= 0 {
		// Guard: result_count + results <= maxResults.
		filter["result_count"] = bson.M{"$lte": maxResults - results}
	}

	res, err := s.c.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"search_count": 1, "result_count": results},
		"$set": bson.M{"last_updated": time.Now().UTC()},
	})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// HistoryByOrganization returns the organization's usage rows, newest day
// first, read through the tenant filter.
func (s *Store) HistoryByOrganization(ctx context.Context, orgID primitive.ObjectID, limit int64) ([]models.SearchUsage, error) {
	filter, err := tenant.ScopeFilter(Collection, orgID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.M{"day": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []models.SearchUsage
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
