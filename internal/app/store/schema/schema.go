// internal/app/store/schema/schema.go

// Package schema creates the MongoDB indexes the stores rely on. It is
// called from bootstrap at startup and from the test harness, so both run
// against the same index set. CreateIndexes is idempotent: Mongo treats an
// existing identical index as a no-op.
package schema

import (
	"context"
	"fmt"

	crmentrystore "github.com/dalemusser/leadscout/internal/app/store/crmentries"
	crmliststore "github.com/dalemusser/leadscout/internal/app/store/crmlists"
	invitestore "github.com/dalemusser/leadscout/internal/app/store/invites"
	templatestore "github.com/dalemusser/leadscout/internal/app/store/messagetemplates"
	organizationstore "github.com/dalemusser/leadscout/internal/app/store/organizations"
	permissionstore "github.com/dalemusser/leadscout/internal/app/store/permissions"
	savedsearchstore "github.com/dalemusser/leadscout/internal/app/store/savedsearches"
	usagestore "github.com/dalemusser/leadscout/internal/app/store/usage"
	userstore "github.com/dalemusser/leadscout/internal/app/store/users"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates every index the application depends on. The unique
// indexes are load-bearing: duplicate-email signup, duplicate-organization
// names, invite-code collision retry, and the one-usage-row-per-day
// invariant all assume the database enforces them.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	plan := map[string][]mongo.IndexModel{
		userstore.Collection: {
			{Keys: bson.D{{Key: "email_ci", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "organization_id", Value: 1}}},
		},
		organizationstore.Collection: {
			{Keys: bson.D{{Key: "name_ci", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "next_search_reset", Value: 1}}},
		},
		invitestore.Collection: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "is_active", Value: 1}}},
		},
		usagestore.Collection: {
			{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "day", Value: 1}},
				Options: options.Index().SetUnique(true)},
		},
		permissionstore.Collection: {
			{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true)},
		},
		crmliststore.Collection: {
			{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "name_ci", Value: 1}}},
		},
		crmentrystore.Collection: {
			{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "list_id", Value: 1}}},
			{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "assigned_to", Value: 1}}},
		},
		savedsearchstore.Collection: {
			{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "share_token", Value: 1}}},
		},
		templatestore.Collection: {
			{Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "kind", Value: 1}, {Key: "name_ci", Value: 1}}},
		},
	}

	for coll, models := range plan {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
