// internal/domain/models/savedsearch.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SavedSearch records a directory search an organization has run, so past
// queries can be reviewed and re-run from the history page. ShareToken is an
// opaque UUID that lets a search be shared within the organization by link.
type SavedSearch struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID `bson:"organization_id"`
	RunBy          primitive.ObjectID `bson:"run_by"`
	Term           string             `bson:"term"`
	Location       string             `bson:"location,omitempty"`
	Category       string             `bson:"category,omitempty"`
	ResultCount    int                `bson:"result_count"`
	ShareToken     string             `bson:"share_token"`
	CreatedAt      time.Time          `bson:"created_at"`
}
