// internal/domain/models/searchusage.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UsageDayFormat is the layout for SearchUsage.Day (UTC calendar day).
const UsageDayFormat = "2006-01-02"

// SearchUsage is one row per (organization, UTC calendar day). It is an
// append-only ledger: counts only ever increase within a day, and rows are
// never deleted. A unique index on (organization_id, day) enforces the
// one-row-per-day invariant.
type SearchUsage struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID `bson:"organization_id"`
	Day            string             `bson:"day"` // UsageDayFormat, UTC
	SearchCount    int                `bson:"search_count"`
	ResultCount    int                `bson:"result_count"`
	LastUpdated    time.Time          `bson:"last_updated"`
}

// UsageDay formats t as a UTC calendar day key.
func UsageDay(t time.Time) string {
	return t.UTC().Format(UsageDayFormat)
}
