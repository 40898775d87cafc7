// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultSiteName is used when no custom branding is configured.
const DefaultSiteName = "LeadScout"

// Organization is the unit of tenancy. Every CRM list, saved search,
// message template, invite, and usage row belongs to exactly one organization.
type Organization struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	NameCI    string             `bson:"name_ci"` // ← always stored
	Status    string             `bson:"status"`  // active | disabled
	Plan      Plan               `bson:"plan"`
	PromoCode string             `bson:"promo_code,omitempty"`

	// NextSearchReset is the next UTC instant at which the daily search
	// quota rolls over. Advanced by the usage-reset worker.
	NextSearchReset time.Time `bson:"next_search_reset"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}
