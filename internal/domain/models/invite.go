// internal/domain/models/invite.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrganizationInvite is a short-lived, single-use code that grants membership
// in an organization with a predetermined role.
//
// Codes are globally unique (unique index on code). Successful redemption
// flips IsActive to false; expired or inactive codes never grant membership.
type OrganizationInvite struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Code           string             `bson:"code"`
	OrganizationID primitive.ObjectID `bson:"organization_id"`
	Role           string             `bson:"role"`
	IsActive       bool               `bson:"is_active"`
	CreatedAt      time.Time          `bson:"created_at"`
	ExpiresAt      time.Time          `bson:"expires_at"`
}

// Usable reports whether the invite would grant membership at time now.
func (i OrganizationInvite) Usable(now time.Time) bool {
	return i.IsActive && !now.After(i.ExpiresAt)
}
