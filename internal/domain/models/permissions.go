// internal/domain/models/permissions.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrganizationPermissions are per-user capability flags layered under the
// role. A user with no permissions document gets the defaults (all allowed);
// admins create a document only to restrict someone.
type OrganizationPermissions struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         primitive.ObjectID `bson:"user_id"`
	OrganizationID primitive.ObjectID `bson:"organization_id"`
	CanSearch      bool               `bson:"can_search"`
	CanViewHistory bool               `bson:"can_view_history"`
	CanManageCRM   bool               `bson:"can_manage_crm"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

// DefaultPermissions is what a user without a permissions document gets.
func DefaultPermissions(userID, orgID primitive.ObjectID) OrganizationPermissions {
	return OrganizationPermissions{
		UserID:         userID,
		OrganizationID: orgID,
		CanSearch:      true,
		CanViewHistory: true,
		CanManageCRM:   true,
	}
}
