// internal/domain/models/crm.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CRMList groups saved businesses within an organization.
type CRMList struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID `bson:"organization_id"`
	Name           string             `bson:"name"`
	NameCI         string             `bson:"name_ci"`
	Description    string             `bson:"description,omitempty"`
	CreatedBy      primitive.ObjectID `bson:"created_by"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

// CRMEntry is a saved business inside a CRM list. AssignedTo supports the
// caller-role ownership restriction: a caller may only act on entries whose
// AssignedTo equals their user id.
type CRMEntry struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID  `bson:"organization_id"`
	ListID         primitive.ObjectID  `bson:"list_id"`
	BusinessName   string              `bson:"business_name"`
	BusinessNameCI string              `bson:"business_name_ci"`
	Phone          string              `bson:"phone,omitempty"`
	Email          string              `bson:"email,omitempty"`
	Website        string              `bson:"website,omitempty"`
	Address        string              `bson:"address,omitempty"`
	Category       string              `bson:"category,omitempty"`
	Status         string              `bson:"status,omitempty"` // new | contacted | qualified | closed
	Notes          string              `bson:"notes,omitempty"`  // sanitized HTML
	AssignedTo     *primitive.ObjectID `bson:"assigned_to,omitempty"`
	CreatedAt      time.Time           `bson:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at"`
}
