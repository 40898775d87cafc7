// internal/domain/models/messagetemplate.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message template kinds.
const (
	TemplateKindEmail  = "email"
	TemplateKindScript = "script" // call script
)

// MessageTemplate is an organization-owned email template or call script.
// Body is stored as sanitized HTML.
type MessageTemplate struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID `bson:"organization_id"`
	Kind           string             `bson:"kind"` // email | script
	Name           string             `bson:"name"`
	NameCI         string             `bson:"name_ci"`
	Subject        string             `bson:"subject,omitempty"` // email only
	Body           string             `bson:"body"`
	CreatedBy      primitive.ObjectID `bson:"created_by"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}
