// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user may hold within their organization.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCaller  = "caller" // restricted: may only act on records assigned to them
)

// User represents admins, managers, and callers.
//
// OrganizationID is nullable: a freshly signed-up user has no organization
// until they create one or redeem an invite code. A user belongs to at most
// one organization at a time.
type User struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName       string              `bson:"full_name" json:"full_name"`
	FullNameCI     string              `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email          string              `bson:"email" json:"email"`
	EmailCI        string              `bson:"email_ci" json:"email_ci"`
	PasswordHash   string              `bson:"password_hash,omitempty" json:"-"`
	AuthMethod     string              `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // password | google
	Role           string              `bson:"role,omitempty" json:"role,omitempty"`               // admin | manager | caller
	Status         string              `bson:"status,omitempty" json:"status,omitempty"`
	OrganizationID *primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
