// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	organizationstore "github.com/dalemusser/leadscout/internal/app/store/organizations"
	"github.com/dalemusser/leadscout/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance bound to the test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization creates an active organization on the given plan, with
// its first quota reset scheduled at the next UTC midnight.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string, plan models.Plan) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:              primitive.NewObjectID(),
		Name:            name,
		NameCI:          text.Fold(name),
		Status:          "active",
		Plan:            plan,
		NextSearchReset: organizationstore.NextUTCMidnight(now),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := f.db.Collection(organizationstore.Collection).InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateUser creates a signed-up user with no organization, the state a
// fresh account is in before joining or creating one.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.insertUser(ctx, fullName, email, "", nil, "")
}

// CreateUserWithPassword creates a password-auth user with a real bcrypt
// hash so login flows can be exercised end to end.
func (f *Fixtures) CreateUserWithPassword(ctx context.Context, fullName, email, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash test password: %v", err)
	}
	return f.insertUser(ctx, fullName, email, "", nil, string(hash))
}

// CreateMember creates a user who already belongs to an organization with
// the given role.
func (f *Fixtures) CreateMember(ctx context.Context, fullName, email, role string, orgID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.insertUser(ctx, fullName, email, role, &orgID, "")
}

func (f *Fixtures) insertUser(ctx context.Context, fullName, email, role string, orgID *primitive.ObjectID, passwordHash string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	authMethod := "google"
	if passwordHash != "" {
		authMethod = "password"
	}
	user := models.User{
		ID:             primitive.NewObjectID(),
		FullName:       fullName,
		FullNameCI:     text.Fold(fullName),
		Email:          email,
		EmailCI:        text.Fold(email),
		PasswordHash:   passwordHash,
		AuthMethod:     authMethod,
		Role:           role,
		Status:         "active",
		OrganizationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}
