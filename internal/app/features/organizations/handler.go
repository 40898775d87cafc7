// internal/app/features/organizations/handler.go
package organizations

import (
	uierrors "github.com/dalemusser/leadscout/internal/app/features/errors"
	organizationstore "github.com/dalemusser/leadscout/internal/app/store/organizations"
	permissionstore "github.com/dalemusser/leadscout/internal/app/store/permissions"
	userstore "github.com/dalemusser/leadscout/internal/app/store/users"
	"github.com/dalemusser/leadscout/internal/app/system/invites"
	"github.com/dalemusser/leadscout/internal/app/system/quota"
	"github.com/dalemusser/leadscout/internal/app/system/tenant"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves everything under /organizations: creation, the org
// dashboard, team management, invites, and the join flow.
type Handler struct {
	DB      *mongo.Database
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
	Orgs    *organizationstore.Store
	Tenant  *tenant.Resolver
	Users   *userstore.Store
	Perms   *permissionstore.Store
	Invites *invites.Service
	Quota   *quota.Tracker

	// PromoCode, when non-empty and matched at creation, puts the new
	// organization on the unlimited plan.
	PromoCode string
}

func NewHandler(
	db *mongo.Database,
	errLog *uierrors.ErrorLogger,
	invSvc *invites.Service,
	tracker *quota.Tracker,
	promoCode string,
	logger *zap.Logger,
) *Handler {
	orgs := organizationstore.New(db)
	return &Handler{
		DB:        db,
		Log:       logger,
		ErrLog:    errLog,
		Orgs:      orgs,
		Tenant:    tenant.NewResolver(orgs),
		Users:     userstore.New(db),
		Perms:     permissionstore.New(db),
		Invites:   invSvc,
		Quota:     tracker,
		PromoCode: promoCode,
	}
}
