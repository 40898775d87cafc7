// internal/app/features/crm/handler.go

// The crm feature is the working surface for saved leads: lists group
// entries, entries hold contact details and notes, and entries can be
// assigned to a caller. Callers only see and act on entries assigned to
// them; admins and managers see everything in the organization.
package crm

import (
	uierrors "github.com/dalemusser/leadscout/internal/app/features/errors"
	crmentrystore "github.com/dalemusser/leadscout/internal/app/store/crmentries"
	crmliststore "github.com/dalemusser/leadscout/internal/app/store/crmlists"
	userstore "github.com/dalemusser/leadscout/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB      *mongo.Database
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
	Lists   *crmliststore.Store
	Entries *crmentrystore.Store
	Users   *userstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Log:     logger,
		ErrLog:  errLog,
		Lists:   crmliststore.New(db),
		Entries: crmentrystore.New(db),
		Users:   userstore.New(db),
	}
}
