// internal/app/features/history/handler.go

// The history feature shows an organization's past directory searches and
// its daily usage ledger. Access requires the view-history permission flag
// (admins always pass). Saved searches carry a share token so a teammate can
// link straight to one.
package history

import (
	uierrors "github.com/dalemusser/leadscout/internal/app/features/errors"
	savedsearchstore "github.com/dalemusser/leadscout/internal/app/store/savedsearches"
	usagestore "github.com/dalemusser/leadscout/internal/app/store/usage"
	userstore "github.com/dalemusser/leadscout/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 50

type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Saved  *savedsearchstore.Store
	Usage  *usagestore.Store
	Users  *userstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
		Saved:  savedsearchstore.New(db),
		Usage:  usagestore.New(db),
		Users:  userstore.New(db),
	}
}
