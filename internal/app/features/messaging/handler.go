// internal/app/features/messaging/handler.go

// The messaging feature manages an organization's outreach material:
// email templates and call scripts. Everyone in the organization can
// read them; admins and managers maintain them.
package messaging

import (
	uierrors "github.com/dalemusser/leadscout/internal/app/features/errors"
	templatestore "github.com/dalemusser/leadscout/internal/app/store/messagetemplates"
	"github.com/dalemusser/leadscout/internal/app/system/mailer"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB        *mongo.Database
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	Templates *templatestore.Store
	Mail      mailer.Mailer
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, mail mailer.Mailer, logger *zap.Logger) *Handler {
	if mail == nil {
		mail = mailer.Discard{}
	}
	return &Handler{
		DB:        db,
		Log:       logger,
		ErrLog:    errLog,
		Templates: templatestore.New(db),
		Mail:      mail,
	}
}
