// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	organizationstore "github.com/dalemusser/leadscout/internal/app/store/organizations"
	usagestore "github.com/dalemusser/leadscout/internal/app/store/usage"
	"github.com/dalemusser/leadscout/internal/app/system/quota"
	"github.com/dalemusser/leadscout/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// usageWorker is the daily quota reset worker, started here and stopped in
// Shutdown.
var usageWorker *workers.UsageReset

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. LeadScout
// uses it to launch the quota reset worker so daily limits roll over even
// when no requests arrive.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	tracker := quota.NewTracker(
		organizationstore.New(deps.MongoDatabase),
		usagestore.New(deps.MongoDatabase),
		logger,
	)
	usageWorker = workers.NewUsageReset(tracker, logger, appCfg.UsageResetInterval)
	usageWorker.Start()
	logger.Info("usage reset worker started",
		zap.Duration("interval", appCfg.UsageResetInterval))
	return nil
}
