// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	aboutfeature "github.com/dalemusser/leadscout/internal/app/features/about"
	authgooglefeature "github.com/dalemusser/leadscout/internal/app/features/authgoogle"
	crmfeature "github.com/dalemusser/leadscout/internal/app/features/crm"
	errorsfeature "github.com/dalemusser/leadscout/internal/app/features/errors"
	healthfeature "github.com/dalemusser/leadscout/internal/app/features/health"
	historyfeature "github.com/dalemusser/leadscout/internal/app/features/history"
	homefeature "github.com/dalemusser/leadscout/internal/app/features/home"
	loginfeature "github.com/dalemusser/leadscout/internal/app/features/login"
	logoutfeature "github.com/dalemusser/leadscout/internal/app/features/logout"
	messagingfeature "github.com/dalemusser/leadscout/internal/app/features/messaging"
	organizationsfeature "github.com/dalemusser/leadscout/internal/app/features/organizations"
	searchfeature "github.com/dalemusser/leadscout/internal/app/features/search"
	signupfeature "github.com/dalemusser/leadscout/internal/app/features/signup"
	invitestore "github.com/dalemusser/leadscout/internal/app/store/invites"
	organizationstore "github.com/dalemusser/leadscout/internal/app/store/organizations"
	usagestore "github.com/dalemusser/leadscout/internal/app/store/usage"
	userstore "github.com/dalemusser/leadscout/internal/app/store/users"
	"github.com/dalemusser/leadscout/internal/app/system/auth"
	"github.com/dalemusser/leadscout/internal/app/system/directory"
	"github.com/dalemusser/leadscout/internal/app/system/invites"
	"github.com/dalemusser/leadscout/internal/app/system/mailer"
	"github.com/dalemusser/leadscout/internal/app/system/quota"
	"github.com/dalemusser/leadscout/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the app. WAFFLE calls
// this after configuration, DB connection, schema setup, and Startup have
// completed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Session manager; secure cookies in production.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh user data (role, permissions, disabled status) on each request.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Boot the template engine once at startup. Dev mode reloads templates.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	// Shared collaborators.
	tracker := quota.NewTracker(organizationstore.New(db), usagestore.New(db), logger)
	inviteSvc := invites.NewService(invitestore.New(db), userstore.New(db), logger)
	loginLimiter := ratelimit.New(appCfg.LoginRateLimit, appCfg.LoginRateWindow)
	dir := buildDirectoryClient(appCfg, logger)
	mail := buildMailer(appCfg, logger)

	googleEnabled := appCfg.GoogleClientID != ""

	r := chi.NewRouter()

	// Loads SessionUser into context for every request.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli).
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages.
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	aboutHandler := aboutfeature.NewHandler(logger)
	r.Mount("/about", aboutfeature.Routes(aboutHandler))

	// Authentication.
	loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, loginLimiter, googleEnabled, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	signupHandler := signupfeature.NewHandler(db, sessionMgr, errLog, logger)
	r.Mount("/signup", signupfeature.Routes(signupHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	if googleEnabled {
		googleHandler := authgooglefeature.NewHandler(db, sessionMgr, errLog,
			appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, appCfg.StateKey, logger)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	}

	// Error pages.
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Organization management: create/join, dashboard, team, invites.
	orgHandler := organizationsfeature.NewHandler(db, errLog, inviteSvc, tracker, appCfg.PromoCode, logger)
	r.Mount("/organizations", organizationsfeature.Routes(orgHandler, sessionMgr))

	// Business search, quota-charged.
	searchHandler := searchfeature.NewHandler(db, errLog, dir, tracker, logger)
	r.Mount("/search", searchfeature.Routes(searchHandler, sessionMgr))

	// CRM lists and entries.
	crmHandler := crmfeature.NewHandler(db, errLog, logger)
	r.Mount("/crm", crmfeature.Routes(crmHandler, sessionMgr))

	// Email templates and call scripts.
	messagingHandler := messagingfeature.NewHandler(db, errLog, mail, logger)
	r.Mount("/messaging", messagingfeature.Routes(messagingHandler, sessionMgr))

	// Search history and usage ledger.
	historyHandler := historyfeature.NewHandler(db, errLog, logger)
	r.Mount("/history", historyfeature.Routes(historyHandler, sessionMgr))

	return r, nil
}

// buildDirectoryClient picks the directory backend: the real HTTP API when
// configured, otherwise a small built-in sample set for local development.
func buildDirectoryClient(appCfg AppConfig, logger *zap.Logger) directory.Client {
	if appCfg.DirectoryBaseURL == "" {
		logger.Warn("no directory API configured, using built-in sample data")
		return &directory.Static{Businesses: sampleBusinesses}
	}
	client := directory.NewHTTPClient(appCfg.DirectoryBaseURL, appCfg.DirectoryAPIKey)
	if appCfg.DirectoryRetries > 1 {
		return directory.WithRetry(client, appCfg.DirectoryRetries, 500*time.Millisecond)
	}
	return client
}

// buildMailer picks the mail transport: SMTP when configured, otherwise a
// discard sink so test-send buttons don't error in development.
func buildMailer(appCfg AppConfig, logger *zap.Logger) mailer.Mailer {
	if appCfg.MailSMTPHost == "" {
		logger.Warn("no SMTP host configured, outbound mail is discarded")
		return mailer.Discard{}
	}
	return mailer.NewSMTP(appCfg.MailSMTPHost, appCfg.MailSMTPPort,
		appCfg.MailSMTPUser, appCfg.MailSMTPPass, appCfg.MailFrom, appCfg.MailFromName)
}

// sampleBusinesses seeds the development directory so search works out of
// the box.
var sampleBusinesses = []directory.Business{
	{Name: "Mid-Mo Plumbing", Phone: "573-555-0101", Website: "https://midmoplumbing.example", Address: "1200 Business Loop, Columbia, MO", Category: "plumbing", Rating: 4.6},
	{Name: "Tiger Town Electric", Phone: "573-555-0102", Address: "88 Broadway, Columbia, MO", Category: "electrician", Rating: 4.2},
	{Name: "Boone County Roofing", Phone: "573-555-0103", Address: "450 Vandiver Dr, Columbia, MO", Category: "roofing", Rating: 4.8},
	{Name: "Flat Branch Landscaping", Phone: "573-555-0104", Address: "12 Providence Rd, Columbia, MO", Category: "landscaping", Rating: 3.9},
	{Name: "Rock Bridge Auto Care", Phone: "573-555-0105", Address: "2301 S Providence Rd, Columbia, MO", Category: "auto repair", Rating: 4.4},
	{Name: "Como Pest Solutions", Phone: "573-555-0106", Address: "77 Paris Rd, Columbia, MO", Category: "pest control", Rating: 4.1},
}
