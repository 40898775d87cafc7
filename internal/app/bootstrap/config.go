// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for LeadScout. They are
// loaded via WAFFLE's config system with support for config files,
// LEADSCOUT_* environment variables, and command-line flags.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "leadscout", Desc: "MongoDB database name"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "leadscout-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "state_key", Default: "dev-only-state-key-change-me-0123456789AB", Desc: "OAuth state cookie signing key"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for OAuth callbacks and email links"},

	// Google OAuth
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID (empty disables Google sign-in)"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Business directory API
	{Name: "directory_base_url", Default: "", Desc: "Business directory API base URL (empty uses built-in sample data)"},
	{Name: "directory_api_key", Default: "", Desc: "Business directory API key"},
	{Name: "directory_retries", Default: 3, Desc: "Directory search retry attempts on transient failure"},

	// Plans and quota
	{Name: "promo_code", Default: "", Desc: "Promo code that unlocks the unlimited plan at signup (empty disables)"},
	{Name: "usage_reset_interval", Default: "1m", Desc: "How often the quota reset worker checks for due organizations"},

	// Login rate limiting
	{Name: "login_rate_limit", Default: 10, Desc: "Failed login attempts allowed per IP per window"},
	{Name: "login_rate_window", Default: "15m", Desc: "Login rate limit window"},

	// Email/SMTP
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (empty disables outbound mail)"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@leadscout.app", Desc: "From email address"},
	{Name: "mail_from_name", Default: "LeadScout", Desc: "From display name"},
}

// LoadConfig loads WAFFLE core config and app-specific config. It runs
// early in startup so both layers have configuration before any backends or
// handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LEADSCOUT", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		StateKey:      appValues.String("state_key"),

		BaseURL: appValues.String("base_url"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		DirectoryBaseURL: appValues.String("directory_base_url"),
		DirectoryAPIKey:  appValues.String("directory_api_key"),
		DirectoryRetries: appValues.Int("directory_retries"),

		PromoCode:          appValues.String("promo_code"),
		UsageResetInterval: appValues.Duration("usage_reset_interval", time.Minute),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", 15*time.Minute),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation before any
// connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret == "" {
		return fmt.Errorf("google_client_id is set but google_client_secret is empty")
	}
	if appCfg.DirectoryBaseURL != "" && appCfg.DirectoryAPIKey == "" {
		return fmt.Errorf("directory_base_url is set but directory_api_key is empty")
	}
	if appCfg.UsageResetInterval <= 0 {
		return fmt.Errorf("usage_reset_interval must be positive")
	}

	return nil
}
