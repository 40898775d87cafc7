// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, logging,
// CORS, timeouts). AppConfig is everything specific to LeadScout: database
// connection details, session keys, the directory API, quota housekeeping,
// OAuth credentials, and mail delivery.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string
	MongoDatabase string

	// Session management configuration
	SessionKey    string // secret for signing session cookies
	SessionName   string // cookie name
	SessionDomain string // cookie domain (blank means current host)
	StateKey      string // secret for signing the OAuth state cookie

	// Base URL for OAuth callbacks and links in email
	BaseURL string

	// Google OAuth (sign-in is disabled when the client id is empty)
	GoogleClientID     string
	GoogleClientSecret string

	// Business directory API. When the base URL is empty the app falls back
	// to a small built-in sample set (local development).
	DirectoryBaseURL string
	DirectoryAPIKey  string
	DirectoryRetries int

	// PromoCode unlocks the unlimited plan at organization creation.
	PromoCode string

	// UsageResetInterval is how often the reset worker checks for
	// organizations whose daily quota is due to roll over.
	UsageResetInterval time.Duration

	// Login rate limiting
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// Email/SMTP configuration (blank host disables outbound mail)
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string
}
