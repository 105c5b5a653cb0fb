// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (BLOODLINK_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers the framework-level settings: ports, TLS, log level, body limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string
	JWTTTL    time.Duration

	// Payment gateway: "stripe" or "midtrans"
	PaymentProvider    string
	StripeSecretKey    string
	StripeAPIBase      string
	StripeCurrency     string
	MidtransServerKey  string
	MidtransProduction bool

	// StatsTimezone is the IANA zone used for daily/weekly/monthly
	// funding boundaries.
	StatsTimezone string

	// CORSAllowedOrigins is a comma-separated list; "*" allows any origin.
	CORSAllowedOrigins []string

	// Login throttling, attempts per minute per client IP.
	LoginRateLimit int
	LoginRateBurst int

	// Database call deadlines.
	DBShortTimeout  time.Duration
	DBMediumTimeout time.Duration

	// Admin bootstrap. An existing account with AdminEmail is promoted to
	// admin on startup; a missing one is created when AdminPassword is set.
	AdminEmail    string
	AdminPassword string

	// Audit logging per category: "all", "db", "log" or "off".
	AuditLogAuth    string
	AuditLogAdmin   string
	AuditLogPayment string

	// Stored audit events older than AuditRetention are removed every
	// AuditSweepInterval. Zero retention keeps events forever.
	AuditRetention     time.Duration
	AuditSweepInterval time.Duration
}
