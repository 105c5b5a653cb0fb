// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/bloodlink/internal/app/payments"
	"github.com/dalemusser/bloodlink/internal/app/system/auditlog"
	"github.com/dalemusser/bloodlink/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for BloodLink.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: BLOODLINK_MONGO_URI, BLOODLINK_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "bloodlink", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HMAC secret for bearer tokens (must be strong in production)"},
	{Name: "jwt_ttl", Default: "168h", Desc: "Bearer token lifetime (e.g., 24h, 168h)"},

	// Payment gateway
	{Name: "payment_provider", Default: payments.ProviderStripe, Desc: "Payment gateway: 'stripe' or 'midtrans'"},
	{Name: "stripe_secret_key", Default: "", Desc: "Stripe secret API key"},
	{Name: "stripe_api_base", Default: "https://api.stripe.com", Desc: "Stripe API base URL"},
	{Name: "stripe_currency", Default: "usd", Desc: "Currency for Stripe payment intents"},
	{Name: "midtrans_server_key", Default: "", Desc: "Midtrans server key"},
	{Name: "midtrans_production", Default: false, Desc: "Use the Midtrans production environment"},

	{Name: "stats_timezone", Default: "UTC", Desc: "IANA time zone for funding stats boundaries"},
	{Name: "cors_allowed_origins", Default: "*", Desc: "Comma-separated list of allowed CORS origins"},

	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts allowed per minute per client IP"},
	{Name: "login_rate_burst", Default: 5, Desc: "Login attempt burst size"},

	{Name: "db_short_timeout", Default: "5s", Desc: "Deadline for single-document database calls"},
	{Name: "db_medium_timeout", Default: "15s", Desc: "Deadline for lists, aggregates and gateway calls"},

	{Name: "admin_email", Default: "", Desc: "Email of the admin account to promote/create on startup"},
	{Name: "admin_password", Default: "", Desc: "Password used when the admin account has to be created"},

	// Audit logging: all (db+zap), db, log (zap only), off
	{Name: "audit_log_auth", Default: auditlog.ModeAll, Desc: "Audit logging for auth events: all, db, log, off"},
	{Name: "audit_log_admin", Default: auditlog.ModeAll, Desc: "Audit logging for admin events: all, db, log, off"},
	{Name: "audit_log_payment", Default: auditlog.ModeAll, Desc: "Audit logging for payment events: all, db, log, off"},
	{Name: "audit_retention", Default: "2160h", Desc: "How long stored audit events are kept (0 keeps them forever)"},
	{Name: "audit_sweep_interval", Default: "1h", Desc: "How often expired audit events are removed"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "BLOODLINK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    appValues.Duration("jwt_ttl", 7*24*time.Hour),

		PaymentProvider:    strings.ToLower(strings.TrimSpace(appValues.String("payment_provider"))),
		StripeSecretKey:    appValues.String("stripe_secret_key"),
		StripeAPIBase:      appValues.String("stripe_api_base"),
		StripeCurrency:     appValues.String("stripe_currency"),
		MidtransServerKey:  appValues.String("midtrans_server_key"),
		MidtransProduction: appValues.Bool("midtrans_production"),

		StatsTimezone:      appValues.String("stats_timezone"),
		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),

		LoginRateLimit: appValues.Int("login_rate_limit"),
		LoginRateBurst: appValues.Int("login_rate_burst"),

		DBShortTimeout:  appValues.Duration("db_short_timeout", timeouts.DefaultShort),
		DBMediumTimeout: appValues.Duration("db_medium_timeout", timeouts.DefaultMedium),

		AdminEmail:    strings.TrimSpace(appValues.String("admin_email")),
		AdminPassword: appValues.String("admin_password"),

		AuditLogAuth:    strings.ToLower(appValues.String("audit_log_auth")),
		AuditLogAdmin:   strings.ToLower(appValues.String("audit_log_admin")),
		AuditLogPayment: strings.ToLower(appValues.String("audit_log_payment")),

		AuditRetention:     appValues.Duration("audit_retention", 90*24*time.Hour),
		AuditSweepInterval: appValues.Duration("audit_sweep_interval", time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env == "prod" && (appCfg.JWTSecret == devJWTSecret || len(appCfg.JWTSecret) < 32) {
		return fmt.Errorf("jwt_secret must be set to at least 32 characters in production")
	}
	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}

	switch appCfg.PaymentProvider {
	case payments.ProviderStripe, payments.ProviderMidtrans:
	default:
		return fmt.Errorf("unknown payment_provider %q (want stripe or midtrans)", appCfg.PaymentProvider)
	}

	if _, err := time.LoadLocation(appCfg.StatsTimezone); err != nil {
		return fmt.Errorf("invalid stats_timezone %q: %w", appCfg.StatsTimezone, err)
	}

	for name, mode := range map[string]string{
		"audit_log_auth":    appCfg.AuditLogAuth,
		"audit_log_admin":   appCfg.AuditLogAdmin,
		"audit_log_payment": appCfg.AuditLogPayment,
	} {
		switch mode {
		case "", auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
		default:
			return fmt.Errorf("invalid %s %q (want all, db, log or off)", name, mode)
		}
	}

	if appCfg.AuditRetention < 0 || (appCfg.AuditRetention > 0 && appCfg.AuditSweepInterval <= 0) {
		return fmt.Errorf("audit_retention must not be negative and audit_sweep_interval must be positive")
	}

	if appCfg.LoginRateLimit < 1 || appCfg.LoginRateBurst < 1 {
		return fmt.Errorf("login_rate_limit and login_rate_burst must be positive")
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
