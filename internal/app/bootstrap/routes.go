// internal/app/bootstrap/routes.go
package bootstrap

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/bloodlink/internal/app/discovery"
	authnfeature "github.com/dalemusser/bloodlink/internal/app/features/authn"
	donationrequestsfeature "github.com/dalemusser/bloodlink/internal/app/features/donationrequests"
	errorsfeature "github.com/dalemusser/bloodlink/internal/app/features/errors"
	fundingsfeature "github.com/dalemusser/bloodlink/internal/app/features/fundings"
	healthfeature "github.com/dalemusser/bloodlink/internal/app/features/health"
	homefeature "github.com/dalemusser/bloodlink/internal/app/features/home"
	usersfeature "github.com/dalemusser/bloodlink/internal/app/features/users"
	"github.com/dalemusser/bloodlink/internal/app/ledger"
	"github.com/dalemusser/bloodlink/internal/app/lifecycle"
	"github.com/dalemusser/bloodlink/internal/app/payments"
	"github.com/dalemusser/bloodlink/internal/app/store/audit"
	requeststore "github.com/dalemusser/bloodlink/internal/app/store/donationrequests"
	fundingstore "github.com/dalemusser/bloodlink/internal/app/store/fundings"
	userstore "github.com/dalemusser/bloodlink/internal/app/store/users"
	"github.com/dalemusser/bloodlink/internal/app/system/auditlog"
	"github.com/dalemusser/bloodlink/internal/app/system/auth"
	"github.com/dalemusser/bloodlink/internal/app/system/metrics"
	"github.com/dalemusser/bloodlink/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// services is everything the feature handlers are built from.
type services struct {
	client   *mongo.Client
	tokens   *auth.Manager
	users    *userstore.Store
	limiter  *ratelimit.LoginLimiter
	requests *lifecycle.Manager
	search   *discovery.Engine
	ledger   *ledger.Ledger
	audit    *auditlog.Logger
	origins  []string
}

func newServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) (*services, error) {
	tokens, err := auth.NewManager(appCfg.JWTSecret, appCfg.JWTTTL, userstore.NewFetcher(deps.MongoDatabase), logger)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	gw, err := payments.New(payments.Config{
		Provider:           appCfg.PaymentProvider,
		StripeSecretKey:    appCfg.StripeSecretKey,
		StripeAPIBase:      appCfg.StripeAPIBase,
		StripeCurrency:     appCfg.StripeCurrency,
		MidtransServerKey:  appCfg.MidtransServerKey,
		MidtransProduction: appCfg.MidtransProduction,
	})
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(appCfg.StatsTimezone)
	if err != nil {
		return nil, fmt.Errorf("stats timezone: %w", err)
	}

	users := userstore.New(deps.MongoDatabase)
	return &services{
		client:   deps.MongoClient,
		tokens:   tokens,
		users:    users,
		limiter:  ratelimit.NewLoginLimiter(float64(appCfg.LoginRateLimit), appCfg.LoginRateBurst),
		requests: lifecycle.New(requeststore.New(deps.MongoDatabase), users, logger),
		search:   discovery.New(users, logger),
		ledger:   ledger.New(fundingstore.New(deps.MongoDatabase), users, gw, logger, ledger.WithLocation(loc)),
		audit: auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
			Auth:    appCfg.AuditLogAuth,
			Admin:   appCfg.AuditLogAdmin,
			Payment: appCfg.AuditLogPayment,
		}),
		origins: appCfg.CORSAllowedOrigins,
	}, nil
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc, err := newServices(appCfg, deps, logger)
	if err != nil {
		logger.Error("service wiring failed", zap.Error(err))
		return nil, err
	}
	logger.Info("payment gateway ready", zap.String("provider", appCfg.PaymentProvider))
	return newRouter(svc, logger), nil
}

func newRouter(svc *services, logger *zap.Logger) http.Handler {
	errorsHandler := errorsfeature.NewHandler(logger)

	r := chi.NewRouter()
	r.Use(errorsHandler.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: svc.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	r.Use(metrics.Instrument(routePattern))

	// Global auth middleware: loads the bearer token's user into context.
	r.Use(svc.tokens.LoadUser)

	r.Get("/", homefeature.NewHandler(logger).ServeRoot)
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(svc.client, logger)))
	r.Handle("/metrics", metrics.Handler())

	authnHandler := authnfeature.NewHandler(svc.users, svc.tokens, svc.limiter, svc.audit, logger)
	r.Mount("/api/auth", authnfeature.Routes(authnHandler))

	usersHandler := usersfeature.NewHandler(svc.users, svc.search, svc.requests, svc.ledger, svc.audit, logger)
	r.Mount("/api/users", usersfeature.Routes(usersHandler))

	requestsHandler := donationrequestsfeature.NewHandler(svc.requests, logger)
	r.Mount("/api/donation-requests", donationrequestsfeature.Routes(requestsHandler))

	fundingsHandler := fundingsfeature.NewHandler(svc.ledger, svc.audit, logger)
	r.Mount("/api/fundings", fundingsfeature.Routes(fundingsHandler))

	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	return r
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}
