// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/bloodlink/internal/app/store/users"
	"github.com/dalemusser/bloodlink/internal/app/system/authutil"
	"github.com/dalemusser/bloodlink/internal/app/system/respond"
	"github.com/dalemusser/bloodlink/internal/app/system/timeouts"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.DBShortTimeout,
		Medium: appCfg.DBMediumTimeout,
	})
	respond.Configure(coreCfg.Env != "prod")

	if appCfg.AdminEmail != "" {
		users := userstore.New(deps.MongoDatabase)
		if err := ensureAdmin(ctx, users, appCfg.AdminEmail, appCfg.AdminPassword, logger); err != nil {
			return fmt.Errorf("admin bootstrap: %w", err)
		}
	}

	if deps.AuditRetention != nil {
		deps.AuditRetention.Start()
	}
	return nil
}

// ensureAdmin promotes the account with email to an active admin. When no
// such account exists it is created if password is non-empty, otherwise a
// warning is logged and startup continues.
func ensureAdmin(ctx context.Context, users *userstore.Store, email, password string, logger *zap.Logger) error {
	u, err := users.GetByEmailWithPassword(ctx, email)
	switch {
	case err == nil:
		if u.Role == models.RoleAdmin && u.Status == models.StatusActive {
			return nil
		}
		if _, err := users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
			return err
		}
		if _, err := users.SetStatus(ctx, u.ID, models.StatusActive); err != nil {
			return err
		}
		logger.Info("promoted account to admin", zap.String("email", u.Email), zap.String("previous_role", u.Role))
		return nil

	case errors.Is(err, mongo.ErrNoDocuments):
		if password == "" {
			logger.Warn("admin_email has no account and admin_password is empty; skipping admin bootstrap",
				zap.String("email", email))
			return nil
		}
		hash, err := authutil.HashPassword(password)
		if err != nil {
			return err
		}
		created, err := users.Create(ctx, models.User{
			Name:         "Administrator",
			Email:        email,
			PasswordHash: hash,
			BloodGroup:   "O+",
			District:     "Dhaka",
			Upazila:      "Mirpur",
			Role:         models.RoleAdmin,
			Status:       models.StatusActive,
		})
		if err != nil {
			return err
		}
		logger.Info("created admin account", zap.String("email", created.Email))
		return nil

	default:
		return err
	}
}
