// internal/app/features/authn/handler.go
package authn

import (
	userstore "github.com/dalemusser/bloodlink/internal/app/store/users"
	"github.com/dalemusser/bloodlink/internal/app/system/auditlog"
	"github.com/dalemusser/bloodlink/internal/app/system/auth"
	"github.com/dalemusser/bloodlink/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler serves registration, login and the current-user lookup.
type Handler struct {
	Users   *userstore.Store
	Tokens  *auth.Manager
	Limiter *ratelimit.LoginLimiter
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

// NewHandler wires the handler. A nil limiter disables throttling and a
// nil audit logger disables auditing.
func NewHandler(users *userstore.Store, tokens *auth.Manager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:   users,
		Tokens:  tokens,
		Limiter: limiter,
		Audit:   audit,
		Log:     logger,
	}
}
