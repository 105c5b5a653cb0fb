// internal/app/features/users/handler.go
package users

import (
	"github.com/dalemusser/bloodlink/internal/app/discovery"
	"github.com/dalemusser/bloodlink/internal/app/ledger"
	"github.com/dalemusser/bloodlink/internal/app/lifecycle"
	userstore "github.com/dalemusser/bloodlink/internal/app/store/users"
	"github.com/dalemusser/bloodlink/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler serves donor search, reference data, profiles, the dashboard
// user administration and the audit trail.
type Handler struct {
	Users    *userstore.Store
	Search   *discovery.Engine
	Requests *lifecycle.Manager
	Ledger   *ledger.Ledger
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, search *discovery.Engine, requests *lifecycle.Manager, l *ledger.Ledger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Search:   search,
		Requests: requests,
		Ledger:   l,
		Audit:    audit,
		Log:      logger,
	}
}
