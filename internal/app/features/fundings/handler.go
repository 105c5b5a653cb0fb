// internal/app/features/fundings/handler.go
package fundings

import (
	"github.com/dalemusser/bloodlink/internal/app/ledger"
	"github.com/dalemusser/bloodlink/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler serves the funding API.
type Handler struct {
	Ledger *ledger.Ledger
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

func NewHandler(l *ledger.Ledger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Ledger: l, Audit: audit, Log: logger}
}
