// internal/app/features/donationrequests/handler.go
package donationrequests

import (
	"github.com/dalemusser/bloodlink/internal/app/lifecycle"
	"go.uber.org/zap"
)

// Handler serves the donation request API.
type Handler struct {
	Requests *lifecycle.Manager
	Log      *zap.Logger
}

func NewHandler(requests *lifecycle.Manager, logger *zap.Logger) *Handler {
	return &Handler{Requests: requests, Log: logger}
}
