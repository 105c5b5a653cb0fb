// internal/app/features/home/handler.go
package home

import (
	"net/http"
	"time"

	"github.com/dalemusser/bloodlink/internal/app/system/respond"
	"go.uber.org/zap"
)

// Handler serves the API banner at the root.
type Handler struct {
	Log *zap.Logger
	now func() time.Time
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		Log: logger,
		now: time.Now,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – banner                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, respond.Fields{
		"message":   "API is running successfully!",
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"tip":       "Welcome to your donation platform backend",
	})
}
