package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/bloodlink/internal/app/system/respond"
	"github.com/dalemusser/bloodlink/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Log    *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client and logger.
func NewHandler(client *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		Log:    logger,
	}
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "success":true, "message":"Server is healthy", "database":"Connected", "timestamp":"…" }
//
// On DB failure: 503 with success false and database "Disconnected".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	now := time.Now().UTC().Format(time.RFC3339)

	if h.Client == nil {
		h.unhealthy(w, now)
		return
	}
	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		h.unhealthy(w, now)
		return
	}

	respond.OK(w, respond.Fields{
		"message":   "Server is healthy",
		"database":  "Connected",
		"timestamp": now,
	})
}

func (h *Handler) unhealthy(w http.ResponseWriter, now string) {
	respond.FailWith(w, http.StatusServiceUnavailable, "Database unavailable", respond.Fields{
		"database":  "Disconnected",
		"timestamp": now,
	})
}
