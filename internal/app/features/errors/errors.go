// internal/app/features/errors/errors.go
package errors

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/bloodlink/internal/app/system/respond"
	"go.uber.org/zap"
)

// Handler writes the JSON envelopes for unmatched routes and recovered
// panics.
type Handler struct {
	Log *zap.Logger
}

// NewHandler constructs an errors Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// NotFound answers any route nothing else matched.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Log.Debug("route not found", zap.String("method", r.Method), zap.String("path", r.URL.RequestURI()))
	respond.Fail(w, http.StatusNotFound, fmt.Sprintf("Route not found: %s", r.URL.RequestURI()))
}

// MethodNotAllowed is NotFound's twin for a known path with the wrong verb.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.NotFound(w, r)
}

// Recover turns a handler panic into a 500 envelope.
func (h *Handler) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			h.Log.Error("panic serving request",
				zap.Any("panic", rec),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Stack("stack"))
			respond.Fail(w, http.StatusInternalServerError, "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
