// Package respond writes the JSON envelope used by every API endpoint:
//
//	{ "success": bool, "message": "...", ...payload }
//
// Errors are classified with apperr. When detail is enabled (any env other
// than prod) the envelope also carries the underlying cause in "error".
package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/dalemusser/bloodlink/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Fields is the payload merged into the envelope.
type Fields map[string]any

var showDetail atomic.Bool

// Configure controls whether error causes are included in responses.
// Call it once at startup; production should pass false.
func Configure(detail bool) {
	showDetail.Store(detail)
}

// JSON writes payload with the given status and success=true.
func JSON(w http.ResponseWriter, status int, payload Fields) {
	body := make(Fields, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	write(w, status, body)
}

// OK is JSON with 200.
func OK(w http.ResponseWriter, payload Fields) {
	JSON(w, http.StatusOK, payload)
}

// Created is JSON with 201.
func Created(w http.ResponseWriter, payload Fields) {
	JSON(w, http.StatusCreated, payload)
}

// Fail writes a failure envelope with an explicit status and message.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, Fields{"success": false, "message": message})
}

// FailWith is Fail with extra payload fields.
func FailWith(w http.ResponseWriter, status int, message string, payload Fields) {
	body := make(Fields, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = false
	body["message"] = message
	write(w, status, body)
}

// Error classifies err and writes the failure envelope. fallback is the
// client message used when err carries none (plain store errors, panics
// converted upstream, etc.). 5xx are logged at error level, the rest at warn.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, fallback string) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	msg := fallback
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Message != "" {
		msg = ae.Message
	}

	body := Fields{"success": false, "message": msg}
	if showDetail.Load() {
		if cause := detail(err, ae); cause != "" {
			body["error"] = cause
		}
	}

	if log != nil {
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("kind", kind.String()),
			zap.Int("status", status),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			log.Error(fallback, fields...)
		} else {
			log.Warn(msg, fields...)
		}
	}

	write(w, status, body)
}

func detail(err error, ae *apperr.Error) string {
	if ae != nil {
		if ae.Err != nil {
			return ae.Err.Error()
		}
		return ""
	}
	return err.Error()
}

func write(w http.ResponseWriter, status int, body Fields) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// DecodeJSON reads a JSON request body into dst. A malformed body is a
// validation error.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.Validation("Request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("Invalid JSON body").Wrap(err)
	}
	return nil
}
