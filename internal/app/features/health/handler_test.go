package health_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/bloodlink/internal/app/features/health"
	"github.com/dalemusser/bloodlink/internal/testutil"
	"go.uber.org/zap"
)

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), zap.NewNop())

	rec := testutil.NewRecorder()
	handler.Serve(rec, testutil.NewJSONRequest(t, http.MethodGet, "/health", nil))

	rec.AssertStatus(t, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" && ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.JSON(t)
	if body["success"] != true || body["database"] != "Connected" {
		t.Errorf("body = %v", body)
	}
	rec.AssertMessage(t, "Server is healthy")
}

func TestServe_NoClient(t *testing.T) {
	handler := health.NewHandler(nil, zap.NewNop())

	rec := testutil.NewRecorder()
	health.Routes(handler).ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodGet, "/", nil))

	rec.AssertStatus(t, http.StatusServiceUnavailable)
	body := rec.JSON(t)
	if body["success"] != false || body["database"] != "Disconnected" {
		t.Errorf("body = %v", body)
	}
}
