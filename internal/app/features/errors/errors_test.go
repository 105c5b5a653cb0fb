package errors_test

import (
	"net/http"
	"testing"

	apperrors "github.com/dalemusser/bloodlink/internal/app/features/errors"
	"github.com/dalemusser/bloodlink/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func TestNotFound_EchoesPath(t *testing.T) {
	h := apperrors.NewHandler(zap.NewNop())
	r := chi.NewRouter()
	r.Get("/known", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodGet, "/api/nope?x=1", nil))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertMessage(t, "Route not found: /api/nope?x=1")

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodDelete, "/known", nil))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestRecover(t *testing.T) {
	h := apperrors.NewHandler(zap.NewNop())
	boom := h.Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := testutil.NewRecorder()
	boom.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodGet, "/", nil))
	rec.AssertStatus(t, http.StatusInternalServerError)
	rec.AssertMessage(t, "Internal server error")
}
