package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dalemusser/bloodlink/internal/app/system/apperr"
)

func TestKindHTTPStatus(t *testing.T) {
	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.KindValidation, http.StatusBadRequest},
		{apperr.KindConflict, http.StatusBadRequest},
		{apperr.KindInvalidOperation, http.StatusBadRequest},
		{apperr.KindUnauthenticated, http.StatusUnauthorized},
		{apperr.KindForbidden, http.StatusForbidden},
		{apperr.KindNotFound, http.StatusNotFound},
		{apperr.KindUpstream, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	base := apperr.Conflict("This payment has already been processed")
	wrapped := fmt.Errorf("confirm: %w", base)

	if got := apperr.KindOf(wrapped); got != apperr.KindConflict {
		t.Errorf("KindOf() = %v, want conflict", got)
	}
	if !apperr.Is(wrapped, apperr.KindConflict) {
		t.Error("Is(wrapped, KindConflict) = false, want true")
	}
}

func TestKindOf_PlainError(t *testing.T) {
	if got := apperr.KindOf(errors.New("boom")); got != apperr.KindUpstream {
		t.Errorf("KindOf(plain) = %v, want upstream", got)
	}
}

func TestUpstream_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := apperr.Upstream("Error confirming payment", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Error() != "Error confirming payment: connection reset" {
		t.Errorf("Error() = %q", err.Error())
	}
}
