package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/bloodlink/internal/app/system/auth"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents the signed-in user for handler tests.
type TestUser struct {
	ID     string
	Name   string
	Email  string
	Role   string
	Status string
}

func AdminUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Name: "Test Admin", Email: "admin@test.com", Role: models.RoleAdmin, Status: models.StatusActive}
}

func VolunteerUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Name: "Test Volunteer", Email: "volunteer@test.com", Role: models.RoleVolunteer, Status: models.StatusActive}
}

func DonorUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Name: "Test Donor", Email: "donor@test.com", Role: models.RoleDonor, Status: models.StatusActive}
}

// AsTestUser converts a stored user into a TestUser.
func AsTestUser(u models.User) TestUser {
	return TestUser{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Role: u.Role, Status: u.Status}
}

// WithUser adds a user to the request context, bypassing token checks.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		Status: user.Status,
	})
}

// NewJSONRequest builds a request with body encoded as JSON. A nil body
// sends no body.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest is NewJSONRequest with a user in context.
func NewAuthenticatedRequest(t *testing.T, method, target string, body any, user TestUser) *http.Request {
	t.Helper()
	return WithUser(NewJSONRequest(t, method, target, body), user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with JSON helpers.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

func (r *ResponseRecorder) AssertStatus(t testing.TB, expected int) {
	t.Helper()
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

// JSON decodes the response envelope.
func (r *ResponseRecorder) JSON(t testing.TB) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(r.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response %q: %v", r.Body.String(), err)
	}
	return body
}

// AssertMessage checks the envelope's message field.
func (r *ResponseRecorder) AssertMessage(t testing.TB, expected string) {
	t.Helper()
	if got, _ := r.JSON(t)["message"].(string); got != expected {
		t.Errorf("message: got %q, want %q", got, expected)
	}
}
