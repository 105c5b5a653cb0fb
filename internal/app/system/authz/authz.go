// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/bloodlink/internal/app/system/auth"
	"github.com/dalemusser/bloodlink/internal/app/system/respond"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Caller is the authenticated user a manager acts on behalf of.
type Caller struct {
	ID     primitive.ObjectID
	Name   string
	Email  string
	Role   string
	Status string
}

func (c Caller) IsAdmin() bool   { return c.Role == models.RoleAdmin }
func (c Caller) IsBlocked() bool { return c.Status == models.StatusBlocked }

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a
// found flag. Without a user, or with a malformed id, it returns "visitor",
// "", NilObjectID, false.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// CallerFrom builds a Caller from the request's signed-in user.
func CallerFrom(r *http.Request) (Caller, bool) {
	role, name, id, ok := UserCtx(r)
	if !ok {
		return Caller{}, false
	}
	u, _ := auth.CurrentUser(r)
	return Caller{
		ID:     id,
		Name:   name,
		Email:  u.Email,
		Role:   role,
		Status: strings.ToLower(u.Status),
	}, true
}

// Require gates a route on the permission table: signed-in users whose role
// has no grant for op get 403, requests without a user get 401.
func Require(op Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _, _, _ := UserCtx(r)
			if Decide(op, role, false) == Deny {
				respond.Fail(w, http.StatusForbidden, "Access denied. Insufficient permissions.")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
