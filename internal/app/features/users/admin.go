// internal/app/features/users/admin.go
package users

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/bloodlink/internal/app/store/audit"
	userstore "github.com/dalemusser/bloodlink/internal/app/store/users"
	"github.com/dalemusser/bloodlink/internal/app/system/apperr"
	"github.com/dalemusser/bloodlink/internal/app/system/authz"
	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/app/system/respond"
	"github.com/dalemusser/bloodlink/internal/app/system/timeouts"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeAll handles GET /api/users/all?status=&role=.
func (h *Handler) ServeAll(w http.ResponseWriter, r *http.Request) {
	f := userstore.ListFilter{
		Status: strings.ToLower(query.Get(r, "status")),
		Role:   strings.ToLower(query.Get(r, "role")),
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	p := paging.Parse(r)
	docs, total, err := h.Users.List(ctx, f, p)
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error getting users")
		return
	}
	respond.OK(w, respond.Fields{"users": paging.Build(docs, total, p)})
}

type statusInput struct {
	Status string `json:"status"`
}

type roleInput struct {
	Role string `json:"role"`
}

// HandleSetStatus handles PUT /api/users/{userId}/status.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	var in statusInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err, "Error updating user status")
		return
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if !models.IsValidStatus(status) {
		respond.Error(w, r, h.Log, apperr.Validation("Invalid status value"), "Error updating user status")
		return
	}
	id, ok := userID(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.NotFound("User not found"), "Error updating user status")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	u, err := h.Users.SetStatus(ctx, id, status)
	if err != nil {
		respond.Error(w, r, h.Log, notFound(err), "Error updating user status")
		return
	}
	admin, _ := authz.CallerFrom(r)
	h.Audit.UserStatusChanged(ctx, r, admin.ID, id, status)

	verb := "blocked"
	if status == models.StatusActive {
		verb = "unblocked"
	}
	respond.OK(w, respond.Fields{
		"message": fmt.Sprintf("User %s successfully", verb),
		"user":    u,
	})
}

// HandleSetRole handles PUT /api/users/{userId}/role.
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	var in roleInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err, "Error updating user role")
		return
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if !models.IsValidRole(role) {
		respond.Error(w, r, h.Log, apperr.Validation("Invalid role value"), "Error updating user role")
		return
	}
	id, ok := userID(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.NotFound("User not found"), "Error updating user role")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	u, err := h.Users.SetRole(ctx, id, role)
	if err != nil {
		respond.Error(w, r, h.Log, notFound(err), "Error updating user role")
		return
	}
	admin, _ := authz.CallerFrom(r)
	h.Audit.UserRoleChanged(ctx, r, admin.ID, id, role)

	respond.OK(w, respond.Fields{
		"message": fmt.Sprintf("User role updated to %s successfully", role),
		"user":    u,
	})
}

// ServeAuditLog handles GET /api/users/audit-log?category=&eventType=&userId=.
func (h *Handler) ServeAuditLog(w http.ResponseWriter, r *http.Request) {
	f := audit.QueryFilter{
		Category:  strings.ToLower(query.Get(r, "category")),
		EventType: strings.ToLower(query.Get(r, "eventType")),
	}
	if raw := query.Get(r, "userId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respond.Error(w, r, h.Log, apperr.Validation("Invalid user id"), "Error getting audit log")
			return
		}
		f.UserID = &id
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	p := paging.Parse(r)
	events, total, err := h.Audit.Events(ctx, f, p)
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error getting audit log")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	respond.OK(w, respond.Fields{"events": paging.Build(events, total, p)})
}

func userID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	return id, err == nil
}
