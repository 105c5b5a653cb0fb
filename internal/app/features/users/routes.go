// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/bloodlink/internal/app/system/auth"
	"github.com/dalemusser/bloodlink/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /api/users.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/search", h.ServeSearch)
	r.Get("/bangladesh/districts", h.ServeDistricts)
	r.Get("/bangladesh/upazilas/{district}", h.ServeUpazilas)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/profile", h.ServeProfile)
		pr.Put("/profile", h.HandleUpdateProfile)
		pr.Get("/dashboard/stats", h.ServeDashboardStats)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(authz.Require(authz.ManageUsers))
		ar.Get("/all", h.ServeAll)
		ar.Get("/audit-log", h.ServeAuditLog)
		ar.Put("/{userId}/status", h.HandleSetStatus)
		ar.Put("/{userId}/role", h.HandleSetRole)
	})
	return r
}
