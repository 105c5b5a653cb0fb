// internal/app/features/donationrequests/routes.go
package donationrequests

import (
	"github.com/dalemusser/bloodlink/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /api/donation-requests. Reading a single request
// and the public feed need no token.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/public", h.ServePublic)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Get("/", h.ServeList)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/{id}/donate", h.HandleDonate)
	})
	return r
}
