// internal/app/features/fundings/routes.go
package fundings

import (
	"github.com/dalemusser/bloodlink/internal/app/system/auth"
	"github.com/dalemusser/bloodlink/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /api/fundings. Every route needs a token.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Post("/create-payment-intent", h.HandleCreateIntent)
	r.Post("/confirm-payment", h.HandleConfirm)
	r.Get("/", h.ServeList)
	r.Get("/my-fundings", h.ServeMine)
	r.With(authz.Require(authz.ViewFundingStats)).Get("/stats", h.ServeStats)
	return r
}
