// internal/app/features/fundings/fundings.go
package fundings

import (
	"net/http"

	"github.com/dalemusser/bloodlink/internal/app/system/authz"
	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/app/system/respond"
	"github.com/dalemusser/bloodlink/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/shopspring/decimal"
)

type intentInput struct {
	Amount float64 `json:"amount"`
}

type confirmInput struct {
	PaymentIntentID string  `json:"paymentIntentId"`
	Amount          float64 `json:"amount"`
}

// HandleCreateIntent handles POST /api/fundings/create-payment-intent.
func (h *Handler) HandleCreateIntent(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)

	var in intentInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err, "Error creating payment intent")
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	res, err := h.Ledger.CreateIntent(ctx, caller, in.Amount)
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error creating payment intent")
		return
	}
	respond.OK(w, respond.Fields{
		"clientSecret":    res.ClientSecret,
		"paymentIntentId": res.PaymentIntentID,
	})
}

// HandleConfirm handles POST /api/fundings/confirm-payment.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)

	var in confirmInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err, "Error confirming payment")
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	f, err := h.Ledger.Confirm(ctx, caller, in.PaymentIntentID, in.Amount)
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error confirming payment")
		return
	}
	h.Audit.FundingConfirmed(ctx, r, caller.ID, f.TransactionID, f.PaymentMethod,
		decimal.NewFromFloat(f.Amount).StringFixed(2))
	respond.OK(w, respond.Fields{
		"message": "Payment completed and recorded successfully",
		"funding": f,
	})
}

// ServeList handles GET /api/fundings?userId=&page=&limit=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	page, total, err := h.Ledger.ListAll(ctx, query.Get(r, "userId"), paging.Parse(r))
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error fetching fundings")
		return
	}
	respond.OK(w, respond.Fields{"fundings": page, "totalFunding": total})
}

// ServeMine handles GET /api/fundings/my-fundings.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	page, total, err := h.Ledger.ListForUser(ctx, caller.ID, paging.Parse(r))
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error fetching user fundings")
		return
	}
	respond.OK(w, respond.Fields{"fundings": page, "userTotal": total})
}

// ServeStats handles GET /api/fundings/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	s, err := h.Ledger.Stats(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error fetching funding statistics")
		return
	}
	respond.OK(w, respond.Fields{"stats": s})
}
