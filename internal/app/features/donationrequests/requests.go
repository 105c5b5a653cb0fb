// internal/app/features/donationrequests/requests.go
package donationrequests

import (
	"net/http"

	"github.com/dalemusser/bloodlink/internal/app/lifecycle"
	"github.com/dalemusser/bloodlink/internal/app/system/authz"
	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/app/system/respond"
	"github.com/dalemusser/bloodlink/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
)

// HandleCreate handles POST /api/donation-requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)

	var in lifecycle.Input
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err, "Error creating donation request")
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	dr, err := h.Requests.Create(ctx, caller, in)
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error creating donation request")
		return
	}
	respond.Created(w, respond.Fields{
		"message":         "Donation request created successfully",
		"donationRequest": dr,
	})
}

// ServeList handles GET /api/donation-requests?status=&requesterId=&donorId=&page=&limit=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)
	q := lifecycle.ListQuery{
		Status:      query.Get(r, "status"),
		RequesterID: query.Get(r, "requesterId"),
		DonorID:     query.Get(r, "donorId"),
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	page, err := h.Requests.List(ctx, caller, q, paging.Parse(r))
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error getting donation requests")
		return
	}
	respond.OK(w, respond.Fields{"donationRequests": page})
}

// ServePublic handles GET /api/donation-requests/public?bloodGroup=&district=.
func (h *Handler) ServePublic(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	page, err := h.Requests.ListPublic(ctx, query.Get(r, "bloodGroup"), query.Get(r, "district"), paging.Parse(r))
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error getting donation requests")
		return
	}
	respond.OK(w, respond.Fields{"donationRequests": page})
}

// ServeGet handles GET /api/donation-requests/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	dr, err := h.Requests.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error getting donation request")
		return
	}
	respond.OK(w, respond.Fields{"donationRequest": dr})
}

// HandleUpdate handles PUT /api/donation-requests/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)

	var patch lifecycle.Patch
	if err := respond.DecodeJSON(r, &patch); err != nil {
		respond.Error(w, r, h.Log, err, "Error updating donation request")
		return
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	dr, err := h.Requests.Update(ctx, caller, chi.URLParam(r, "id"), patch)
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error updating donation request")
		return
	}
	respond.OK(w, respond.Fields{
		"message":         "Donation request updated successfully",
		"donationRequest": dr,
	})
}

// HandleDelete handles DELETE /api/donation-requests/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := h.Requests.Delete(ctx, caller, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, h.Log, err, "Error deleting donation request")
		return
	}
	respond.OK(w, respond.Fields{"message": "Donation request deleted successfully"})
}

// HandleDonate handles POST /api/donation-requests/{id}/donate.
func (h *Handler) HandleDonate(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	dr, err := h.Requests.Donate(ctx, caller, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error processing donation")
		return
	}
	respond.OK(w, respond.Fields{
		"message":         "Thank you for your donation!",
		"donationRequest": dr,
	})
}
