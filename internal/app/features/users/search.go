// internal/app/features/users/search.go
package users

import (
	"net/http"

	"github.com/dalemusser/bloodlink/internal/app/discovery"
	"github.com/dalemusser/bloodlink/internal/app/system/geodata"
	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/app/system/respond"
	"github.com/dalemusser/bloodlink/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
)

// ServeSearch handles GET /api/users/search?bloodGroup=&district=&upazila=.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	c := discovery.Criteria{
		BloodGroup: query.Get(r, "bloodGroup"),
		District:   query.Get(r, "district"),
		Upazila:    query.Get(r, "upazila"),
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	res, err := h.Search.Search(ctx, c, paging.Parse(r))
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error searching donors")
		return
	}
	out := respond.Fields{
		"donors":     res.Donors,
		"message":    res.Message,
		"searchType": res.SearchType,
	}
	if res.OriginalSearch != nil {
		out["originalSearch"] = res.OriginalSearch
	}
	respond.OK(w, out)
}

// ServeDistricts handles GET /api/users/bangladesh/districts.
func (h *Handler) ServeDistricts(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, respond.Fields{"districts": geodata.Districts()})
}

// ServeUpazilas handles GET /api/users/bangladesh/upazilas/{district}.
// Unknown districts get an empty list.
func (h *Handler) ServeUpazilas(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, respond.Fields{"upazilas": geodata.Upazilas(chi.URLParam(r, "district"))})
}
