// internal/app/features/users/profile.go
package users

import (
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/bloodlink/internal/app/store/users"
	"github.com/dalemusser/bloodlink/internal/app/system/apperr"
	"github.com/dalemusser/bloodlink/internal/app/system/authz"
	"github.com/dalemusser/bloodlink/internal/app/system/inputval"
	"github.com/dalemusser/bloodlink/internal/app/system/respond"
	"github.com/dalemusser/bloodlink/internal/app/system/timeouts"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

type profileInput struct {
	Name       string  `json:"name" validate:"required,min=2,max=50" label:"Name"`
	BloodGroup string  `json:"bloodGroup" validate:"required,bloodgroup" label:"Blood group"`
	District   string  `json:"district" validate:"required,max=100" label:"District"`
	Upazila    string  `json:"upazila" validate:"required,max=100" label:"Upazila"`
	Avatar     *string `json:"avatar" validate:"omitnil,omitempty,http_url" label:"Avatar"`
}

// ServeProfile handles GET /api/users/profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	u, err := h.Users.GetByID(ctx, caller.ID)
	if err != nil {
		respond.Error(w, r, h.Log, notFound(err), "Error getting profile")
		return
	}
	respond.OK(w, respond.Fields{"user": u})
}

// HandleUpdateProfile handles PUT /api/users/profile. Role, status and
// email are not editable here. An empty avatar leaves the current one.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)

	var in profileInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err, "Error updating profile")
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Avatar != nil {
		a := strings.TrimSpace(*in.Avatar)
		in.Avatar = &a
		if a == "" {
			in.Avatar = nil
		}
	}
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Error(w, r, h.Log, apperr.Validation(res.First()), "Error updating profile")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, caller.ID, userstore.ProfileUpdate{
		Name:       in.Name,
		BloodGroup: in.BloodGroup,
		District:   in.District,
		Upazila:    in.Upazila,
		Avatar:     in.Avatar,
	})
	if err != nil {
		respond.Error(w, r, h.Log, notFound(err), "Error updating profile")
		return
	}
	respond.OK(w, respond.Fields{
		"message": "Profile updated successfully",
		"user":    u,
	})
}

// DashboardStats is the summary shown on every dashboard.
type DashboardStats struct {
	TotalUsers            int64   `json:"totalUsers"`
	TotalDonationRequests int64   `json:"totalDonationRequests"`
	TotalFunding          float64 `json:"totalFunding"`
}

// ServeDashboardStats handles GET /api/users/dashboard/stats. Donors also
// get their three newest requests.
func (h *Handler) ServeDashboardStats(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	var (
		stats DashboardStats
		err   error
	)
	if stats.TotalUsers, err = h.Users.CountByRole(ctx, models.RoleDonor); err != nil {
		respond.Error(w, r, h.Log, err, "Error getting dashboard statistics")
		return
	}
	if stats.TotalDonationRequests, err = h.Requests.Count(ctx); err != nil {
		respond.Error(w, r, h.Log, err, "Error getting dashboard statistics")
		return
	}
	if stats.TotalFunding, err = h.Ledger.Total(ctx); err != nil {
		respond.Error(w, r, h.Log, err, "Error getting dashboard statistics")
		return
	}

	recent := []models.DonationRequestView{}
	if caller.Role == models.RoleDonor {
		if recent, err = h.Requests.Recent(ctx, caller.ID, 3); err != nil {
			respond.Error(w, r, h.Log, err, "Error getting dashboard statistics")
			return
		}
	}
	respond.OK(w, respond.Fields{
		"stats":           stats,
		"recentDonations": recent,
	})
}

// notFound maps a missing user to a 404 and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("User not found")
	}
	return err
}
