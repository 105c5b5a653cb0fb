// internal/app/features/authn/register.go
package authn

import (
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/bloodlink/internal/app/store/users"
	"github.com/dalemusser/bloodlink/internal/app/system/apperr"
	"github.com/dalemusser/bloodlink/internal/app/system/authutil"
	"github.com/dalemusser/bloodlink/internal/app/system/inputval"
	"github.com/dalemusser/bloodlink/internal/app/system/respond"
	"github.com/dalemusser/bloodlink/internal/app/system/timeouts"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"go.uber.org/zap"
)

type registerInput struct {
	Name            string `json:"name" validate:"required,min=2,max=50" label:"Name"`
	Email           string `json:"email" validate:"required,email" label:"Email"`
	Password        string `json:"password" validate:"required,min=6,max=72" label:"Password"`
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=Password" label:"Confirm password"`
	Avatar          string `json:"avatar" validate:"omitempty,http_url" label:"Avatar"`
	BloodGroup      string `json:"bloodGroup" validate:"required,bloodgroup" label:"Blood group"`
	District        string `json:"district" validate:"required,max=100" label:"District"`
	Upazila         string `json:"upazila" validate:"required,max=100" label:"Upazila"`
}

// HandleRegister handles POST /api/auth/register. New accounts are active
// donors.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err, "Error registering user")
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Avatar = strings.TrimSpace(in.Avatar)
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Error(w, r, h.Log, apperr.Validation(res.First()), "Error registering user")
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		respond.Error(w, r, h.Log, apperr.Upstream("Error registering user", err), "Error registering user")
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Avatar:       in.Avatar,
		BloodGroup:   in.BloodGroup,
		District:     in.District,
		Upazila:      in.Upazila,
		Role:         models.RoleDonor,
		Status:       models.StatusActive,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		respond.Error(w, r, h.Log, apperr.Conflict("User already exists with this email"), "Error registering user")
		return
	}
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error registering user")
		return
	}

	token, err := h.Tokens.Issue(u.ID.Hex(), u.Role)
	if err != nil {
		respond.Error(w, r, h.Log, apperr.Upstream("Error registering user", err), "Error registering user")
		return
	}
	h.Audit.UserRegistered(ctx, r, u.ID, u.Email)
	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()), zap.String("email", u.Email))

	respond.Created(w, respond.Fields{
		"message": "User registered successfully",
		"token":   token,
		"user":    u,
	})
}
