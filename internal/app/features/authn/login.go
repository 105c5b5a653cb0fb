// internal/app/features/authn/login.go
package authn

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/bloodlink/internal/app/system/apperr"
	"github.com/dalemusser/bloodlink/internal/app/system/authutil"
	"github.com/dalemusser/bloodlink/internal/app/system/authz"
	"github.com/dalemusser/bloodlink/internal/app/system/metrics"
	"github.com/dalemusser/bloodlink/internal/app/system/ratelimit"
	"github.com/dalemusser/bloodlink/internal/app/system/respond"
	"github.com/dalemusser/bloodlink/internal/app/system/timeouts"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const msgBadCredentials = "Invalid email or password"

// HandleLogin handles POST /api/auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := respond.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err, "Error logging in")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		respond.Error(w, r, h.Log, apperr.Validation("Email and password are required"), "Error logging in")
		return
	}

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, in.Email); !ok {
			metrics.LoginFailures.WithLabelValues("rate_limited").Inc()
			h.Audit.LoginFailedRateLimit(r.Context(), r, in.Email)
			h.Log.Warn("login throttled", zap.String("ip", ratelimit.ClientIP(r)), zap.String("email", in.Email))
			respond.Fail(w, http.StatusTooManyRequests, msg)
			return
		}
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	u, err := h.Users.GetByEmailWithPassword(ctx, in.Email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		authutil.BurnCompare(in.Password)
		metrics.LoginFailures.WithLabelValues("unknown_email").Inc()
		h.Audit.LoginFailedUnknownEmail(ctx, r, in.Email)
		respond.Error(w, r, h.Log, apperr.Unauthenticated(msgBadCredentials), "Error logging in")
		return
	}
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error logging in")
		return
	}

	if u.Status == models.StatusBlocked {
		metrics.LoginFailures.WithLabelValues("blocked").Inc()
		h.Audit.LoginFailedBlocked(ctx, r, u.ID, u.Email)
		respond.Error(w, r, h.Log, apperr.Forbidden("Your account has been blocked. Please contact admin."), "Error logging in")
		return
	}
	if !authutil.CheckPassword(in.Password, u.PasswordHash) {
		metrics.LoginFailures.WithLabelValues("bad_password").Inc()
		h.Audit.LoginFailedWrongPassword(ctx, r, u.ID, u.Email)
		respond.Error(w, r, h.Log, apperr.Unauthenticated(msgBadCredentials), "Error logging in")
		return
	}

	token, err := h.Tokens.Issue(u.ID.Hex(), u.Role)
	if err != nil {
		respond.Error(w, r, h.Log, apperr.Upstream("Error logging in", err), "Error logging in")
		return
	}
	if h.Limiter != nil {
		h.Limiter.Succeeded(in.Email)
	}
	h.Audit.LoginSuccess(ctx, r, u.ID, u.Email)
	h.Log.Info("user logged in", zap.String("user_id", u.ID.Hex()), zap.String("ip", ratelimit.ClientIP(r)))

	u.PasswordHash = ""
	respond.OK(w, respond.Fields{
		"message": "Login successful",
		"token":   token,
		"user":    u,
	})
}

// ServeMe handles GET /api/auth/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	u, err := h.Users.GetByID(ctx, caller.ID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, r, h.Log, apperr.NotFound("User not found"), "Error getting user data")
		return
	}
	if err != nil {
		respond.Error(w, r, h.Log, err, "Error getting user data")
		return
	}
	respond.OK(w, respond.Fields{"user": u})
}
