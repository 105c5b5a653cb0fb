// Package auth issues and verifies bearer tokens and carries the signed-in
// user through the request context.
//
// Tokens are HS256 JWTs holding the user id and role. The role in the token
// is informational: on every request LoadUser reloads the user through a
// UserFetcher so role changes and blocks apply immediately.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/bloodlink/internal/app/system/respond"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// DefaultTTL is the token lifetime when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

// SessionUser is the signed-in user as seen by handlers.
type SessionUser struct {
	ID     string
	Name   string
	Email  string
	Role   string
	Status string
}

// UserFetcher loads fresh user data on each request. It returns nil when
// the user no longer exists.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// Claims is the token payload.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrNoSecret     = errors.New("auth: jwt secret is empty")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Manager signs tokens and authenticates requests.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	fetcher UserFetcher
	log     *zap.Logger
	now     func() time.Time
}

func NewManager(secret string, ttl time.Duration, fetcher UserFetcher, logger *zap.Logger) (*Manager, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		secret:  []byte(secret),
		ttl:     ttl,
		fetcher: fetcher,
		log:     logger,
		now:     time.Now,
	}, nil
}

// Issue signs a token for userID.
func (m *Manager) Issue(userID, role string) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses and validates a token. Only HS256 is accepted.
func (m *Manager) Verify(token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// LoadUser injects the user into context when the request carries a valid
// bearer token for an existing user. It never rejects; RequireSignedIn does.
func (m *Manager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearer(r)
		if tok == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := m.Verify(tok)
		if err != nil {
			m.log.Debug("rejected bearer token", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if m.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}
		if u := m.fetcher.FetchUser(r.Context(), claims.UserID); u != nil {
			r = WithUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Context helpers                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithUser returns r carrying u.
func WithUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser is WithUser for handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return WithUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Gates                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// RequireSignedIn rejects requests without a user in context with 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		if bearer(r) == "" {
			respond.Fail(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}
		respond.Fail(w, http.StatusUnauthorized, "Token is not valid")
	})
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}
