package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/bloodlink/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts test documents directly, bypassing stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// UserOpts overrides CreateUser defaults. Zero fields keep the default.
type UserOpts struct {
	Role       string
	Status     string
	BloodGroup string
	District   string
	Upazila    string
	CreatedAt  time.Time
}

// CreateUser inserts an active donor in Dhaka/Mirpur with blood group O+
// unless opts say otherwise. The password hash is a fixed placeholder.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string, opts UserOpts) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$10$fixturefixturefixturefixturefixturefixturefixtureab",
		BloodGroup:   pick(opts.BloodGroup, "O+"),
		District:     pick(opts.District, "Dhaka"),
		Upazila:      pick(opts.Upazila, "Mirpur"),
		Role:         pick(opts.Role, models.RoleDonor),
		Status:       pick(opts.Status, models.StatusActive),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if !opts.CreatedAt.IsZero() {
		u.CreatedAt = opts.CreatedAt
	}
	u.DistrictCI = text.Fold(u.District)
	u.UpazilaCI = text.Fold(u.Upazila)

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, UserOpts{Role: models.RoleAdmin})
}

func (f *Fixtures) CreateVolunteer(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, UserOpts{Role: models.RoleVolunteer})
}

func (f *Fixtures) CreateBlockedUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, UserOpts{Status: models.StatusBlocked})
}

// CreateDonationRequest inserts a request owned by requester with the given
// status. Donor is only set when non-nil.
func (f *Fixtures) CreateDonationRequest(ctx context.Context, requester primitive.ObjectID, status models.RequestStatus, donor *primitive.ObjectID) models.DonationRequest {
	f.t.Helper()

	now := time.Now().UTC()
	dr := models.DonationRequest{
		ID:                primitive.NewObjectID(),
		Requester:         requester,
		RecipientName:     "Test Recipient",
		RecipientDistrict: "Dhaka",
		RecipientUpazila:  "Mirpur",
		HospitalName:      "Dhaka Medical College Hospital",
		FullAddress:       "Secretariat Road, Dhaka 1000",
		BloodGroup:        "O+",
		DonationDate:      now.AddDate(0, 0, 3).Truncate(24 * time.Hour),
		DonationTime:      "10:00",
		RequestMessage:    "Need blood urgently for surgery",
		Status:            status,
		Donor:             donor,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if _, err := f.db.Collection("donation_requests").InsertOne(ctx, dr); err != nil {
		f.t.Fatalf("failed to create test donation request: %v", err)
	}
	return dr
}

// CreateFunding inserts a funding entry with the given status and time.
func (f *Fixtures) CreateFunding(ctx context.Context, user primitive.ObjectID, amount float64, status string, at time.Time) models.Funding {
	f.t.Helper()

	fd := models.Funding{
		ID:            primitive.NewObjectID(),
		User:          user,
		Amount:        amount,
		TransactionID: "pi_" + primitive.NewObjectID().Hex(),
		Status:        status,
		PaymentMethod: "stripe",
		CreatedAt:     at.UTC(),
	}
	if _, err := f.db.Collection("fundings").InsertOne(ctx, fd); err != nil {
		f.t.Fatalf("failed to create test funding: %v", err)
	}
	return fd
}

func pick(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
