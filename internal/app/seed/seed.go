package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	requeststore "github.com/dalemusser/bloodlink/internal/app/store/donationrequests"
	userstore "github.com/dalemusser/bloodlink/internal/app/store/users"
	"github.com/dalemusser/bloodlink/internal/app/system/authutil"
	"github.com/dalemusser/bloodlink/internal/app/system/indexes"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Options controls a seed run.
type Options struct {
	// Reset empties users, donation_requests and fundings first.
	Reset bool
	// Now anchors donation dates. Defaults to time.Now.
	Now func() time.Time
}

// Result counts what was inserted.
type Result struct {
	Users    int
	Requests int
}

// Run inserts f into db. Without Reset an existing email aborts the run
// with an error naming it.
func Run(ctx context.Context, db *mongo.Database, f Fixture, opts Options, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	if opts.Reset {
		for _, name := range []string{"users", "donation_requests", "fundings"} {
			if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
				return Result{}, fmt.Errorf("seed: clear %s: %w", name, err)
			}
		}
		logger.Info("cleared existing data")
	}

	if err := indexes.EnsureAll(ctx, db, logger); err != nil {
		return Result{}, fmt.Errorf("seed: indexes: %w", err)
	}

	users := userstore.New(db)
	var res Result

	for _, a := range f.Accounts {
		if _, err := createUser(ctx, users, models.User{
			Name: a.Name, Email: a.Email, Avatar: a.Avatar,
			BloodGroup: a.BloodGroup, District: a.District, Upazila: a.Upazila,
			Role: a.Role,
		}, a.Password); err != nil {
			return res, err
		}
		res.Users++
	}

	donors := make([]primitive.ObjectID, 0, f.Donors.Count)
	for i := 1; i <= f.Donors.Count; i++ {
		loc := f.Locations[i%len(f.Locations)]
		u, err := createUser(ctx, users, models.User{
			Name:       fmt.Sprintf(f.Donors.Name, i),
			Email:      fmt.Sprintf(f.Donors.Email, i),
			Avatar:     avatar(f.Donors.Avatar, i),
			BloodGroup: f.BloodGroups[i%len(f.BloodGroups)],
			District:   loc.District,
			Upazila:    loc.Upazila,
			Role:       models.RoleDonor,
		}, fmt.Sprintf(f.Donors.Password, i))
		if err != nil {
			return res, err
		}
		donors = append(donors, u.ID)
		res.Users++
	}

	requests := requeststore.New(db)
	day := now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < f.Requests.Count; i++ {
		if _, err := requests.Create(ctx, buildRequest(f, donors, i, day)); err != nil {
			return res, fmt.Errorf("seed: request %d: %w", i+1, err)
		}
		res.Requests++
	}

	logger.Info("database seeded", zap.Int("users", res.Users), zap.Int("requests", res.Requests))
	return res, nil
}

// buildRequest makes the i'th request. In-progress and done requests get
// the next donor in line, so the donor is never the requester.
func buildRequest(f Fixture, donors []primitive.ObjectID, i int, day time.Time) models.DonationRequest {
	loc := f.Locations[i%len(f.Locations)]
	status := models.RequestStatus(f.Requests.Statuses[i%len(f.Requests.Statuses)])
	bg, _ := models.NormalizeBloodGroup(f.BloodGroups[i%len(f.BloodGroups)])

	dr := models.DonationRequest{
		Requester:         donors[i%len(donors)],
		RecipientName:     fmt.Sprintf("Recipient %d", i+1),
		RecipientDistrict: loc.District,
		RecipientUpazila:  loc.Upazila,
		HospitalName:      f.Requests.Hospitals[i%len(f.Requests.Hospitals)],
		FullAddress:       fmt.Sprintf("Address line %d, %s, %s", i+1, loc.Upazila, loc.District),
		BloodGroup:        bg,
		DonationDate:      day.AddDate(0, 0, i),
		DonationTime:      fmt.Sprintf("%02d:00", 10+i%8),
		RequestMessage:    fmt.Sprintf(f.Requests.Message, i+1),
		Status:            status,
	}
	if status == models.RequestInProgress || status == models.RequestDone {
		donor := donors[(i+1)%len(donors)]
		dr.Donor = &donor
	}
	return dr
}

func createUser(ctx context.Context, users *userstore.Store, u models.User, password string) (models.User, error) {
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("seed: hash password for %s: %w", u.Email, err)
	}
	u.PasswordHash = hash
	created, err := users.Create(ctx, u)
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		return models.User{}, fmt.Errorf("seed: %s already exists (run with --reset to replace)", u.Email)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("seed: create %s: %w", u.Email, err)
	}
	return created, nil
}

func avatar(pattern string, i int) string {
	if pattern == "" {
		return ""
	}
	return fmt.Sprintf(pattern, i)
}
