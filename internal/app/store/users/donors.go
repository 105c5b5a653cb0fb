package userstore

import (
	"context"

	"github.com/dalemusser/bloodlink/internal/app/system/normalize"
	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DonorFilter selects eligible donors. Empty fields are not filtered on.
// Matching is exact after folding, so "o+" finds "O+" and "dhaka" finds
// "Dhaka" but "O" does not find "O+".
type DonorFilter struct {
	BloodGroup string
	District   string
	Upazila    string
}

// eligibleRoles are the roles that appear in donor search.
var eligibleRoles = []string{models.RoleDonor, models.RoleVolunteer, models.RoleAdmin}

func (f DonorFilter) bson() bson.M {
	q := bson.M{
		"status": models.StatusActive,
		"role":   bson.M{"$in": eligibleRoles},
	}
	if f.BloodGroup != "" {
		bg, ok := models.NormalizeBloodGroup(f.BloodGroup)
		if !ok {
			// unknown groups match nothing rather than everything
			bg = f.BloodGroup
		}
		q["blood_group"] = bg
	}
	if f.District != "" {
		q["district_ci"] = normalize.Fold(f.District)
	}
	if f.Upazila != "" {
		q["upazila_ci"] = normalize.Fold(f.Upazila)
	}
	return q
}

// FindDonors returns one page of active, eligible users matching f, newest
// first, and the total match count. Password hashes are never loaded.
func (s *Store) FindDonors(ctx context.Context, f DonorFilter, p paging.Params) ([]models.User, int64, error) {
	return s.page(ctx, f.bson(), p)
}

// Summaries loads the public summary of each id. withLocation adds
// district and upazila. Missing users are absent from the map.
func (s *Store) Summaries(ctx context.Context, ids []primitive.ObjectID, withLocation bool) (map[primitive.ObjectID]models.UserSummary, error) {
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	proj := bson.M{"_id": 1, "name": 1, "email": 1, "avatar": 1}
	if withLocation {
		proj["district"] = 1
		proj["upazila"] = 1
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": dedupe(ids)}}, options.Find().SetProjection(proj))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var us models.UserSummary
		if err := cur.Decode(&us); err != nil {
			return nil, err
		}
		out[us.ID] = us
	}
	return out, cur.Err()
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id.IsZero() {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
