package requeststore

import (
	"context"
	"time"

	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("donation_requests")}
}

// Create inserts dr with a new id and fresh timestamps.
func (s *Store) Create(ctx context.Context, dr models.DonationRequest) (models.DonationRequest, error) {
	now := models.StoredTime(time.Now())
	dr.ID = primitive.NewObjectID()
	dr.CreatedAt = now
	dr.UpdatedAt = now
	if dr.Status == "" {
		dr.Status = models.RequestPending
	}
	if _, err := s.c.InsertOne(ctx, dr); err != nil {
		return models.DonationRequest{}, err
	}
	return dr, nil
}

// GetByID returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.DonationRequest, error) {
	var dr models.DonationRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&dr); err != nil {
		return nil, err
	}
	return &dr, nil
}

// ListFilter narrows List. Zero fields are ignored.
type ListFilter struct {
	Status            models.RequestStatus
	Requester         *primitive.ObjectID
	Donor             *primitive.ObjectID
	BloodGroup        string
	RecipientDistrict string
}

func (f ListFilter) bson() bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Requester != nil {
		q["requester"] = *f.Requester
	}
	if f.Donor != nil {
		q["donor"] = *f.Donor
	}
	if f.BloodGroup != "" {
		q["blood_group"] = f.BloodGroup
	}
	if f.RecipientDistrict != "" {
		q["recipient_district"] = f.RecipientDistrict
	}
	return q
}

// List returns one page, newest first, and the total match count.
func (s *Store) List(ctx context.Context, f ListFilter, p paging.Params) ([]models.DonationRequest, int64, error) {
	filter := f.bson()
	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	find := p.ApplyToFind(options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []models.DonationRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Recent returns the newest n requests made by requester.
func (s *Store) Recent(ctx context.Context, requester primitive.ObjectID, n int64) ([]models.DonationRequest, error) {
	cur, err := s.c.Find(ctx, bson.M{"requester": requester},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(n))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.DonationRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count counts all requests.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// Update is a partial write. Nil fields are left unchanged. Requester and
// donor are not editable here.
type Update struct {
	RecipientName     *string
	RecipientDistrict *string
	RecipientUpazila  *string
	HospitalName      *string
	FullAddress       *string
	BloodGroup        *string
	DonationDate      *time.Time
	DonationTime      *string
	RequestMessage    *string
	Status            *models.RequestStatus
}

// IsEmpty reports whether no field is set.
func (u Update) IsEmpty() bool {
	return len(u.set()) == 0
}

func (u Update) set() bson.M {
	m := bson.M{}
	put := func(key string, v *string) {
		if v != nil {
			m[key] = *v
		}
	}
	put("recipient_name", u.RecipientName)
	put("recipient_district", u.RecipientDistrict)
	put("recipient_upazila", u.RecipientUpazila)
	put("hospital_name", u.HospitalName)
	put("full_address", u.FullAddress)
	put("blood_group", u.BloodGroup)
	put("donation_time", u.DonationTime)
	put("request_message", u.RequestMessage)
	if u.DonationDate != nil {
		m["donation_date"] = u.DonationDate.UTC()
	}
	if u.Status != nil {
		m["status"] = *u.Status
	}
	return m
}

// Apply writes upd if the request is still in status expect and returns the
// updated document. It returns mongo.ErrNoDocuments when the request is gone
// or its status changed since it was read.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, expect models.RequestStatus, upd Update) (*models.DonationRequest, error) {
	set := upd.set()
	set["updated_at"] = models.StoredTime(time.Now())

	var dr models.DonationRequest
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": expect},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&dr)
	if err != nil {
		return nil, err
	}
	return &dr, nil
}

// ClaimPending moves a pending request to inprogress with donor set, in one
// conditional write. It returns mongo.ErrNoDocuments when the request is
// missing or no longer pending, so at most one donor can win.
func (s *Store) ClaimPending(ctx context.Context, id, donor primitive.ObjectID) (*models.DonationRequest, error) {
	var dr models.DonationRequest
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.RequestPending},
		bson.M{"$set": bson.M{
			"status":     models.RequestInProgress,
			"donor":      donor,
			"updated_at": models.StoredTime(time.Now()),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&dr)
	if err != nil {
		return nil, err
	}
	return &dr, nil
}

// Delete removes the request and reports how many documents were deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
