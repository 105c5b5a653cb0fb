package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/bloodlink/internal/app/system/normalize"
	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateEmail is returned when the unique email index rejects a write.
var ErrDuplicateEmail = errors.New("a user with this email already exists")

// withoutPassword is the projection for every read that leaves the store
// except credential checks.
var withoutPassword = bson.M{"password": 0}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user without the password hash. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := s.c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmailWithPassword loads a user including the password hash, for
// login. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create normalizes and inserts u. PasswordHash must already be set.
// Role and status default to donor/active.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := models.StoredTime(time.Now())
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)
	u.District = normalize.Place(u.District)
	u.DistrictCI = normalize.Fold(u.District)
	u.Upazila = normalize.Place(u.Upazila)
	u.UpazilaCI = normalize.Fold(u.Upazila)
	if bg, ok := models.NormalizeBloodGroup(u.BloodGroup); ok {
		u.BloodGroup = bg
	}
	if u.Role == "" {
		u.Role = models.RoleDonor
	}
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ProfileUpdate holds the self-service profile fields. Avatar is only
// written when non-nil.
type ProfileUpdate struct {
	Name       string
	BloodGroup string
	District   string
	Upazila    string
	Avatar     *string
}

// UpdateProfile writes the profile fields and returns the updated user.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	set := bson.M{
		"name":        normalize.Name(upd.Name),
		"district":    normalize.Place(upd.District),
		"district_ci": normalize.Fold(upd.District),
		"upazila":     normalize.Place(upd.Upazila),
		"upazila_ci":  normalize.Fold(upd.Upazila),
		"updated_at":  models.StoredTime(time.Now()),
	}
	if bg, ok := models.NormalizeBloodGroup(upd.BloodGroup); ok {
		set["blood_group"] = bg
	}
	if upd.Avatar != nil {
		set["avatar"] = *upd.Avatar
	}
	return s.findAndSet(ctx, id, set)
}

// SetStatus changes the account status and returns the updated user.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.User, error) {
	return s.findAndSet(ctx, id, bson.M{"status": status, "updated_at": models.StoredTime(time.Now())})
}

// SetRole changes the role and returns the updated user.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	return s.findAndSet(ctx, id, bson.M{"role": role, "updated_at": models.StoredTime(time.Now())})
}

func (s *Store) findAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutPassword)
	var u models.User
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListFilter narrows the admin user list. Empty fields are ignored.
type ListFilter struct {
	Status string
	Role   string
}

// List returns one page of users, newest first, and the total match count.
func (s *Store) List(ctx context.Context, f ListFilter, p paging.Params) ([]models.User, int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	return s.page(ctx, filter, p)
}

// CountByRole counts users holding role.
func (s *Store) CountByRole(ctx context.Context, role string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"role": role})
}

func (s *Store) page(ctx context.Context, filter bson.M, p paging.Params) ([]models.User, int64, error) {
	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	find := p.ApplyToFind(options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(withoutPassword))
	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
