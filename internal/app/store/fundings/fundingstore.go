package fundingstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateTransaction is returned when a funding for the same gateway
// transaction already exists.
var ErrDuplicateTransaction = errors.New("funding already recorded for this transaction")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("fundings")}
}

// Insert records f. Uniqueness of transaction_id is enforced by the index,
// so two concurrent confirmations of one payment cannot both succeed.
func (s *Store) Insert(ctx context.Context, f models.Funding) (models.Funding, error) {
	f.ID = primitive.NewObjectID()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	f.CreatedAt = models.StoredTime(f.CreatedAt)
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Funding{}, ErrDuplicateTransaction
		}
		return models.Funding{}, err
	}
	return f, nil
}

// Filter narrows List and Sum. Zero fields are ignored.
type Filter struct {
	User   *primitive.ObjectID
	Status string
	Since  time.Time
}

func (f Filter) bson() bson.M {
	q := bson.M{}
	if f.User != nil {
		q["user"] = *f.User
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if !f.Since.IsZero() {
		q["created_at"] = bson.M{"$gte": f.Since.UTC()}
	}
	return q
}

// List returns one page, newest first, and the total match count.
func (s *Store) List(ctx context.Context, f Filter, p paging.Params) ([]models.Funding, int64, error) {
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

	out := []models.Funding{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Sum totals the amount of every funding matching f. No matches sum to 0.
func (s *Store) Sum(ctx context.Context, f Filter) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: f.bson()}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
