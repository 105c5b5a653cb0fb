// Package ledger records gateway-confirmed fundings and reports totals.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/bloodlink/internal/app/payments"
	fundingstore "github.com/dalemusser/bloodlink/internal/app/store/fundings"
	"github.com/dalemusser/bloodlink/internal/app/system/apperr"
	"github.com/dalemusser/bloodlink/internal/app/system/authz"
	"github.com/dalemusser/bloodlink/internal/app/system/metrics"
	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Store persists fundings. Insert returns fundingstore.ErrDuplicateTransaction
// when the transaction id is already recorded.
type Store interface {
	Insert(ctx context.Context, f models.Funding) (models.Funding, error)
	List(ctx context.Context, f fundingstore.Filter, p paging.Params) ([]models.Funding, int64, error)
	Sum(ctx context.Context, f fundingstore.Filter) (float64, error)
}

// UserDirectory expands funding owners.
type UserDirectory interface {
	Summaries(ctx context.Context, ids []primitive.ObjectID, withLocation bool) (map[primitive.ObjectID]models.UserSummary, error)
}

type Ledger struct {
	store   Store
	users   UserDirectory
	gateway payments.Gateway
	loc     *time.Location
	now     func() time.Time
	log     *zap.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLocation sets the time zone used for stats boundaries.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(store Store, users UserDirectory, gw payments.Gateway, logger *zap.Logger, opts ...Option) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		store:   store,
		users:   users,
		gateway: gw,
		loc:     time.UTC,
		now:     time.Now,
		log:     logger,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// IntentResult is handed back to the client to complete payment.
type IntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// CreateIntent opens a gateway intent for amount (major units). Nothing is
// recorded until Confirm.
func (l *Ledger) CreateIntent(ctx context.Context, caller authz.Caller, amount float64) (IntentResult, error) {
	d := decimal.NewFromFloat(amount)
	if d.LessThan(decimal.NewFromInt(1)) {
		return IntentResult{}, apperr.Validation("Amount must be at least 1")
	}
	minor, err := payments.ToMinor(d)
	if err != nil {
		return IntentResult{}, apperr.Validation("Amount is too large")
	}
	in, err := l.gateway.CreateIntent(ctx, minor, map[string]string{
		"userId":   caller.ID.Hex(),
		"userName": caller.Name,
	})
	if err != nil {
		return IntentResult{}, apperr.Upstream("Error creating payment intent", err)
	}
	l.log.Info("payment intent created",
		zap.String("provider", l.gateway.Name()),
		zap.String("intent", in.ID),
		zap.String("user", caller.ID.Hex()))
	return IntentResult{ClientSecret: in.ClientSecret, PaymentIntentID: in.ID}, nil
}

// Confirm records a completed funding for a succeeded intent. The unique
// index on transaction_id makes a second confirmation of the same intent
// fail with Conflict, including when both race.
func (l *Ledger) Confirm(ctx context.Context, caller authz.Caller, intentID string, amount float64) (*models.FundingView, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" || amount == 0 {
		return nil, apperr.Validation("Payment intent ID and amount are required")
	}
	if amount < 1 {
		return nil, apperr.Validation("Amount must be at least 1")
	}

	in, err := l.gateway.RetrieveIntent(ctx, intentID)
	if errors.Is(err, payments.ErrIntentNotFound) {
		return nil, apperr.NotFound("Payment intent not found")
	}
	if err != nil {
		return nil, apperr.Upstream("Error confirming payment", err)
	}
	if !in.Succeeded() {
		return nil, apperr.InvalidOperation("Payment has not been completed yet")
	}

	recorded := amount
	if in.Amount > 0 {
		recorded = payments.FromMinor(in.Amount).InexactFloat64()
	}
	f, err := l.store.Insert(ctx, models.Funding{
		User:          caller.ID,
		Amount:        recorded,
		TransactionID: in.ID,
		Status:        models.FundingCompleted,
		PaymentMethod: l.gateway.Name(),
		CreatedAt:     models.StoredTime(l.now()),
	})
	if errors.Is(err, fundingstore.ErrDuplicateTransaction) {
		return nil, apperr.Conflict("This payment has already been processed")
	}
	if err != nil {
		return nil, apperr.Upstream("Error confirming payment", err)
	}
	metrics.FundingsConfirmed.WithLabelValues(l.gateway.Name()).Inc()
	l.log.Info("funding recorded",
		zap.String("id", f.ID.Hex()),
		zap.String("transaction", f.TransactionID),
		zap.Float64("amount", f.Amount),
		zap.String("user", caller.ID.Hex()))

	views, err := l.expand(ctx, []models.Funding{f})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListAll pages completed fundings, optionally for one user, with owners
// expanded. total sums every completed funding whatever the user filter.
func (l *Ledger) ListAll(ctx context.Context, userID string, p paging.Params) (page paging.Page[models.FundingView], total float64, err error) {
	f := fundingstore.Filter{Status: models.FundingCompleted}
	if userID != "" {
		oid, perr := primitive.ObjectIDFromHex(userID)
		if perr != nil {
			return page, 0, apperr.Validation("Invalid user id")
		}
		f.User = &oid
	}
	docs, n, err := l.store.List(ctx, f, p)
	if err != nil {
		return page, 0, apperr.Upstream("Error fetching fundings", err)
	}
	views, err := l.expand(ctx, docs)
	if err != nil {
		return page, 0, err
	}
	total, err = l.Total(ctx)
	if err != nil {
		return page, 0, err
	}
	return paging.Build(views, n, p), total, nil
}

// ListForUser pages the caller's completed fundings and their total.
func (l *Ledger) ListForUser(ctx context.Context, userID primitive.ObjectID, p paging.Params) (page paging.Page[models.Funding], total float64, err error) {
	f := fundingstore.Filter{Status: models.FundingCompleted, User: &userID}
	docs, n, err := l.store.List(ctx, f, p)
	if err != nil {
		return page, 0, apperr.Upstream("Error fetching user fundings", err)
	}
	total, err = l.store.Sum(ctx, f)
	if err != nil {
		return page, 0, apperr.Upstream("Error fetching user fundings", err)
	}
	return paging.Build(docs, n, p), total, nil
}

// Total sums every completed funding.
func (l *Ledger) Total(ctx context.Context) (float64, error) {
	t, err := l.store.Sum(ctx, fundingstore.Filter{Status: models.FundingCompleted})
	if err != nil {
		return 0, apperr.Upstream("Error fetching fundings", err)
	}
	return t, nil
}

// Stats holds completed totals since the start of the current day, week
// (Sunday), month, and for all time.
type Stats struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
	Total   float64 `json:"total"`
}

// Stats runs the four aggregates concurrently.
func (l *Ledger) Stats(ctx context.Context) (Stats, error) {
	day, week, month := Boundaries(l.now(), l.loc)

	var s Stats
	g, gctx := errgroup.WithContext(ctx)
	sum := func(dst *float64, since time.Time) {
		g.Go(func() error {
			v, err := l.store.Sum(gctx, fundingstore.Filter{Status: models.FundingCompleted, Since: since})
			if err != nil {
				return err
			}
			*dst = v
			return nil
		})
	}
	sum(&s.Daily, day)
	sum(&s.Weekly, week)
	sum(&s.Monthly, month)
	sum(&s.Total, time.Time{})

	if err := g.Wait(); err != nil {
		return Stats{}, apperr.Upstream("Error fetching funding statistics", err)
	}
	return s, nil
}

// Boundaries returns the start of the day, week and month containing now,
// in loc. Weeks start on Sunday.
func Boundaries(now time.Time, loc *time.Location) (day, week, month time.Time) {
	t := now.In(loc)
	day = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	week = day.AddDate(0, 0, -int(t.Weekday()))
	month = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	return day, week, month
}

func (l *Ledger) expand(ctx context.Context, docs []models.Funding) ([]models.FundingView, error) {
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.User)
	}
	users, err := l.users.Summaries(ctx, ids, false)
	if err != nil {
		return nil, apperr.Upstream("Error loading users", err)
	}
	out := make([]models.FundingView, len(docs))
	for i, d := range docs {
		out[i] = models.FundingView{Funding: d}
		if u, ok := users[d.User]; ok {
			u := u
			out[i].User = &u
		}
	}
	return out, nil
}
