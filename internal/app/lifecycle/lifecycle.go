// Package lifecycle manages donation requests from creation through
// fulfillment. Every mutating operation evaluates the authz permission
// table once and status changes go through the request state machine.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	requeststore "github.com/dalemusser/bloodlink/internal/app/store/donationrequests"
	"github.com/dalemusser/bloodlink/internal/app/system/apperr"
	"github.com/dalemusser/bloodlink/internal/app/system/authz"
	"github.com/dalemusser/bloodlink/internal/app/system/metrics"
	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// RequestStore persists donation requests. Lookups that find nothing return
// mongo.ErrNoDocuments.
type RequestStore interface {
	Create(ctx context.Context, dr models.DonationRequest) (models.DonationRequest, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.DonationRequest, error)
	List(ctx context.Context, f requeststore.ListFilter, p paging.Params) ([]models.DonationRequest, int64, error)
	Apply(ctx context.Context, id primitive.ObjectID, expect models.RequestStatus, upd requeststore.Update) (*models.DonationRequest, error)
	ClaimPending(ctx context.Context, id, donor primitive.ObjectID) (*models.DonationRequest, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	Recent(ctx context.Context, requester primitive.ObjectID, n int64) ([]models.DonationRequest, error)
	Count(ctx context.Context) (int64, error)
}

// UserDirectory expands user references.
type UserDirectory interface {
	Summaries(ctx context.Context, ids []primitive.ObjectID, withLocation bool) (map[primitive.ObjectID]models.UserSummary, error)
}

type Manager struct {
	requests RequestStore
	users    UserDirectory
	log      *zap.Logger
}

func New(requests RequestStore, users UserDirectory, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{requests: requests, users: users, log: logger}
}

const msgNotFound = "Donation request not found"

// Create validates in and stores a new pending request owned by caller.
func (m *Manager) Create(ctx context.Context, caller authz.Caller, in Input) (*models.DonationRequestView, error) {
	if caller.IsBlocked() {
		return nil, apperr.Forbidden("Your account is blocked. You cannot create donation requests.")
	}
	if authz.Decide(authz.CreateRequest, caller.Role, true) == authz.Deny {
		return nil, apperr.Forbidden("You are not allowed to create donation requests")
	}

	dr, err := in.toRequest()
	if err != nil {
		return nil, err
	}
	dr.Requester = caller.ID
	dr.Status = models.RequestPending

	created, err := m.requests.Create(ctx, dr)
	if err != nil {
		return nil, apperr.Upstream("Error creating donation request", err)
	}
	m.log.Info("donation request created",
		zap.String("id", created.ID.Hex()),
		zap.String("requester", caller.ID.Hex()),
		zap.String("blood_group", created.BloodGroup))

	return m.one(ctx, created, false)
}

// ListQuery holds the optional list filters as received from the client.
type ListQuery struct {
	Status      string
	RequesterID string
	DonorID     string
}

// List returns requests newest first. Callers who may not list other
// users' requests only ever see their own, whatever RequesterID says.
func (m *Manager) List(ctx context.Context, caller authz.Caller, q ListQuery, p paging.Params) (paging.Page[models.DonationRequestView], error) {
	var f requeststore.ListFilter
	if q.Status != "" {
		st := models.RequestStatus(q.Status)
		if !st.Valid() {
			return paging.Page[models.DonationRequestView]{}, apperr.Validation("Invalid status value")
		}
		f.Status = st
	}
	if q.RequesterID != "" {
		id, err := primitive.ObjectIDFromHex(q.RequesterID)
		if err != nil {
			return paging.Page[models.DonationRequestView]{}, apperr.Validation("Invalid requester id")
		}
		f.Requester = &id
	}
	if q.DonorID != "" {
		id, err := primitive.ObjectIDFromHex(q.DonorID)
		if err != nil {
			return paging.Page[models.DonationRequestView]{}, apperr.Validation("Invalid donor id")
		}
		f.Donor = &id
	}
	if authz.Decide(authz.ListRequests, caller.Role, false) == authz.Deny {
		own := caller.ID
		f.Requester = &own
	}

	return m.page(ctx, f, p, false, "Error getting donation requests")
}

// ListPublic returns pending requests, optionally filtered by blood group
// and recipient district, with the requester's location.
func (m *Manager) ListPublic(ctx context.Context, bloodGroup, district string, p paging.Params) (paging.Page[models.DonationRequestView], error) {
	f := requeststore.ListFilter{Status: models.RequestPending}
	if bloodGroup != "" {
		bg, ok := models.NormalizeBloodGroup(bloodGroup)
		if !ok {
			return paging.Page[models.DonationRequestView]{}, apperr.Validation("Invalid blood group")
		}
		f.BloodGroup = bg
	}
	if district != "" {
		f.RecipientDistrict = district
	}
	return m.page(ctx, f, p, true, "Error getting donation requests")
}

// Get returns one request with the requester's location.
func (m *Manager) Get(ctx context.Context, id string) (*models.DonationRequestView, error) {
	dr, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.one(ctx, *dr, true)
}

// Delete removes a request. Only the owner or an admin may.
func (m *Manager) Delete(ctx context.Context, caller authz.Caller, id string) error {
	dr, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	if authz.Decide(authz.DeleteRequest, caller.Role, dr.Requester == caller.ID) == authz.Deny {
		return apperr.Forbidden("You can only delete your own donation requests")
	}
	n, err := m.requests.Delete(ctx, dr.ID)
	if err != nil {
		return apperr.Upstream("Error deleting donation request", err)
	}
	if n == 0 {
		return apperr.NotFound(msgNotFound)
	}
	m.log.Info("donation request deleted",
		zap.String("id", dr.ID.Hex()),
		zap.String("by", caller.ID.Hex()))
	return nil
}

// Donate assigns caller as donor and moves the request to inprogress. The
// write only succeeds while the request is pending, so of two concurrent
// donors exactly one wins.
func (m *Manager) Donate(ctx context.Context, caller authz.Caller, id string) (*models.DonationRequestView, error) {
	dr, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if dr.Status != models.RequestPending {
		return nil, apperr.Conflict("This donation request is no longer available")
	}
	if authz.Decide(authz.Donate, caller.Role, dr.Requester == caller.ID) == authz.Deny {
		return nil, apperr.InvalidOperation("You cannot donate to your own request")
	}
	if caller.IsBlocked() {
		return nil, apperr.Forbidden("Your account is blocked. You cannot donate.")
	}

	claimed, err := m.requests.ClaimPending(ctx, dr.ID, caller.ID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.Conflict("This donation request is no longer available")
	}
	if err != nil {
		return nil, apperr.Upstream("Error processing donation", err)
	}
	metrics.RequestTransitions.WithLabelValues(string(models.RequestInProgress)).Inc()
	m.log.Info("donation request claimed",
		zap.String("id", dr.ID.Hex()),
		zap.String("donor", caller.ID.Hex()))

	return m.one(ctx, *claimed, false)
}

// Update applies patch under the permission table. Volunteers may only
// change status; other fields in their patch are dropped.
func (m *Manager) Update(ctx context.Context, caller authz.Caller, id string, patch Patch) (*models.DonationRequestView, error) {
	dr, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch authz.Decide(authz.UpdateRequest, caller.Role, dr.Requester == caller.ID) {
	case authz.Deny:
		return nil, apperr.Forbidden("You can only update your own donation requests")
	case authz.StatusOnly:
		if patch.Status == nil {
			return nil, apperr.Forbidden("Volunteers can only update donation status")
		}
		patch = Patch{Status: patch.Status}
	}

	upd, err := patch.toUpdate()
	if err != nil {
		return nil, err
	}
	if upd.Status != nil {
		next := *upd.Status
		if err := checkTransition(dr.Status, next); err != nil {
			return nil, err
		}
		if next == dr.Status {
			upd.Status = nil
		}
	}
	if upd.IsEmpty() {
		return m.one(ctx, *dr, false)
	}

	updated, err := m.requests.Apply(ctx, dr.ID, dr.Status, upd)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.Conflict("This donation request was changed by someone else. Please reload and try again.")
	}
	if err != nil {
		return nil, apperr.Upstream("Error updating donation request", err)
	}
	if upd.Status != nil {
		metrics.RequestTransitions.WithLabelValues(string(*upd.Status)).Inc()
		m.log.Info("donation request status changed",
			zap.String("id", dr.ID.Hex()),
			zap.String("from", string(dr.Status)),
			zap.String("to", string(*upd.Status)),
			zap.String("by", caller.ID.Hex()))
	}
	return m.one(ctx, *updated, false)
}

// Recent returns the requester's n newest requests with both parties
// expanded.
func (m *Manager) Recent(ctx context.Context, requester primitive.ObjectID, n int64) ([]models.DonationRequestView, error) {
	docs, err := m.requests.Recent(ctx, requester, n)
	if err != nil {
		return nil, apperr.Upstream("Error getting donation requests", err)
	}
	return m.expand(ctx, docs, false)
}

// Count returns the number of requests in any status.
func (m *Manager) Count(ctx context.Context) (int64, error) {
	n, err := m.requests.Count(ctx)
	if err != nil {
		return 0, apperr.Upstream("Error counting donation requests", err)
	}
	return n, nil
}

// checkTransition enforces the state machine for edits. pending→inprogress
// is reserved for Donate because it must set the donor atomically.
func checkTransition(from, to models.RequestStatus) error {
	if from == to {
		return nil
	}
	if from == models.RequestPending && to == models.RequestInProgress {
		return apperr.InvalidOperation(fmt.Sprintf("Cannot change status from %s to %s", from, to))
	}
	if !from.CanTransitionTo(to) {
		return apperr.InvalidOperation(fmt.Sprintf("Cannot change status from %s to %s", from, to))
	}
	return nil
}

func (m *Manager) load(ctx context.Context, id string) (*models.DonationRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound(msgNotFound)
	}
	dr, err := m.requests.GetByID(ctx, oid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return nil, apperr.Upstream("Error getting donation request", err)
	}
	return dr, nil
}
