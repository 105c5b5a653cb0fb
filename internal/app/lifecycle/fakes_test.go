package lifecycle_test

import (
	"context"
	"sort"
	"sync"
	"time"

	requeststore "github.com/dalemusser/bloodlink/internal/app/store/donationrequests"
	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// memRequests is an in-memory RequestStore.
type memRequests struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]models.DonationRequest
	// lastFilter records the filter passed to List.
	lastFilter requeststore.ListFilter
}

func newMemRequests() *memRequests {
	return &memRequests{docs: map[primitive.ObjectID]models.DonationRequest{}}
}

func (s *memRequests) Create(_ context.Context, dr models.DonationRequest) (models.DonationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dr.ID = primitive.NewObjectID()
	dr.CreatedAt = time.Now().UTC()
	dr.UpdatedAt = dr.CreatedAt
	if dr.Status == "" {
		dr.Status = models.RequestPending
	}
	s.docs[dr.ID] = dr
	return dr, nil
}

func (s *memRequests) put(dr models.DonationRequest) models.DonationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dr.ID.IsZero() {
		dr.ID = primitive.NewObjectID()
	}
	s.docs[dr.ID] = dr
	return dr
}

func (s *memRequests) get(id primitive.ObjectID) models.DonationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[id]
}

func (s *memRequests) GetByID(_ context.Context, id primitive.ObjectID) (*models.DonationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dr, ok := s.docs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &dr, nil
}

func (s *memRequests) List(_ context.Context, f requeststore.ListFilter, p paging.Params) ([]models.DonationRequest, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFilter = f
	var out []models.DonationRequest
	for _, d := range s.docs {
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.Requester != nil && d.Requester != *f.Requester {
			continue
		}
		if f.Donor != nil && (d.Donor == nil || *d.Donor != *f.Donor) {
			continue
		}
		if f.BloodGroup != "" && d.BloodGroup != f.BloodGroup {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	start := int(p.Skip())
	if start > len(out) {
		start = len(out)
	}
	end := start + p.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (s *memRequests) Apply(_ context.Context, id primitive.ObjectID, expect models.RequestStatus, u requeststore.Update) (*models.DonationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok || d.Status != expect {
		return nil, mongo.ErrNoDocuments
	}
	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setStr(&d.RecipientName, u.RecipientName)
	setStr(&d.RecipientDistrict, u.RecipientDistrict)
	setStr(&d.RecipientUpazila, u.RecipientUpazila)
	setStr(&d.HospitalName, u.HospitalName)
	setStr(&d.FullAddress, u.FullAddress)
	setStr(&d.BloodGroup, u.BloodGroup)
	setStr(&d.DonationTime, u.DonationTime)
	setStr(&d.RequestMessage, u.RequestMessage)
	if u.DonationDate != nil {
		d.DonationDate = *u.DonationDate
	}
	if u.Status != nil {
		d.Status = *u.Status
	}
	d.UpdatedAt = time.Now().UTC()
	s.docs[id] = d
	return &d, nil
}

func (s *memRequests) ClaimPending(_ context.Context, id, donor primitive.ObjectID) (*models.DonationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok || d.Status != models.RequestPending {
		return nil, mongo.ErrNoDocuments
	}
	d.Status = models.RequestInProgress
	d.Donor = &donor
	s.docs[id] = d
	return &d, nil
}

func (s *memRequests) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return 0, nil
	}
	delete(s.docs, id)
	return 1, nil
}

func (s *memRequests) Recent(_ context.Context, requester primitive.ObjectID, n int64) ([]models.DonationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DonationRequest
	for _, d := range s.docs {
		if d.Requester == requester {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *memRequests) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.docs)), nil
}

// memUsers is an in-memory UserDirectory.
type memUsers map[primitive.ObjectID]models.UserSummary

func (m memUsers) Summaries(_ context.Context, ids []primitive.ObjectID, withLocation bool) (map[primitive.ObjectID]models.UserSummary, error) {
	out := map[primitive.ObjectID]models.UserSummary{}
	for _, id := range ids {
		u, ok := m[id]
		if !ok {
			continue
		}
		if !withLocation {
			u.District, u.Upazila = "", ""
		}
		out[id] = u
	}
	return out, nil
}
