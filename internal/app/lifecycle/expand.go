package lifecycle

import (
	"context"

	requeststore "github.com/dalemusser/bloodlink/internal/app/store/donationrequests"
	"github.com/dalemusser/bloodlink/internal/app/system/apperr"
	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (m *Manager) page(ctx context.Context, f requeststore.ListFilter, p paging.Params, requesterLocation bool, failMsg string) (paging.Page[models.DonationRequestView], error) {
	docs, total, err := m.requests.List(ctx, f, p)
	if err != nil {
		return paging.Page[models.DonationRequestView]{}, apperr.Upstream(failMsg, err)
	}
	views, err := m.expand(ctx, docs, requesterLocation)
	if err != nil {
		return paging.Page[models.DonationRequestView]{}, err
	}
	return paging.Build(views, total, p), nil
}

func (m *Manager) one(ctx context.Context, dr models.DonationRequest, requesterLocation bool) (*models.DonationRequestView, error) {
	views, err := m.expand(ctx, []models.DonationRequest{dr}, requesterLocation)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// expand replaces requester and donor ids with user summaries. Donors never
// carry location; requesters do when requesterLocation is set. References
// to deleted users expand to nil.
func (m *Manager) expand(ctx context.Context, docs []models.DonationRequest, requesterLocation bool) ([]models.DonationRequestView, error) {
	ids := make([]primitive.ObjectID, 0, len(docs)*2)
	for _, d := range docs {
		ids = append(ids, d.Requester)
		if d.Donor != nil {
			ids = append(ids, *d.Donor)
		}
	}
	users, err := m.users.Summaries(ctx, ids, requesterLocation)
	if err != nil {
		return nil, apperr.Upstream("Error loading users", err)
	}

	out := make([]models.DonationRequestView, len(docs))
	for i, d := range docs {
		v := models.DonationRequestView{DonationRequest: d}
		if u, ok := users[d.Requester]; ok {
			u := u
			v.Requester = &u
		}
		if d.Donor != nil {
			if u, ok := users[*d.Donor]; ok {
				u.District, u.Upazila = "", ""
				v.Donor = &u
			}
		}
		out[i] = v
	}
	return out, nil
}
