// internal/domain/models/donationrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus is the fulfillment state of a donation request.
type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestInProgress RequestStatus = "inprogress"
	RequestDone       RequestStatus = "done"
	RequestCanceled   RequestStatus = "canceled"
)

// transitions lists the statuses reachable from each status. done and
// canceled are terminal. pending→inprogress is listed but only the donate
// operation may take it, since it has to set the donor at the same time.
var transitions = map[RequestStatus][]RequestStatus{
	RequestPending:    {RequestInProgress, RequestCanceled},
	RequestInProgress: {RequestDone, RequestCanceled},
}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestInProgress, RequestDone, RequestCanceled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a request in status s may move to next.
// Staying in the same status is always allowed.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	if s == next {
		return true
	}
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s RequestStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// DonationRequest is a recipient's posted need for blood.
type DonationRequest struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Requester         primitive.ObjectID  `bson:"requester" json:"requester"`
	RecipientName     string              `bson:"recipient_name" json:"recipientName"`
	RecipientDistrict string              `bson:"recipient_district" json:"recipientDistrict"`
	RecipientUpazila  string              `bson:"recipient_upazila" json:"recipientUpazila"`
	HospitalName      string              `bson:"hospital_name" json:"hospitalName"`
	FullAddress       string              `bson:"full_address" json:"fullAddress"`
	BloodGroup        string              `bson:"blood_group" json:"bloodGroup"`
	DonationDate      time.Time           `bson:"donation_date" json:"donationDate"`
	DonationTime      string              `bson:"donation_time" json:"donationTime"`
	RequestMessage    string              `bson:"request_message" json:"requestMessage"`
	Status            RequestStatus       `bson:"status" json:"status"`
	Donor             *primitive.ObjectID `bson:"donor,omitempty" json:"donor"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// DonationRequestView is a request with its user references expanded.
// The outer Requester/Donor fields shadow the embedded IDs in JSON.
type DonationRequestView struct {
	DonationRequest
	Requester *UserSummary `json:"requester"`
	Donor     *UserSummary `json:"donor"`
}
