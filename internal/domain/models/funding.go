// internal/domain/models/funding.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Funding statuses.
const (
	FundingPending   = "pending"
	FundingCompleted = "completed"
	FundingFailed    = "failed"
)

// Funding is a monetary contribution confirmed against a payment gateway.
// TransactionID carries the gateway's intent/order id and is unique, so the
// same external payment can only be recorded once.
type Funding struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User          primitive.ObjectID `bson:"user" json:"user"`
	Amount        float64            `bson:"amount" json:"amount"`
	TransactionID string             `bson:"transaction_id" json:"transactionId"`
	Status        string             `bson:"status" json:"status"`
	PaymentMethod string             `bson:"payment_method" json:"paymentMethod"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
}

// FundingView is a funding with its owner expanded.
type FundingView struct {
	Funding
	User *UserSummary `json:"user"`
}
