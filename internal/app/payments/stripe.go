package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// Stripe creates and reads PaymentIntents through stripe-go. A non-default
// base URL points the SDK at another API host (used by tests).
type Stripe struct {
	key      string
	currency string
	intents  paymentintent.Client
}

// NewStripe returns a Stripe gateway. base and currency default to the live
// API and "usd".
func NewStripe(secretKey, base, currency string) *Stripe {
	if currency == "" {
		currency = "usd"
	}
	cfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: 15 * time.Second},
		LeveledLogger:     zap.L().Sugar(),
		MaxNetworkRetries: stripe.Int64(1),
	}
	if base != "" {
		cfg.URL = stripe.String(strings.TrimRight(base, "/"))
	}
	return &Stripe{
		key:      secretKey,
		currency: strings.ToLower(currency),
		intents: paymentintent.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
			Key: secretKey,
		},
	}
}

func (s *Stripe) Name() string { return ProviderStripe }

func stripeIntent(pi *stripe.PaymentIntent) Intent {
	st := StatusPending
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		st = StatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		st = StatusFailed
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: st, Amount: pi.Amount}
}

func (s *Stripe) CreateIntent(ctx context.Context, minor int64, metadata map[string]string) (Intent, error) {
	if s.key == "" {
		return Intent{}, fmt.Errorf("stripe: secret key is not configured")
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minor),
		Currency: stripe.String(s.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.intents.New(params)
	if err != nil {
		return Intent{}, stripeErr(err)
	}
	return stripeIntent(pi), nil
}

func (s *Stripe) RetrieveIntent(ctx context.Context, id string) (Intent, error) {
	if s.key == "" {
		return Intent{}, fmt.Errorf("stripe: secret key is not configured")
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.intents.Get(id, params)
	if err != nil {
		return Intent{}, stripeErr(err)
	}
	return stripeIntent(pi), nil
}

// stripeErr maps a missing intent onto ErrIntentNotFound and wraps the rest.
func stripeErr(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		if se.Code == stripe.ErrorCodeResourceMissing || se.HTTPStatusCode == http.StatusNotFound {
			return ErrIntentNotFound
		}
		return fmt.Errorf("stripe: %s (%d): %s", se.Type, se.HTTPStatusCode, se.Msg)
	}
	return fmt.Errorf("stripe: %w", err)
}
