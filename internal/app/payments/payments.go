// Package payments talks to the payment gateways. The ledger only needs to
// open an intent and later ask whether it succeeded; everything else about
// capture happens between the client and the gateway.
package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Provider names as stored on fundings.
const (
	ProviderStripe   = "stripe"
	ProviderMidtrans = "midtrans"
)

// Intent statuses after normalization. Gateways map their own vocabulary
// onto these.
const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ErrIntentNotFound is returned by RetrieveIntent for ids the gateway does
// not know.
var ErrIntentNotFound = errors.New("payments: intent not found")

// ErrAmountOutOfRange is returned by ToMinor when the minor-unit value does
// not fit in an int64.
var ErrAmountOutOfRange = errors.New("payments: amount out of range")

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// Intent is a gateway payment intent. Amount is in minor units.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
}

func (i Intent) Succeeded() bool { return i.Status == StatusSucceeded }

// Gateway is a payment provider.
type Gateway interface {
	Name() string
	CreateIntent(ctx context.Context, minor int64, metadata map[string]string) (Intent, error)
	RetrieveIntent(ctx context.Context, id string) (Intent, error)
}

// Config selects and configures a gateway.
type Config struct {
	Provider string

	StripeSecretKey string
	StripeAPIBase   string
	StripeCurrency  string

	MidtransServerKey  string
	MidtransProduction bool
}

// New builds the gateway named by cfg.Provider.
func New(cfg Config) (Gateway, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderStripe:
		return NewStripe(cfg.StripeSecretKey, cfg.StripeAPIBase, cfg.StripeCurrency), nil
	case ProviderMidtrans:
		return NewMidtrans(cfg.MidtransServerKey, cfg.MidtransProduction), nil
	default:
		return nil, fmt.Errorf("payments: unknown provider %q", cfg.Provider)
	}
}

// ToMinor converts a major-unit amount to minor units, rounding half away
// from zero.
func ToMinor(amount decimal.Decimal) (int64, error) {
	m := amount.Shift(2).Round(0)
	if m.GreaterThan(maxMinor) || m.LessThan(minMinor) {
		return 0, ErrAmountOutOfRange
	}
	return m.IntPart(), nil
}

// FromMinor is the inverse of ToMinor.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
