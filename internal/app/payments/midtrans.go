package payments

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
)

type snapAPI interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

type coreAPI interface {
	CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
}

// Midtrans opens Snap transactions and reads their status through the Core
// API. The intent id is the order id; the client secret is the Snap token.
// Midtrans amounts are whole rupiah, so minor units are rounded to major.
type Midtrans struct {
	snap snapAPI
	core coreAPI
}

func NewMidtrans(serverKey string, production bool) *Midtrans {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	var s snap.Client
	s.New(serverKey, env)
	var c coreapi.Client
	c.New(serverKey, env)
	return &Midtrans{snap: &s, core: &c}
}

func (m *Midtrans) Name() string { return ProviderMidtrans }

func (m *Midtrans) CreateIntent(_ context.Context, minor int64, metadata map[string]string) (Intent, error) {
	gross := FromMinor(minor).Round(0).IntPart()
	orderID := "BLOODLINK-" + uuid.NewString()
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: metadata["userName"],
		},
		CustomField1: metadata["userId"],
	}
	resp, merr := m.snap.CreateTransaction(req)
	if merr != nil {
		return Intent{}, merr
	}
	return Intent{ID: orderID, ClientSecret: resp.Token, Status: StatusPending, Amount: minor}, nil
}

func (m *Midtrans) RetrieveIntent(_ context.Context, id string) (Intent, error) {
	resp, merr := m.core.CheckTransaction(id)
	if merr != nil {
		if merr.StatusCode == http.StatusNotFound {
			return Intent{}, ErrIntentNotFound
		}
		return Intent{}, merr
	}
	in := Intent{ID: id, Status: midtransStatus(resp.TransactionStatus, resp.FraudStatus)}
	if g, err := parseGross(resp.GrossAmount); err == nil {
		in.Amount = g
	}
	return in, nil
}

// midtransStatus maps transaction_status (and fraud_status for card
// captures) onto the intent statuses.
func midtransStatus(tx, fraud string) string {
	switch strings.ToLower(tx) {
	case "settlement":
		return StatusSucceeded
	case "capture":
		if fraud == "" || strings.EqualFold(fraud, "accept") {
			return StatusSucceeded
		}
		return StatusPending
	case "deny", "cancel", "expire", "failure":
		return StatusFailed
	default:
		return StatusPending
	}
}

func parseGross(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return ToMinor(d)
}
