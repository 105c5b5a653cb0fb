package payments

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
)

type fakeSnap struct{ got *snap.Request }

func (f *fakeSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	f.got = req
	return &snap.Response{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/x"}, nil
}

type fakeCore map[string]*coreapi.TransactionStatusResponse

func (f fakeCore) CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error) {
	if r, ok := f[orderID]; ok {
		return r, nil
	}
	return nil, &midtrans.Error{Message: "not found", StatusCode: http.StatusNotFound}
}

func TestMidtrans_CreateIntent(t *testing.T) {
	s := &fakeSnap{}
	m := &Midtrans{snap: s, core: fakeCore{}}

	in, err := m.CreateIntent(context.Background(), 5000050, map[string]string{"userId": "u1", "userName": "Rina"})
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if in.ClientSecret != "snap-token" || in.ID == "" {
		t.Errorf("intent = %+v", in)
	}
	if s.got.TransactionDetails.OrderID != in.ID {
		t.Errorf("order id %q does not match intent id %q", s.got.TransactionDetails.OrderID, in.ID)
	}
	if s.got.TransactionDetails.GrossAmt != 50001 {
		t.Errorf("gross = %d, want 50001", s.got.TransactionDetails.GrossAmt)
	}
	if s.got.CustomField1 != "u1" || s.got.CustomerDetail.FName != "Rina" {
		t.Errorf("metadata not forwarded: %+v", s.got)
	}
}

func TestMidtrans_RetrieveIntent(t *testing.T) {
	m := &Midtrans{snap: &fakeSnap{}, core: fakeCore{
		"settled":  {TransactionStatus: "settlement", GrossAmount: "25000.00"},
		"pending":  {TransactionStatus: "pending", GrossAmount: "25000.00"},
		"expired":  {TransactionStatus: "expire"},
		"flagged":  {TransactionStatus: "capture", FraudStatus: "challenge"},
		"captured": {TransactionStatus: "capture", FraudStatus: "accept"},
	}}
	ctx := context.Background()

	tests := map[string]string{
		"settled":  StatusSucceeded,
		"pending":  StatusPending,
		"expired":  StatusFailed,
		"flagged":  StatusPending,
		"captured": StatusSucceeded,
	}
	for id, want := range tests {
		in, err := m.RetrieveIntent(ctx, id)
		if err != nil {
			t.Fatalf("%s: %v", id, err)
		}
		if in.Status != want {
			t.Errorf("%s: status = %q, want %q", id, in.Status, want)
		}
	}

	in, _ := m.RetrieveIntent(ctx, "settled")
	if in.Amount != 2500000 {
		t.Errorf("amount = %d, want 2500000", in.Amount)
	}

	if _, err := m.RetrieveIntent(ctx, "nope"); !errors.Is(err, ErrIntentNotFound) {
		t.Errorf("err = %v, want ErrIntentNotFound", err)
	}
}

func TestToMinor(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1", 100},
		{"10.5", 1050},
		{"19.999", 2000},
		{"0.005", 1},
		{"2.345", 235},
	}
	for _, tt := range tests {
		got, err := ToMinor(decimal.RequireFromString(tt.in))
		if err != nil || got != tt.want {
			t.Errorf("ToMinor(%s) = %d, %v, want %d", tt.in, got, err, tt.want)
		}
	}

	for _, in := range []string{"92233720368547758.08", "1e30", "-1e30"} {
		if _, err := ToMinor(decimal.RequireFromString(in)); !errors.Is(err, ErrAmountOutOfRange) {
			t.Errorf("ToMinor(%s) err = %v, want ErrAmountOutOfRange", in, err)
		}
	}
	if got, err := ToMinor(decimal.RequireFromString("92233720368547758.07")); err != nil || got != math.MaxInt64 {
		t.Errorf("ToMinor(max) = %d, %v", got, err)
	}
}
