package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/bloodlink/internal/app/store/audit"
	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_LogAndQueryByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        "192.168.1.1",
		UserAgent: "TestBrowser/1.0",
		Success:   true,
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, IP: "10.0.0.1", Success: true}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, total, err := store.Query(ctx, audit.QueryFilter{UserID: &userID}, paging.New(1, 10))
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if total != 1 || len(events) != 1 {
		t.Fatalf("expected 1 event, got %d (total %d)", len(events), total)
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be generated")
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestStore_QueryFiltersAndOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	for i, et := range []string{audit.EventLoginSuccess, audit.EventLoginFailedWrongPassword, audit.EventUserBlocked, audit.EventLoginSuccess} {
		cat := audit.CategoryAuth
		if et == audit.EventUserBlocked {
			cat = audit.CategoryAdmin
		}
		if err := store.Log(ctx, audit.Event{
			Category:  cat,
			EventType: et,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Success:   et != audit.EventLoginFailedWrongPassword,
		}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int64
	}{
		{"all", audit.QueryFilter{}, 4},
		{"auth", audit.QueryFilter{Category: audit.CategoryAuth}, 3},
		{"type", audit.QueryFilter{EventType: audit.EventLoginSuccess}, 2},
		{"since", audit.QueryFilter{Since: ptr(base.Add(90 * time.Second))}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := store.Query(ctx, tt.filter, paging.New(1, 10))
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if total != tt.want {
				t.Errorf("total = %d, want %d", total, tt.want)
			}
		})
	}

	events, _, err := store.Query(ctx, audit.QueryFilter{}, paging.New(1, 2))
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("page size = %d, want 2", len(events))
	}
	if !events[0].Timestamp.After(events[1].Timestamp) {
		t.Errorf("expected newest first: %v then %v", events[0].Timestamp, events[1].Timestamp)
	}
}

func ptr[T any](v T) *T { return &v }

func TestStore_DeleteBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	for _, age := range []time.Duration{200 * time.Hour, 100 * time.Hour, time.Hour} {
		if err := store.Log(ctx, audit.Event{
			Timestamp: now.Add(-age),
			Category:  audit.CategoryAdmin,
			EventType: audit.EventUserBlocked,
		}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	n, err := store.DeleteBefore(ctx, now.Add(-50*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
	_, total, err := store.Query(ctx, audit.QueryFilter{}, paging.New(1, 10))
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if total != 1 {
		t.Errorf("remaining %d, want 1", total)
	}
}
