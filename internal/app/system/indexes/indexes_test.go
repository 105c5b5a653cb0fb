package indexes_test

import (
	"context"
	"testing"

	"github.com/dalemusser/bloodlink/internal/app/system/indexes"
	"github.com/dalemusser/bloodlink/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func indexNames(t *testing.T, ctx context.Context, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"users":             {"uniq_users_email", "idx_users_status_blood_district_upazila", "idx_users_role_status_created"},
		"donation_requests": {"idx_dr_requester_created", "idx_dr_status_created", "idx_dr_donor_created"},
		"fundings":          {"uniq_fundings_transaction", "idx_fundings_user_status_created"},
		"audit_events":      {"idx_audit_timestamp", "idx_audit_user_timestamp"},
	}
	for coll, want := range expected {
		names := indexNames(t, ctx, db, coll)
		for _, name := range want {
			if !names[name] {
				t.Errorf("expected index %q on %s", name, coll)
			}
		}
	}
}

func TestEnsureAll_RenamesMismatchedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Same keys as uniq_fundings_transaction, but not unique and a different name.
	_, err := db.Collection("fundings").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "transaction_id", Value: 1}},
	})
	if err != nil {
		t.Fatalf("seed index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	names := indexNames(t, ctx, db, "fundings")
	if !names["uniq_fundings_transaction"] {
		t.Error("expected uniq_fundings_transaction after reconcile")
	}
	if names["transaction_id_1"] {
		t.Error("expected the default-named index to be dropped")
	}
}
