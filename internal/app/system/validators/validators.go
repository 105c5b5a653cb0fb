// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/bloodlink/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema, logger); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("donation_requests", donationRequestsSchema())
	ensure("fundings", fundingsSchema())

	// No validator; the collection is still created up front.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		logger.Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			logger.Debug("collection exists", zap.String("collection", name))
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	logger.Debug("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	str      = bson.M{"bsonType": "string"}
)

func bloodGroupEnum() bson.A {
	out := bson.A{}
	for _, g := range models.BloodGroups {
		out = append(out, g)
	}
	return out
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "password", "blood_group", "district", "upazila", "role", "status"},
			"properties": bson.M{
				"name":        nonBlank,
				"email":       nonBlank,
				"password":    nonBlank,
				"avatar":      bson.M{"bsonType": "string"},
				"blood_group": bson.M{"enum": bloodGroupEnum()},
				"district":    str,
				"upazila":     str,
				"role":        bson.M{"enum": bson.A{models.RoleDonor, models.RoleVolunteer, models.RoleAdmin}},
				"status":      bson.M{"enum": bson.A{models.StatusActive, models.StatusBlocked}},
			},
		},
	}
}

func donationRequestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{
				"requester", "recipient_name", "recipient_district", "recipient_upazila",
				"hospital_name", "full_address", "blood_group", "donation_date", "donation_time",
				"request_message", "status",
			},
			"properties": bson.M{
				"requester":          bson.M{"bsonType": "objectId"},
				"recipient_name":     nonBlank,
				"recipient_district": str,
				"recipient_upazila":  str,
				"hospital_name":      nonBlank,
				"full_address":       nonBlank,
				"blood_group":        bson.M{"enum": bloodGroupEnum()},
				"donation_date":      bson.M{"bsonType": "date"},
				"donation_time":      str,
				"request_message":    nonBlank,
				"status": bson.M{"enum": bson.A{
					string(models.RequestPending), string(models.RequestInProgress),
					string(models.RequestDone), string(models.RequestCanceled),
				}},
				"donor": bson.M{"bsonType": bson.A{"objectId", "null"}},
			},
		},
	}
}

func fundingsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user", "amount", "transaction_id", "status", "payment_method"},
			"properties": bson.M{
				"user":           bson.M{"bsonType": "objectId"},
				"amount":         bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}, "minimum": 0},
				"transaction_id": nonBlank,
				"status":         bson.M{"enum": bson.A{models.FundingPending, models.FundingCompleted, models.FundingFailed}},
				"payment_method": nonBlank,
			},
		},
	}
}
