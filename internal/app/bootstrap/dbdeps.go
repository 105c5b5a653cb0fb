// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/bloodlink/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// AuditRetention is nil when stored audit events are kept forever.
	AuditRetention *workers.AuditRetention
}
