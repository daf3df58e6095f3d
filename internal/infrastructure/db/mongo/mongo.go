// Package mongo implements the repositories on MongoDB. Documents use the
// domain's string UUIDs as _id so ids are portable across stores.
package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

const (
	collectionUsers    = "users"
	collectionClients  = "clients"
	collectionAccounts = "accounts"
)

// Unique index names. Duplicate-key errors are mapped back to domain
// errors by looking for these names in the server message.
const (
	indexUserEmail     = "users_email_key"
	indexClientCuit    = "clients_user_id_cuit_key"
	indexAccountName   = "accounts_user_id_name_key"
	indexAccountClient = "accounts_user_id_client_id_key"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the unique indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Only string cuits and client ids take part in uniqueness; nulls may repeat.
	stringCuit := bson.M{"cuit": bson.M{"$type": "string"}}
	stringClient := bson.M{"client_id": bson.M{"$type": "string"}}

	specs := map[string][]mongo.IndexModel{
		collectionUsers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(indexUserEmail),
			},
		},
		collectionClients: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "cuit", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(indexClientCuit).SetPartialFilterExpression(stringCuit),
			},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collectionAccounts: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(indexAccountName),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "client_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(indexAccountClient).SetPartialFilterExpression(stringClient),
			},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("indexes %s: %w", coll, err)
		}
	}
	return nil
}

// duplicateIndex reports whether err is a duplicate-key error and, when the
// server named it, which of our unique indexes was violated.
func duplicateIndex(err error) (string, bool) {
	if !mongo.IsDuplicateKeyError(err) {
		return "", false
	}
	for _, name := range []string{indexUserEmail, indexClientCuit, indexAccountName, indexAccountClient} {
		if strings.Contains(err.Error(), name) {
			return name, true
		}
	}
	return "", true
}
