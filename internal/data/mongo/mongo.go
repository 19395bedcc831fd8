// Package mongo implements the ledger repositories on MongoDB. Every
// collection uses Registry so money round-trips as Decimal128.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	AccountsCollection = "accounts"
	JournalCollection  = "journal_entries"
	DebtsCollection    = "debts"
	AssetsCollection   = "fixed_assets"
	PeriodsCollection  = "accounting_periods"
	ProductsCollection = "products"
	OutboxCollection   = "ledger_outbox"
)

func collection(db *mongo.Database, name string) *mongo.Collection {
	return db.Collection(name, options.Collection().SetRegistry(Registry))
}

// isNoDocuments reports whether err is the driver's empty-result error.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

var indexes = map[string][]mongo.IndexModel{
	JournalCollection: {
		{Keys: bson.D{{Key: "reference", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "transaction_date", Value: 1}}},
		{Keys: bson.D{{Key: "source_type", Value: 1}, {Key: "source_id", Value: 1}, {Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "lines.account_code", Value: 1}, {Key: "transaction_date", Value: 1}}},
	},
	DebtsCollection: {
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "payment_status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "journal_entry_id", Value: 1}}},
		{Keys: bson.D{{Key: "payments.journal_entry_id", Value: 1}}},
		{Keys: bson.D{{Key: "journal_reference", Value: 1}}},
		{Keys: bson.D{{Key: "partner_id", Value: 1}}},
	},
	AssetsCollection: {
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	},
	PeriodsCollection: {
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "lock_date", Value: -1}}},
		{Keys: bson.D{{Key: "start_date", Value: 1}}},
	},
	OutboxCollection: {
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
	},
}

// EnsureIndexes creates the indexes the repositories rely on. Existing
// indexes with the same keys are left untouched.
func EnsureIndexes(ctx context.Context, logger *slog.Logger, db *mongo.Database) error {
	for name, models := range indexes {
		created, err := db.Collection(name).Indexes().CreateMany(ctx, models)
		if err != nil {
			logger.Error("Failed to create indexes", "collection", name, "error", err)
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
		logger.Debug("Indexes ensured", "collection", name, "indexes", created)
	}
	return nil
}

// page applies limit/offset and a sort to a find.
func page(sort bson.D, limit, offset int) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}
