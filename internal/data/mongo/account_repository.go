package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/account"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AccountRepository implements account.Repository for MongoDB
type AccountRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewAccountRepository creates a new MongoDB chart-of-accounts repository
func NewAccountRepository(logger *slog.Logger, db *mongo.Database) account.Repository {
	return &AccountRepository{
		coll:   collection(db, AccountsCollection),
		logger: logger,
	}
}

// Create inserts an account. The code is the document id, so a second insert
// of the same code fails with ErrDuplicateAccount.
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	if _, err := r.coll.InsertOne(ctx, acc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return account.ErrDuplicateAccount(acc.Code)
		}
		r.logger.Error("Failed to create account", "code", acc.Code, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByCode(ctx context.Context, code string) (*account.Account, error) {
	var acc account.Account
	if err := r.coll.FindOne(ctx, bson.M{"_id": code}).Decode(&acc); err != nil {
		if isNoDocuments(err) {
			return nil, account.ErrAccountNotFound(code)
		}
		r.logger.Error("Failed to get account", "code", code, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &acc, nil
}

func (r *AccountRepository) List(ctx context.Context, filter account.Filter) ([]*account.Account, error) {
	query := bson.M{}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return r.find(ctx, query)
}

func (r *AccountRepository) ListByCodes(ctx context.Context, codes []string) (map[string]*account.Account, error) {
	out := make(map[string]*account.Account, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	accounts, err := r.find(ctx, bson.M{"_id": bson.M{"$in": codes}})
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		out[acc.Code] = acc
	}
	return out, nil
}

func (r *AccountRepository) find(ctx context.Context, query bson.M) ([]*account.Account, error) {
	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		r.logger.Error("Failed to list accounts", "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer cursor.Close(ctx)

	accounts := make([]*account.Account, 0)
	if err := cursor.All(ctx, &accounts); err != nil {
		r.logger.Error("Failed to decode accounts", "error", err)
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}
	return accounts, nil
}
