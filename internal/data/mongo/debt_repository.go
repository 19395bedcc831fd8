package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/debt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var decimalZero, _ = primitive.ParseDecimal128("0")

// DebtRepository implements debt.Repository for MongoDB
type DebtRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewDebtRepository creates a new MongoDB receivable/payable repository
func NewDebtRepository(logger *slog.Logger, db *mongo.Database) debt.Repository {
	return &DebtRepository{
		coll:   collection(db, DebtsCollection),
		logger: logger,
	}
}

func (r *DebtRepository) Create(ctx context.Context, d *debt.Debt) error {
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		r.logger.Error("Failed to create debt",
			"debt_id", d.ID,
			"journal_reference", d.JournalReference,
			"error", err)
		return fmt.Errorf("failed to create debt: %w", err)
	}
	return nil
}

func (r *DebtRepository) GetByID(ctx context.Context, id string) (*debt.Debt, error) {
	return r.findOne(ctx, bson.M{"_id": id}, id)
}

func (r *DebtRepository) GetByJournalReference(ctx context.Context, reference string) (*debt.Debt, error) {
	return r.findOne(ctx, bson.M{"journal_reference": reference}, reference)
}

func (r *DebtRepository) findOne(ctx context.Context, filter bson.M, key string) (*debt.Debt, error) {
	var d debt.Debt
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if isNoDocuments(err) {
			return nil, debt.ErrDebtNotFound(key)
		}
		r.logger.Error("Failed to get debt", "key", key, "error", err)
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}
	return &d, nil
}

// List returns matching debts oldest first with the total match count.
func (r *DebtRepository) List(ctx context.Context, filter debt.Filter) ([]*debt.Debt, int64, error) {
	query := bson.M{}
	if filter.Kind != "" {
		query["kind"] = filter.Kind
	}
	if filter.Status != "" {
		query["payment_status"] = filter.Status
	}
	if filter.PartnerID != "" {
		query["partner_id"] = filter.PartnerID
	}
	if filter.Outstanding {
		query["remaining_amount"] = bson.M{"$gt": decimalZero}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		r.logger.Error("Failed to count debts", "error", err)
		return nil, 0, fmt.Errorf("failed to count debts: %w", err)
	}

	cursor, err := r.coll.Find(ctx, query, page(bson.D{{Key: "created_at", Value: 1}}, filter.Limit, filter.Offset))
	if err != nil {
		r.logger.Error("Failed to list debts", "error", err)
		return nil, 0, fmt.Errorf("failed to list debts: %w", err)
	}
	defer cursor.Close(ctx)

	debts := make([]*debt.Debt, 0)
	if err := cursor.All(ctx, &debts); err != nil {
		r.logger.Error("Failed to decode debts", "error", err)
		return nil, 0, fmt.Errorf("failed to decode debts: %w", err)
	}
	return debts, total, nil
}

func (r *DebtRepository) Update(ctx context.Context, d *debt.Debt) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if err != nil {
		r.logger.Error("Failed to update debt", "debt_id", d.ID, "error", err)
		return fmt.Errorf("failed to update debt: %w", err)
	}
	if res.MatchedCount == 0 {
		return debt.ErrDebtNotFound(d.ID)
	}
	return nil
}

// CountByJournalEntry counts debts created by the entry or settled through it.
func (r *DebtRepository) CountByJournalEntry(ctx context.Context, entryID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"journal_entry_id": entryID},
		bson.M{"payments.journal_entry_id": entryID},
	}})
	if err != nil {
		r.logger.Error("Failed to count debts by entry", "journal_entry_id", entryID, "error", err)
		return 0, fmt.Errorf("failed to count debts: %w", err)
	}
	return n, nil
}
