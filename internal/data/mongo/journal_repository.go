package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JournalRepository implements journal.Repository for MongoDB. Lines are
// embedded in their entry document.
type JournalRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewJournalRepository creates a new MongoDB journal repository
func NewJournalRepository(logger *slog.Logger, db *mongo.Database) journal.Repository {
	return &JournalRepository{
		coll:   collection(db, JournalCollection),
		logger: logger,
	}
}

// Insert stores a posted entry. The unique reference index turns a reused
// reference into ErrDuplicateReference.
func (r *JournalRepository) Insert(ctx context.Context, entry *journal.Entry) error {
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return journal.ErrDuplicateReference(entry.Reference)
		}
		r.logger.Error("Failed to insert journal entry",
			"reference", entry.Reference,
			"error", err)
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return nil
}

func (r *JournalRepository) GetByID(ctx context.Context, id string) (*journal.Entry, error) {
	return r.findOne(ctx, bson.M{"_id": id}, id)
}

func (r *JournalRepository) GetByReference(ctx context.Context, reference string) (*journal.Entry, error) {
	return r.findOne(ctx, bson.M{"reference": reference}, reference)
}

func (r *JournalRepository) FindBySource(ctx context.Context, sourceType, sourceID string, typ journal.EntryType) (*journal.Entry, error) {
	return r.findOne(ctx, bson.M{
		"source_type": sourceType,
		"source_id":   sourceID,
		"type":        typ,
	}, sourceType+"/"+sourceID)
}

func (r *JournalRepository) FindBySourceAccount(ctx context.Context, sourceID, accountCode string) (*journal.Entry, error) {
	return r.findOne(ctx, bson.M{
		"source_id":          sourceID,
		"lines.account_code": accountCode,
	}, sourceID)
}

func (r *JournalRepository) findOne(ctx context.Context, filter bson.M, key string) (*journal.Entry, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "posted_at", Value: 1}})
	var entry journal.Entry
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&entry); err != nil {
		if isNoDocuments(err) {
			return nil, journal.ErrEntryNotFound(key)
		}
		r.logger.Error("Failed to get journal entry", "key", key, "error", err)
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	return &entry, nil
}

// List returns one page of entries, newest transaction date first, and the
// total number of matches.
func (r *JournalRepository) List(ctx context.Context, filter journal.ListFilter) ([]*journal.Entry, int64, error) {
	query := bson.M{}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.AccountCode != "" {
		query["lines.account_code"] = filter.AccountCode
	}
	if filter.SourceType != "" {
		query["source_type"] = filter.SourceType
	}
	if filter.SourceID != "" {
		query["source_id"] = filter.SourceID
	}
	if dates := dateRange(filter.From, filter.To); dates != nil {
		query["transaction_date"] = dates
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		r.logger.Error("Failed to count journal entries", "error", err)
		return nil, 0, fmt.Errorf("failed to count journal entries: %w", err)
	}

	sort := bson.D{{Key: "transaction_date", Value: -1}, {Key: "posted_at", Value: -1}}
	cursor, err := r.coll.Find(ctx, query, page(sort, filter.Limit, filter.Offset))
	if err != nil {
		r.logger.Error("Failed to list journal entries", "error", err)
		return nil, 0, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]*journal.Entry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode journal entries", "error", err)
		return nil, 0, fmt.Errorf("failed to decode journal entries: %w", err)
	}
	return entries, total, nil
}

func (r *JournalRepository) Replace(ctx context.Context, entry *journal.Entry) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": entry.ID}, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return journal.ErrDuplicateReference(entry.Reference)
		}
		r.logger.Error("Failed to replace journal entry", "id", entry.ID, "error", err)
		return fmt.Errorf("failed to replace journal entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return journal.ErrEntryNotFound(entry.ID)
	}
	return nil
}

func (r *JournalRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete journal entry", "id", id, "error", err)
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return journal.ErrEntryNotFound(id)
	}
	return nil
}

// AccountTotals sums debit and credit per account code over the matching
// entries, ordered by code.
func (r *JournalRepository) AccountTotals(ctx context.Context, filter journal.LineFilter) ([]journal.AccountTotal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: entryMatch(filter.From, filter.To, filter.ExcludeTypes)}},
		{{Key: "$unwind", Value: "$lines"}},
	}
	if len(filter.AccountCodes) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{
			"lines.account_code": bson.M{"$in": filter.AccountCodes},
		}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$group", Value: bson.M{
			"_id":    "$lines.account_code",
			"debit":  bson.M{"$sum": "$lines.debit"},
			"credit": bson.M{"$sum": "$lines.credit"},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}},
	)

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate account totals", "error", err)
		return nil, fmt.Errorf("failed to aggregate account totals: %w", err)
	}
	defer cursor.Close(ctx)

	totals := make([]journal.AccountTotal, 0)
	if err := cursor.All(ctx, &totals); err != nil {
		r.logger.Error("Failed to decode account totals", "error", err)
		return nil, fmt.Errorf("failed to decode account totals: %w", err)
	}
	return totals, nil
}

// AccountLines unwinds the entries touching code and returns its lines in
// posting order.
func (r *JournalRepository) AccountLines(ctx context.Context, code string, from, to *time.Time) ([]journal.LedgerLine, error) {
	match := entryMatch(from, to, nil)
	match["lines.account_code"] = code

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$lines"}},
		{{Key: "$match", Value: bson.M{"lines.account_code": code}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "transaction_date", Value: 1},
			{Key: "posted_at", Value: 1},
			{Key: "reference", Value: 1},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate account lines", "code", code, "error", err)
		return nil, fmt.Errorf("failed to aggregate account lines: %w", err)
	}
	defer cursor.Close(ctx)

	lines := make([]journal.LedgerLine, 0)
	if err := cursor.All(ctx, &lines); err != nil {
		r.logger.Error("Failed to decode account lines", "code", code, "error", err)
		return nil, fmt.Errorf("failed to decode account lines: %w", err)
	}
	return lines, nil
}

func entryMatch(from, to *time.Time, exclude []journal.EntryType) bson.M {
	match := bson.M{}
	if dates := dateRange(from, to); dates != nil {
		match["transaction_date"] = dates
	}
	if len(exclude) > 0 {
		match["type"] = bson.M{"$nin": exclude}
	}
	return match
}

// dateRange builds an inclusive range condition, or nil when unbounded.
func dateRange(from, to *time.Time) bson.M {
	if from == nil && to == nil {
		return nil
	}
	cond := bson.M{}
	if from != nil {
		cond["$gte"] = *from
	}
	if to != nil {
		cond["$lte"] = *to
	}
	return cond
}
