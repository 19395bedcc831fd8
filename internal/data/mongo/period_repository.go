package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/period"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PeriodRepository implements period.Repository for MongoDB
type PeriodRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewPeriodRepository creates a new MongoDB accounting-period repository
func NewPeriodRepository(logger *slog.Logger, db *mongo.Database) period.Repository {
	return &PeriodRepository{
		coll:   collection(db, PeriodsCollection),
		logger: logger,
	}
}

func (r *PeriodRepository) Create(ctx context.Context, p *period.Period) error {
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		r.logger.Error("Failed to create period", "name", p.Name, "error", err)
		return fmt.Errorf("failed to create period: %w", err)
	}
	return nil
}

func (r *PeriodRepository) GetByID(ctx context.Context, id string) (*period.Period, error) {
	var p period.Period
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if isNoDocuments(err) {
			return nil, period.ErrPeriodNotFound(id)
		}
		r.logger.Error("Failed to get period", "period_id", id, "error", err)
		return nil, fmt.Errorf("failed to get period: %w", err)
	}
	return &p, nil
}

func (r *PeriodRepository) List(ctx context.Context) ([]*period.Period, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}}))
	if err != nil {
		r.logger.Error("Failed to list periods", "error", err)
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	defer cursor.Close(ctx)

	periods := make([]*period.Period, 0)
	if err := cursor.All(ctx, &periods); err != nil {
		r.logger.Error("Failed to decode periods", "error", err)
		return nil, fmt.Errorf("failed to decode periods: %w", err)
	}
	return periods, nil
}

// MarkClosed flips an open period to closed in one conditional update, so
// two concurrent closes cannot both succeed.
func (r *PeriodRepository) MarkClosed(ctx context.Context, id string, lockDate time.Time, closedBy string, closedAt time.Time) error {
	filter := bson.M{"_id": id, "status": period.StatusOpen}
	update := bson.M{"$set": bson.M{
		"status":    period.StatusClosed,
		"lock_date": lockDate,
		"closed_by": closedBy,
		"closed_at": closedAt,
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to close period", "period_id", id, "error", err)
		return fmt.Errorf("failed to close period: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to check period", "period_id", id, "error", err)
		return fmt.Errorf("failed to check period: %w", err)
	}
	if n == 0 {
		return period.ErrPeriodNotFound(id)
	}
	return period.ErrPeriodClosed(id)
}

func (r *PeriodRepository) LatestLockDate(ctx context.Context) (*time.Time, error) {
	filter := bson.M{"status": period.StatusClosed, "lock_date": bson.M{"$ne": nil}}
	opts := options.FindOne().SetSort(bson.D{{Key: "lock_date", Value: -1}})

	var p period.Period
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&p); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		r.logger.Error("Failed to get latest lock date", "error", err)
		return nil, fmt.Errorf("failed to get latest lock date: %w", err)
	}
	return p.LockDate, nil
}
