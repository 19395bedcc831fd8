package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/outbox"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OutboxRepository implements outbox.Repository for MongoDB. Messages live
// beside the ledger collections so they commit with the entry that raised
// them.
type OutboxRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewOutboxRepository creates a new MongoDB outbox repository
func NewOutboxRepository(logger *slog.Logger, db *mongo.Database) outbox.Repository {
	return &OutboxRepository{
		coll:   collection(db, OutboxCollection),
		logger: logger,
	}
}

// Create stores a new outbox message
func (r *OutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	if _, err := r.coll.InsertOne(ctx, message); err != nil {
		r.logger.Error("Failed to create outbox message",
			"message_id", message.ID,
			"topic", message.Topic,
			"error", err)
		return fmt.Errorf("failed to create outbox message: %w", err)
	}
	return nil
}

// GetPending retrieves pending messages, oldest first
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"status": outbox.StatusPending}, opts)
	if err != nil {
		r.logger.Error("Failed to get pending outbox messages", "error", err)
		return nil, fmt.Errorf("failed to get pending messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := make([]*outbox.Message, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		r.logger.Error("Failed to decode outbox messages", "error", err)
		return nil, fmt.Errorf("failed to decode pending messages: %w", err)
	}
	return messages, nil
}

// UpdateStatus updates message status
func (r *OutboxRepository) UpdateStatus(ctx context.Context, id string, status outbox.Status) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{
		"status":          status,
		"last_attempt_at": time.Now().UTC(),
	}})
}

// IncrementAttempts increments message attempt count
func (r *OutboxRepository) IncrementAttempts(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"last_attempt_at": time.Now().UTC()},
	})
}

func (r *OutboxRepository) update(ctx context.Context, id string, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error("Failed to update outbox message", "message_id", id, "error", err)
		return fmt.Errorf("failed to update message: %w", err)
	}
	if res.MatchedCount == 0 {
		return outbox.ErrMessageNotFound(id)
	}
	return nil
}

// Delete removes a message
func (r *OutboxRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.logger.Error("Failed to delete outbox message", "message_id", id, "error", err)
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if res.DeletedCount == 0 {
		return outbox.ErrMessageNotFound(id)
	}
	return nil
}
