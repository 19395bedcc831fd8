package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/outbox"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
)

// OutboxPublisher implements EventPublisher by writing to the outbox in the
// caller's transaction. A poller relays the messages to the broker.
type OutboxPublisher struct {
	repo   outbox.Repository
	logger *slog.Logger
}

func NewOutboxPublisher(repo outbox.Repository, logger *slog.Logger) *OutboxPublisher {
	return &OutboxPublisher{
		repo:   repo,
		logger: logger.With("component", "outbox_publisher"),
	}
}

func (p *OutboxPublisher) Publish(ctx context.Context, topic, key string, payload any) error {
	msg, err := outbox.NewMessage(topic, key, payload)
	if err != nil {
		p.logger.Error("Failed to create outbox message (marshal payload)", "topic", topic, "key", key, "error", err)
		return fmt.Errorf("failed to create outbox message payload for %s: %w", topic, err)
	}
	msg.CorrelationID = shared.CorrelationID(ctx)
	if err := p.repo.Create(ctx, msg); err != nil {
		p.logger.Error("Failed to create outbox message", "topic", topic, "key", key, "error", err)
		return fmt.Errorf("failed to create outbox message for %s: %w", topic, err)
	}
	p.logger.Debug("Outbox message created", "topic", topic, "key", key, "outbox_id", msg.ID)
	return nil
}
