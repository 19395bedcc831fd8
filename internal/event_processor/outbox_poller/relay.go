package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/outbox"
	"github.com/htbacgiang/ecobacgiangBE/internal/platform/messaging/producers"
)

// Relay hands one outbox message to the broker
type Relay interface {
	Relay(ctx context.Context, message *outbox.Message) error
}

// KafkaRelay publishes outbox messages and marks them processed once the
// broker acknowledged the write
type KafkaRelay struct {
	outboxRepo outbox.Repository
	publisher  producers.EventPublisher
	logger     *slog.Logger
}

func NewKafkaRelay(
	outboxRepo outbox.Repository,
	publisher producers.EventPublisher,
	logger *slog.Logger,
) Relay {
	return &KafkaRelay{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

func (r *KafkaRelay) Relay(ctx context.Context, message *outbox.Message) error {
	logger := r.logger.With("outbox_id", message.ID, "topic", message.Topic)
	if message.CorrelationID != "" {
		logger = logger.With("correlation_id", message.CorrelationID)
	}

	err := r.publisher.Publish(ctx, producers.Message{
		Topic:         message.Topic,
		Key:           message.Key,
		Value:         message.Payload,
		CorrelationID: message.CorrelationID,
	})
	if err != nil {
		return fmt.Errorf("publish outbox message %s: %w", message.ID, err)
	}

	// A failure here republishes the message on the next tick. Consumers
	// deduplicate on the entry reference.
	if err := r.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusProcessed); err != nil {
		logger.Error("Published outbox message but failed to mark it processed", "error", err)
		return fmt.Errorf("mark outbox message %s processed: %w", message.ID, err)
	}

	logger.Debug("Outbox message relayed", "key", message.Key)
	return nil
}
