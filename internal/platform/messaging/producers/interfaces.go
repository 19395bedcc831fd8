package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Message is one record handed to an EventPublisher. Topic is chosen per
// message so a single writer can relay every ledger topic.
type Message struct {
	Topic         string
	Key           string
	Value         []byte
	CorrelationID string
}

// EventPublisher publishes already-encoded messages and reports broker
// acknowledgement synchronously
type EventPublisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// DeadLetterPublisher handles publishing messages to a Dead Letter Queue
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, sourceTopic, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	headerCorrelationID = "correlation-id"
	headerDLQReason     = "dlq-reason"
	headerSourceTopic   = "source-topic"
)
