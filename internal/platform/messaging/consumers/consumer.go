package consumers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/config"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one record. A nil return commits the offset.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Topic() string
	Close() error
}

// KafkaReader is the part of *kafka.Reader the consumer drives.
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DeadLetterSink parks a record the handler keeps rejecting.
type DeadLetterSink interface {
	PublishToDLQ(ctx context.Context, sourceTopic, key string, originalMessageValue []byte, reason string) error
}

const (
	defaultHandleAttempts = 3
	defaultBackoff        = time.Second
	defaultMaxBackoff     = 30 * time.Second
)

// KafkaConsumer reads one topic within the configured consumer group.
// Group commits are cumulative per partition, so the loop never moves past
// a failing record: after the in-place attempts it is handed to the dead
// letter sink, and without one (or when that fails) it is retried until the
// context ends.
type KafkaConsumer struct {
	reader      KafkaReader
	topic       string
	groupID     string
	attempts    int
	backoff     time.Duration
	maxBackoff  time.Duration
	deadLetters DeadLetterSink
	logger      *slog.Logger
}

func NewKafkaConsumer(logger *slog.Logger, cfg *config.KafkaConfig, topic string) *KafkaConsumer {
	startOffset := kafka.FirstOffset
	if cfg.StartOffset != 0 {
		startOffset = cfg.StartOffset
	}
	return &KafkaConsumer{
		topic:      topic,
		groupID:    cfg.ConsumerGroup,
		attempts:   defaultHandleAttempts,
		backoff:    defaultBackoff,
		maxBackoff: defaultMaxBackoff,
		logger:     logger.With("topic", topic, "group_id", cfg.ConsumerGroup),
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.BrokerList(),
			Topic:       topic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: startOffset,
		}),
	}
}

// WithDeadLetters sets where exhausted records go. A nil sink keeps the
// retry-forever behaviour.
func (c *KafkaConsumer) WithDeadLetters(sink DeadLetterSink) *KafkaConsumer {
	c.deadLetters = sink
	return c
}

func (c *KafkaConsumer) Topic() string {
	return c.topic
}

// Subscribe starts the fetch loop in a goroutine and returns immediately. The
// loop stops when ctx is cancelled.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	if handler == nil {
		return errors.New("message handler is required")
	}
	c.logger.Info("Subscribed to Kafka topic")

	go c.run(ctx, handler)
	return nil
}

func (c *KafkaConsumer) run(ctx context.Context, handler MessageHandler) {
	defer c.logger.Info("Consumer stopped")

	for ctx.Err() == nil {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("Kafka fetch failed", "error", err)
			if !c.sleep(ctx, c.backoff) {
				return
			}
			continue
		}

		log := c.logger.With("partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key))
		if err := c.handle(ctx, log, msg, handler); err != nil {
			// only ctx cancellation gets here; the offset stays uncommitted
			log.Info("Stopped before the message was handled", "error", err)
			return
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			log.Error("Commit failed after successful processing", "error", err)
		}
	}
}

// handle returns nil once the record is processed or dead-lettered, and a
// non-nil error only when ctx ends first. The wait doubles after every
// failure up to maxBackoff.
func (c *KafkaConsumer) handle(ctx context.Context, log *slog.Logger, msg kafka.Message, handler MessageHandler) error {
	attempts := max(c.attempts, 1)
	wait := c.backoff

	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg.Key, msg.Value)
		if err == nil {
			return nil
		}

		if attempt%attempts == 0 {
			if c.deadLetter(ctx, log, msg, attempt, err) {
				return nil
			}
			log.Error("Message keeps failing, partition held until it succeeds", "attempts", attempt, "error", err)
		} else {
			log.Warn("Message handling failed, retrying", "attempt", attempt, "error", err)
		}

		if !c.sleep(ctx, wait) {
			return ctx.Err()
		}
		wait = min(wait*2, max(c.maxBackoff, c.backoff))
	}
}

// deadLetter reports whether the record was parked and can be committed.
func (c *KafkaConsumer) deadLetter(ctx context.Context, log *slog.Logger, msg kafka.Message, attempts int, cause error) bool {
	if c.deadLetters == nil {
		return false
	}
	reason := fmt.Sprintf("handler failed after %d attempts: %v", attempts, cause)
	if err := c.deadLetters.PublishToDLQ(ctx, c.topic, string(msg.Key), msg.Value, reason); err != nil {
		log.Error("Dead letter publish failed", "error", err)
		return false
	}
	log.Warn("Message dead-lettered", "attempts", attempts, "error", cause)
	return true
}

// sleep waits d and reports false when ctx ended first.
func (c *KafkaConsumer) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
