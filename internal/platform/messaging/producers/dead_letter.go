package producers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/config"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/segmentio/kafka-go"
)

// ErrDLQDisabled is returned when no DLQ topic is configured.
var ErrDLQDisabled = errors.New("dead letter queue is disabled")

// DLQProducer parks order and payment events the processor cannot parse.
type DLQProducer struct {
	logger   *slog.Logger
	writer   KafkaWriter
	dlqTopic string
}

// NewDLQProducer returns a nil producer when no DLQ topic is configured. The
// event processor then retries unparseable messages instead of parking them.
func NewDLQProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*DLQProducer, error) {
	if cfg.DLQTopic == "" {
		logger.Info("DLQ topic not configured, dead letters disabled")
		return nil, nil
	}

	conn, err := dialAny(ctx, cfg.BrokerList())
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for DLQ producer: %w", err)
	}
	defer conn.Close()

	if err := ensureTopics(conn, cfg.NumPartitions, cfg.ReplicationFactor, logger, cfg.DLQTopic); err != nil {
		return nil, fmt.Errorf("failed to ensure DLQ topic %s: %w", cfg.DLQTopic, err)
	}

	return &DLQProducer{
		logger: logger.With("component", "dlq_producer"),
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.BrokerList()...),
			Topic:        cfg.DLQTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: cfg.MaxWait,
		},
		dlqTopic: cfg.DLQTopic,
	}, nil
}

// DeadLetter is the value written to the DLQ topic. A JSON payload is kept
// as-is so it can be replayed; anything else is stored as text.
type DeadLetter struct {
	SourceTopic   string          `json:"source_topic"`
	Key           string          `json:"key"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	RawPayload    string          `json:"raw_payload,omitempty"`
	Reason        string          `json:"reason"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	RejectedAt    time.Time       `json:"rejected_at"`
}

func newDeadLetter(ctx context.Context, sourceTopic, key string, value []byte, reason string, now time.Time) DeadLetter {
	dl := DeadLetter{
		SourceTopic:   sourceTopic,
		Key:           key,
		Reason:        reason,
		CorrelationID: shared.CorrelationID(ctx),
		RejectedAt:    now.UTC(),
	}
	if json.Valid(value) {
		dl.Payload = json.RawMessage(value)
	} else {
		dl.RawPayload = string(value)
	}
	return dl
}

// PublishToDLQ parks a rejected order or payment event with its source topic
// and the reason it was rejected.
func (p *DLQProducer) PublishToDLQ(ctx context.Context, sourceTopic, key string, value []byte, reason string) error {
	if p == nil || p.writer == nil {
		return ErrDLQDisabled
	}

	dl := newDeadLetter(ctx, sourceTopic, key, value, reason, time.Now())
	encoded, err := json.Marshal(dl)
	if err != nil {
		return fmt.Errorf("failed to encode dead letter from %s: %w", sourceTopic, err)
	}

	headers := []kafka.Header{
		{Key: headerDLQReason, Value: []byte(reason)},
		{Key: headerSourceTopic, Value: []byte(sourceTopic)},
	}
	if dl.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: headerCorrelationID, Value: []byte(dl.CorrelationID)})
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: encoded, Headers: headers}); err != nil {
		p.logger.Error("Failed to park message in DLQ",
			"dlq_topic", p.dlqTopic,
			"source_topic", sourceTopic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish to DLQ %s: %w", p.dlqTopic, err)
	}

	p.logger.Warn("Message parked in DLQ",
		"dlq_topic", p.dlqTopic,
		"source_topic", sourceTopic,
		"key", key,
		"reason", reason,
		"correlation_id", dl.CorrelationID,
	)
	return nil
}

func (p *DLQProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close DLQ writer for %s: %w", p.dlqTopic, err)
	}
	return nil
}
