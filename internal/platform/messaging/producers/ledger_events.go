package producers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/htbacgiang/ecobacgiangBE/internal/config"
	"github.com/segmentio/kafka-go"
)

var errMissingTopic = errors.New("message topic is required")

// LedgerEventProducer writes ledger events for the outbox relay. Writes are
// synchronous so a message is only marked processed once the broker has it.
type LedgerEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
}

// NewLedgerEventProducer dials the brokers, ensures topics exist and builds a
// writer without a fixed topic.
func NewLedgerEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig, topics ...string) (*LedgerEventProducer, error) {
	conn, err := dialAny(ctx, cfg.BrokerList())
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for ledger event producer: %w", err)
	}
	defer conn.Close()

	if err := ensureTopics(conn, cfg.NumPartitions, cfg.ReplicationFactor, logger, topics...); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger topics exist: %w", err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.BrokerList()...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.MaxWait,
	}

	return &LedgerEventProducer{
		logger: logger.With("component", "ledger_event_producer"),
		writer: writer,
	}, nil
}

// Publish writes msg to its topic, keyed so one source stays on one partition
func (p *LedgerEventProducer) Publish(ctx context.Context, msg Message) error {
	if msg.Topic == "" {
		return errMissingTopic
	}

	record := kafka.Message{
		Topic: msg.Topic,
		Key:   []byte(msg.Key),
		Value: msg.Value,
	}
	if msg.CorrelationID != "" {
		record.Headers = append(record.Headers, kafka.Header{Key: headerCorrelationID, Value: []byte(msg.CorrelationID)})
	}

	if err := p.writer.WriteMessages(ctx, record); err != nil {
		p.logger.Error("Failed to publish ledger event",
			"topic", msg.Topic,
			"key", msg.Key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s: %w", msg.Topic, err)
	}

	p.logger.Debug("Published ledger event",
		"topic", msg.Topic,
		"key", msg.Key,
		"correlation_id", msg.CorrelationID,
	)
	return nil
}

func (p *LedgerEventProducer) Close() error {
	p.logger.Info("Closing ledger event producer")
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close ledger event writer: %w", err)
	}
	return nil
}
