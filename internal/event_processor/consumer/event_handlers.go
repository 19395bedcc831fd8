package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/order"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/htbacgiang/ecobacgiangBE/internal/event_processor/service"
	"github.com/htbacgiang/ecobacgiangBE/internal/platform/messaging/producers"
)

// OrderEventHandler handles order status messages from Kafka
type OrderEventHandler struct {
	processingService service.ProcessingService
	dlq               deadLetterSink
	logger            *slog.Logger
}

// NewOrderEventHandler creates a handler for the order topic
func NewOrderEventHandler(
	logger *slog.Logger,
	topic string,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *OrderEventHandler {
	logger = logger.With("topic", topic)
	return &OrderEventHandler{
		processingService: processingService,
		dlq:               deadLetterSink{producer: producer, topic: topic, logger: logger},
		logger:            logger,
	}
}

// HandleMessage processes one order event. A nil return commits the offset.
func (h *OrderEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event order.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return h.dlq.reject(ctx, key, value, "Failed to unmarshal order event", err)
	}
	if event.Order.ID == "" {
		return h.dlq.reject(ctx, key, value, "Order event without order id", nil)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}
	logger.Info("Received order event",
		"event_id", event.EventID,
		"order_id", event.Order.ID,
		"status", event.Order.Status,
	)

	if err := h.processingService.ProcessOrderEvent(ctx, &event); err != nil {
		return fmt.Errorf("processing order event %s failed: %w", event.EventID, err)
	}
	return nil
}

// PaymentEventHandler handles payment confirmation messages from Kafka
type PaymentEventHandler struct {
	processingService service.ProcessingService
	dlq               deadLetterSink
	logger            *slog.Logger
}

// NewPaymentEventHandler creates a handler for the payment topic
func NewPaymentEventHandler(
	logger *slog.Logger,
	topic string,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *PaymentEventHandler {
	logger = logger.With("topic", topic)
	return &PaymentEventHandler{
		processingService: processingService,
		dlq:               deadLetterSink{producer: producer, topic: topic, logger: logger},
		logger:            logger,
	}
}

// HandleMessage processes one payment confirmation. A nil return commits the offset.
func (h *PaymentEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.PaymentEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return h.dlq.reject(ctx, key, value, "Failed to unmarshal payment event", err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}
	logger.Info("Received payment event",
		"event_id", event.EventID,
		"reference", event.Reference,
		"amount", event.Amount.String(),
	)

	if err := h.processingService.ProcessPaymentEvent(ctx, &event); err != nil {
		return fmt.Errorf("processing payment event %s failed: %w", event.EventID, err)
	}
	return nil
}

type deadLetterSink struct {
	producer producers.DeadLetterPublisher
	topic    string
	logger   *slog.Logger
}

// reject parks an unprocessable message on the DLQ and acknowledges it. When
// no DLQ is configured or publishing fails the error is returned so the
// message is redelivered.
func (s deadLetterSink) reject(ctx context.Context, key, value []byte, reason string, cause error) error {
	if cause != nil {
		reason = fmt.Sprintf("%s: %s", reason, cause.Error())
	}
	s.logger.Error("Unprocessable message", "reason", reason, "message_key", string(key))

	if s.producer != nil {
		if err := s.producer.PublishToDLQ(ctx, s.topic, string(key), value, reason); err != nil {
			s.logger.Error("Failed to publish message to DLQ",
				"dlq_error", err,
				"message_key", string(key),
			)
		} else {
			s.logger.Info("Published unprocessable message to DLQ", "message_key", string(key))
			return nil
		}
	}
	return fmt.Errorf("unprocessable message: %s", reason)
}
