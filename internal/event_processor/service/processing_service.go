package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/order"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
)

type ProcessingServiceImpl struct {
	sales    SalePoster
	payments PaymentApplier
	logger   *slog.Logger
}

func NewProcessingService(sales SalePoster, payments PaymentApplier, logger *slog.Logger) ProcessingService {
	return &ProcessingServiceImpl{
		sales:    sales,
		payments: payments,
		logger:   logger,
	}
}

// ProcessOrderEvent posts the sale of an order once it is payable and, after
// shipment, its cost of goods. Both postings are idempotent per order.
func (s *ProcessingServiceImpl) ProcessOrderEvent(ctx context.Context, event *order.Event) error {
	if event.CorrelationID != "" {
		ctx = shared.WithCorrelationID(ctx, event.CorrelationID)
	}
	o := &event.Order
	logger := s.logger.With("event_id", event.EventID, "order_id", o.ID, "status", o.Status)
	if event.CorrelationID != "" {
		logger = logger.With("correlation_id", event.CorrelationID)
	}

	if o.Status == order.StatusCancelled {
		logger.Info("Ignoring cancelled order")
		return nil
	}
	if !saleRecognizable(o) {
		logger.Info("Order not yet paid, skipping sale posting")
		return nil
	}

	logger.Info("Processing order event")

	sale, err := s.sales.PostSaleEntry(ctx, o)
	if err != nil {
		return s.settle(logger, "sale", err)
	}
	if sale.Deferred {
		return nil
	}

	if !o.Status.HasShipped() {
		return nil
	}
	if _, created, err := s.sales.PostCOGSEntry(ctx, o); err != nil {
		return s.settle(logger, "cogs", err)
	} else if created {
		logger.Info("Cost of goods posted")
	}
	return nil
}

// ProcessPaymentEvent routes a payment confirmation to the matching receivable.
func (s *ProcessingServiceImpl) ProcessPaymentEvent(ctx context.Context, event *shared.PaymentEvent) error {
	if event.CorrelationID != "" {
		ctx = shared.WithCorrelationID(ctx, event.CorrelationID)
	}
	logger := s.logger.With("event_id", event.EventID, "reference", event.Reference, "amount", event.Amount.String())
	if event.CorrelationID != "" {
		logger = logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Processing payment event")

	result, err := s.payments.MatchAndApply(ctx, *event)
	if err != nil {
		return s.settle(logger, "payment", err)
	}
	logger.Info("Payment applied",
		"debt_id", result.Debt.ID,
		"applied", result.Applied.String(),
		"remaining", result.Debt.RemainingAmount.String(),
	)
	return nil
}

// settle acknowledges business rejections, which a redelivery cannot fix, and
// hands every other error back to the consumer for retry.
func (s *ProcessingServiceImpl) settle(logger *slog.Logger, step string, err error) error {
	switch shared.KindOf(err) {
	case shared.KindValidation, shared.KindState, shared.KindNotFound, shared.KindConflict:
		logger.Warn("Event rejected by ledger, acknowledging", "step", step, "error", err)
		return nil
	}
	logger.Error("Event processing failed", "step", step, "error", err)
	return fmt.Errorf("%s posting failed: %w", step, err)
}

// saleRecognizable reports whether revenue can be booked for o. COD orders are
// passed through so the posting engine can defer them until shipment.
func saleRecognizable(o *order.Order) bool {
	if o.PaymentMethod == order.PaymentMethodCOD {
		return true
	}
	switch o.Status {
	case order.StatusPaid, order.StatusShipped, order.StatusDelivered:
		return true
	}
	return o.PaidAt != nil
}
