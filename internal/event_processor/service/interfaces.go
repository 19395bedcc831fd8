package service

import (
	"context"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/order"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/htbacgiang/ecobacgiangBE/internal/ledger"
)

// ProcessingService turns intake events into ledger postings.
type ProcessingService interface {
	ProcessOrderEvent(ctx context.Context, event *order.Event) error
	ProcessPaymentEvent(ctx context.Context, event *shared.PaymentEvent) error
}

// SalePoster is the part of the posting engine driven by order events
type SalePoster interface {
	PostSaleEntry(ctx context.Context, o *order.Order) (*ledger.SaleResult, error)
	PostCOGSEntry(ctx context.Context, o *order.Order) (*journal.Entry, bool, error)
}

// PaymentApplier settles payment confirmations against open receivables
type PaymentApplier interface {
	MatchAndApply(ctx context.Context, event shared.PaymentEvent) (*ledger.PaymentResult, error)
}
