package service

import (
	"context"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/order"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/htbacgiang/ecobacgiangBE/internal/ledger"
	"github.com/stretchr/testify/mock"
)

type MockSalePoster struct {
	mock.Mock
}

func (m *MockSalePoster) PostSaleEntry(ctx context.Context, o *order.Order) (*ledger.SaleResult, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.SaleResult), args.Error(1)
}

func (m *MockSalePoster) PostCOGSEntry(ctx context.Context, o *order.Order) (*journal.Entry, bool, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*journal.Entry), args.Bool(1), args.Error(2)
}

type MockPaymentApplier struct {
	mock.Mock
}

func (m *MockPaymentApplier) MatchAndApply(ctx context.Context, event shared.PaymentEvent) (*ledger.PaymentResult, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PaymentResult), args.Error(1)
}

// MockProcessingService mocks the ProcessingService interface
type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessOrderEvent(ctx context.Context, event *order.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockProcessingService) ProcessPaymentEvent(ctx context.Context, event *shared.PaymentEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
