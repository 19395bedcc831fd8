package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/order"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProcessingService for testing
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

// MockDeadLetterPublisher for testing
type MockDeadLetterPublisher struct {
	mock.Mock
}

func (m *MockDeadLetterPublisher) PublishToDLQ(ctx context.Context, sourceTopic, key string, value []byte, reason string) error {
	args := m.Called(ctx, sourceTopic, key, value, reason)
	return args.Error(0)
}

func (m *MockDeadLetterPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOrderEventHandler_HandleMessage(t *testing.T) {
	valid, err := json.Marshal(order.Event{
		EventID:       "evt-1",
		CorrelationID: "corr-1",
		Order: order.Order{
			ID:            "order-1",
			Total:         decimal.NewFromInt(120000),
			PaymentMethod: order.PaymentMethodCOD,
			Status:        order.StatusShipped,
		},
	})
	require.NoError(t, err)
	missingID, err := json.Marshal(order.Event{EventID: "evt-2"})
	require.NoError(t, err)

	tests := []struct {
		name        string
		value       []byte
		withDLQ     bool
		setupMocks  func(svc *MockProcessingService, dlq *MockDeadLetterPublisher)
		expectError bool
	}{
		{
			name:    "successful processing",
			value:   valid,
			withDLQ: true,
			setupMocks: func(svc *MockProcessingService, dlq *MockDeadLetterPublisher) {
				svc.On("ProcessOrderEvent", mock.Anything, mock.MatchedBy(func(e *order.Event) bool {
					return e.Order.ID == "order-1" && e.Order.Total.Equal(decimal.NewFromInt(120000))
				})).Return(nil).Once()
			},
		},
		{
			name:    "processing error leaves message uncommitted",
			value:   valid,
			withDLQ: true,
			setupMocks: func(svc *MockProcessingService, dlq *MockDeadLetterPublisher) {
				svc.On("ProcessOrderEvent", mock.Anything, mock.Anything).Return(errors.New("mongo unavailable")).Once()
			},
			expectError: true,
		},
		{
			name:    "malformed json goes to DLQ",
			value:   []byte(`{"order":`),
			withDLQ: true,
			setupMocks: func(svc *MockProcessingService, dlq *MockDeadLetterPublisher) {
				dlq.On("PublishToDLQ", mock.Anything, "order_events", "k1", []byte(`{"order":`),
					mock.MatchedBy(func(reason string) bool {
						return strings.HasPrefix(reason, "Failed to unmarshal order event: ")
					})).Return(nil).Once()
			},
		},
		{
			name:    "missing order id goes to DLQ",
			value:   missingID,
			withDLQ: true,
			setupMocks: func(svc *MockProcessingService, dlq *MockDeadLetterPublisher) {
				dlq.On("PublishToDLQ", mock.Anything, "order_events", "k1", missingID, "Order event without order id").
					Return(nil).Once()
			},
		},
		{
			name:    "DLQ failure is retried",
			value:   []byte(`not json`),
			withDLQ: true,
			setupMocks: func(svc *MockProcessingService, dlq *MockDeadLetterPublisher) {
				dlq.On("PublishToDLQ", mock.Anything, "order_events", "k1", []byte(`not json`), mock.Anything).
					Return(errors.New("broker down")).Once()
			},
			expectError: true,
		},
		{
			name:        "no DLQ configured",
			value:       []byte(`not json`),
			setupMocks:  func(svc *MockProcessingService, dlq *MockDeadLetterPublisher) {},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockProcessingService{}
			dlq := &MockDeadLetterPublisher{}
			tt.setupMocks(svc, dlq)

			var handler *OrderEventHandler
			if tt.withDLQ {
				handler = NewOrderEventHandler(newTestLogger(), "order_events", svc, dlq)
			} else {
				handler = NewOrderEventHandler(newTestLogger(), "order_events", svc, nil)
			}

			err := handler.HandleMessage(context.Background(), []byte("k1"), tt.value)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			svc.AssertExpectations(t)
			dlq.AssertExpectations(t)
		})
	}
}

func TestPaymentEventHandler_HandleMessage(t *testing.T) {
	valid := []byte(`{"event_id":"pay-1","reference":"SALE-20240501-0001","amount":"150000","method":"bank_transfer","received_at":"2024-05-02T08:00:00Z"}`)

	t.Run("decodes and forwards", func(t *testing.T) {
		svc := &MockProcessingService{}
		svc.On("ProcessPaymentEvent", mock.Anything, mock.MatchedBy(func(e *shared.PaymentEvent) bool {
			return e.Reference == "SALE-20240501-0001" && e.Amount.Equal(decimal.NewFromInt(150000))
		})).Return(nil).Once()

		handler := NewPaymentEventHandler(newTestLogger(), "payment_events", svc, &MockDeadLetterPublisher{})
		assert.NoError(t, handler.HandleMessage(context.Background(), []byte("pay-1"), valid))
		svc.AssertExpectations(t)
	})

	t.Run("processing error is returned", func(t *testing.T) {
		svc := &MockProcessingService{}
		svc.On("ProcessPaymentEvent", mock.Anything, mock.Anything).Return(errors.New("timeout")).Once()

		handler := NewPaymentEventHandler(newTestLogger(), "payment_events", svc, &MockDeadLetterPublisher{})
		err := handler.HandleMessage(context.Background(), []byte("pay-1"), valid)
		assert.ErrorContains(t, err, "pay-1")
	})

	t.Run("bad amount goes to DLQ", func(t *testing.T) {
		svc := &MockProcessingService{}
		dlq := &MockDeadLetterPublisher{}
		value := []byte(`{"event_id":"pay-2","amount":"abc"}`)
		dlq.On("PublishToDLQ", mock.Anything, "payment_events", "pay-2", value, mock.Anything).Return(nil).Once()

		handler := NewPaymentEventHandler(newTestLogger(), "payment_events", svc, dlq)
		assert.NoError(t, handler.HandleMessage(context.Background(), []byte("pay-2"), value))
		dlq.AssertExpectations(t)
		svc.AssertNotCalled(t, "ProcessPaymentEvent", mock.Anything, mock.Anything)
	})
}
