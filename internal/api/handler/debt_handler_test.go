package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/debt"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/htbacgiang/ecobacgiangBE/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDebtHandler_List(t *testing.T) {
	t.Run("ReceivablesWithMeta", func(t *testing.T) {
		svc := &MockDebtService{}
		svc.On("List", mock.Anything, debt.Filter{
			Kind:        debt.KindReceivable,
			Status:      debt.StatusPartial,
			Outstanding: true,
			Limit:       5,
			Offset:      5,
		}).Return([]*debt.Debt{{ID: "d6"}}, int64(6), nil).Once()

		r := setupTestRouter()
		r.GET("/receivables", NewDebtHandler(newTestLogger(), svc).ListReceivables)
		rr, env := perform(t, r, "GET", "/receivables?status=partial&outstanding=true&page=2&per_page=5", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, env.Meta)
		assert.Equal(t, 2, env.Meta.TotalPages)
		assert.Equal(t, 6, env.Meta.TotalItems)
		svc.AssertExpectations(t)
	})

	t.Run("PayablesDefaults", func(t *testing.T) {
		svc := &MockDebtService{}
		svc.On("List", mock.Anything, debt.Filter{Kind: debt.KindPayable, Limit: 20}).
			Return([]*debt.Debt{}, int64(0), nil).Once()

		r := setupTestRouter()
		r.GET("/payables", NewDebtHandler(newTestLogger(), svc).ListPayables)
		rr, _ := perform(t, r, "GET", "/payables", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		svc := &MockDebtService{}
		r := setupTestRouter()
		r.GET("/payables", NewDebtHandler(newTestLogger(), svc).ListPayables)
		rr, _ := perform(t, r, "GET", "/payables?status=overdue", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})
}

func TestDebtHandler_Aging(t *testing.T) {
	t.Run("ExplicitAsOf", func(t *testing.T) {
		svc := &MockDebtService{}
		svc.On("AgingReport", mock.Anything, debt.KindReceivable, day(2024, 6, 30)).
			Return(&debt.AgingReport{Kind: debt.KindReceivable, Count: 3, Total: decimal.NewFromInt(900)}, nil).Once()

		r := setupTestRouter()
		r.GET("/receivables/aging", NewDebtHandler(newTestLogger(), svc).ReceivableAging)
		rr, env := perform(t, r, "GET", "/receivables/aging?as_of=2024-06-30", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		var report debt.AgingReport
		require.NoError(t, json.Unmarshal(env.Data, &report))
		assert.Equal(t, 3, report.Count)
	})

	t.Run("DefaultsToNow", func(t *testing.T) {
		before := time.Now().UTC().Add(-time.Second)
		svc := &MockDebtService{}
		svc.On("AgingReport", mock.Anything, debt.KindPayable, mock.MatchedBy(func(at time.Time) bool {
			return at.After(before) && at.Before(time.Now().UTC().Add(time.Second))
		})).Return(&debt.AgingReport{Kind: debt.KindPayable}, nil).Once()

		r := setupTestRouter()
		r.GET("/payables/aging", NewDebtHandler(newTestLogger(), svc).PayableAging)
		rr, _ := perform(t, r, "GET", "/payables/aging", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})
}

func TestDebtHandler_ApplyPayment(t *testing.T) {
	paid := &ledger.PaymentResult{
		Debt:    &debt.Debt{ID: "d1", PaymentStatus: debt.StatusPartial},
		Applied: decimal.NewFromInt(300),
	}

	tests := []struct {
		name           string
		body           string
		opts           ledger.PaymentOptions
		err            error
		expectedStatus int
	}{
		{
			name:           "PostsReceiptByDefault",
			body:           `{"amount":"300","method":"cash"}`,
			opts:           ledger.PaymentOptions{Method: "cash", PostReceipt: true},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "ReceiptDisabled",
			body:           `{"amount":"300","post_receipt":false,"paid_at":"2024-06-02"}`,
			opts:           ledger.PaymentOptions{PaidAt: day(2024, 6, 2)},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "AlreadySettled",
			body:           `{"amount":"300"}`,
			opts:           ledger.PaymentOptions{PostReceipt: true},
			err:            shared.NewStateError("debt is already paid", "debt_id", "d1"),
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "StoreFailure",
			body:           `{"amount":"300"}`,
			opts:           ledger.PaymentOptions{PostReceipt: true},
			err:            errors.New("write conflict"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockDebtService{}
			call := svc.On("ApplyPayment", mock.Anything, "d1", mock.MatchedBy(func(a decimal.Decimal) bool {
				return a.Equal(decimal.NewFromInt(300))
			}), tt.opts)
			if tt.err != nil {
				call.Return(nil, tt.err).Once()
			} else {
				call.Return(paid, nil).Once()
			}

			r := setupTestRouter()
			r.POST("/debts/:id/payments", NewDebtHandler(newTestLogger(), svc).ApplyPayment)
			rr, _ := perform(t, r, "POST", "/debts/d1/payments", tt.body)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}
