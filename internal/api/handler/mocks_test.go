package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/middleware"
	"github.com/htbacgiang/ecobacgiangBE/internal/api/service"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/account"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/asset"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/debt"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/order"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/period"
	"github.com/htbacgiang/ecobacgiangBE/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAccountService struct{ mock.Mock }

func (m *MockAccountService) List(ctx context.Context, filter account.Filter) ([]*account.Account, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountService) Create(ctx context.Context, code, name string, typ account.Type, parentCode string) (*account.Account, error) {
	args := m.Called(ctx, code, name, typ, parentCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

type MockJournalService struct{ mock.Mock }

func (m *MockJournalService) CreateManual(ctx context.Context, in ledger.ManualEntryInput) (*journal.Entry, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Entry), args.Error(1)
}

func (m *MockJournalService) Get(ctx context.Context, id string) (*journal.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Entry), args.Error(1)
}

func (m *MockJournalService) List(ctx context.Context, filter journal.ListFilter) ([]*journal.Entry, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*journal.Entry), args.Get(1).(int64), args.Error(2)
}

func (m *MockJournalService) Update(ctx context.Context, id string, patch ledger.EntryPatch) (*journal.Entry, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Entry), args.Error(1)
}

func (m *MockJournalService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPostingService struct{ mock.Mock }

func (m *MockPostingService) PostGeneralEntry(ctx context.Context, in ledger.GeneralEntryInput) (*ledger.GeneralResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.GeneralResult), args.Error(1)
}

func (m *MockPostingService) PostSaleEntry(ctx context.Context, o *order.Order) (*ledger.SaleResult, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.SaleResult), args.Error(1)
}

func (m *MockPostingService) PostCOGSEntry(ctx context.Context, o *order.Order) (*journal.Entry, bool, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*journal.Entry), args.Bool(1), args.Error(2)
}

func (m *MockPostingService) PostTransferEntry(ctx context.Context, in ledger.TransferInput) (*journal.Entry, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Entry), args.Error(1)
}

func (m *MockPostingService) PostAdjustingEntry(ctx context.Context, in ledger.AdjustingInput) (*journal.Entry, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*journal.Entry), args.Error(1)
}

func (m *MockPostingService) PostDepreciationEntry(ctx context.Context, month time.Time) (*ledger.DepreciationRun, error) {
	args := m.Called(ctx, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.DepreciationRun), args.Error(1)
}

type MockAssetService struct{ mock.Mock }

func (m *MockAssetService) Register(ctx context.Context, in service.RegisterAssetInput) (*asset.FixedAsset, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asset.FixedAsset), args.Error(1)
}

func (m *MockAssetService) List(ctx context.Context) ([]*asset.FixedAsset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*asset.FixedAsset), args.Error(1)
}

type MockPeriodService struct{ mock.Mock }

func (m *MockPeriodService) CreatePeriod(ctx context.Context, name string, start, end time.Time) (*period.Period, error) {
	args := m.Called(ctx, name, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*period.Period), args.Error(1)
}

func (m *MockPeriodService) ListPeriods(ctx context.Context) ([]*period.Period, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*period.Period), args.Error(1)
}

func (m *MockPeriodService) ClosePeriod(ctx context.Context, periodID string, lockDate *time.Time, closedBy string) (*ledger.ClosingResult, error) {
	args := m.Called(ctx, periodID, lockDate, closedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.ClosingResult), args.Error(1)
}

type MockDebtService struct{ mock.Mock }

func (m *MockDebtService) List(ctx context.Context, filter debt.Filter) ([]*debt.Debt, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*debt.Debt), args.Get(1).(int64), args.Error(2)
}

func (m *MockDebtService) AgingReport(ctx context.Context, kind debt.Kind, asOf time.Time) (*debt.AgingReport, error) {
	args := m.Called(ctx, kind, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*debt.AgingReport), args.Error(1)
}

func (m *MockDebtService) ApplyPayment(ctx context.Context, debtID string, amount decimal.Decimal, opts ledger.PaymentOptions) (*ledger.PaymentResult, error) {
	args := m.Called(ctx, debtID, amount, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PaymentResult), args.Error(1)
}

type MockReportService struct{ mock.Mock }

func (m *MockReportService) TrialBalance(ctx context.Context, from, to *time.Time) (*ledger.TrialBalance, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TrialBalance), args.Error(1)
}

func (m *MockReportService) AccountLedger(ctx context.Context, code string, from, to *time.Time) (*ledger.AccountLedger, error) {
	args := m.Called(ctx, code, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.AccountLedger), args.Error(1)
}

func (m *MockReportService) BalanceSheet(ctx context.Context, asOf time.Time) (*ledger.BalanceSheet, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.BalanceSheet), args.Error(1)
}

func (m *MockReportService) ProfitAndLoss(ctx context.Context, from, to *time.Time) (*ledger.ProfitAndLoss, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.ProfitAndLoss), args.Error(1)
}

type MockHealthChecker struct{ mock.Mock }

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationID())
	return r
}

// envelope is the decoded response body with data kept raw
type envelope struct {
	Data          json.RawMessage `json:"data"`
	Error         *ErrorInfo      `json:"error"`
	CorrelationID string          `json:"correlation_id"`
	Meta          *MetaInfo       `json:"meta"`
}

func newJSONRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func perform(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return serve(t, r, newJSONRequest(t, method, path, body))
}

func serve(t *testing.T, r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	}
	return rr, env
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
