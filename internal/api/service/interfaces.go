package service

import (
	"context"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/account"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/asset"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/debt"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/order"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/period"
	"github.com/htbacgiang/ecobacgiangBE/internal/ledger"
	"github.com/shopspring/decimal"
)

// AccountService defines the chart of accounts operations exposed over HTTP
type AccountService interface {
	List(ctx context.Context, filter account.Filter) ([]*account.Account, error)
	// Create returns a ValidationError for a bad code, type or parent and a
	// ConflictError when the code exists
	Create(ctx context.Context, code, name string, typ account.Type, parentCode string) (*account.Account, error)
}

// JournalService defines the journal entry operations
type JournalService interface {
	CreateManual(ctx context.Context, in ledger.ManualEntryInput) (*journal.Entry, error)
	Get(ctx context.Context, id string) (*journal.Entry, error)
	// List returns one page of entries and the total count of matches
	List(ctx context.Context, filter journal.ListFilter) ([]*journal.Entry, int64, error)
	Update(ctx context.Context, id string, patch ledger.EntryPatch) (*journal.Entry, error)
	Delete(ctx context.Context, id string) error
}

// PostingService defines the rule-driven posting operations
type PostingService interface {
	PostGeneralEntry(ctx context.Context, in ledger.GeneralEntryInput) (*ledger.GeneralResult, error)
	PostSaleEntry(ctx context.Context, o *order.Order) (*ledger.SaleResult, error)
	PostCOGSEntry(ctx context.Context, o *order.Order) (*journal.Entry, bool, error)
	PostTransferEntry(ctx context.Context, in ledger.TransferInput) (*journal.Entry, error)
	PostAdjustingEntry(ctx context.Context, in ledger.AdjustingInput) (*journal.Entry, error)
	PostDepreciationEntry(ctx context.Context, month time.Time) (*ledger.DepreciationRun, error)
}

// AssetService defines the fixed asset register
type AssetService interface {
	Register(ctx context.Context, in RegisterAssetInput) (*asset.FixedAsset, error)
	List(ctx context.Context) ([]*asset.FixedAsset, error)
}

// PeriodService defines the accounting period operations
type PeriodService interface {
	CreatePeriod(ctx context.Context, name string, start, end time.Time) (*period.Period, error)
	ListPeriods(ctx context.Context) ([]*period.Period, error)
	// ClosePeriod returns a StateError when the period is already closed
	ClosePeriod(ctx context.Context, periodID string, lockDate *time.Time, closedBy string) (*ledger.ClosingResult, error)
}

// DebtService defines the receivable and payable operations
type DebtService interface {
	List(ctx context.Context, filter debt.Filter) ([]*debt.Debt, int64, error)
	AgingReport(ctx context.Context, kind debt.Kind, asOf time.Time) (*debt.AgingReport, error)
	ApplyPayment(ctx context.Context, debtID string, amount decimal.Decimal, opts ledger.PaymentOptions) (*ledger.PaymentResult, error)
}

// ReportService defines the read-only financial reports
type ReportService interface {
	TrialBalance(ctx context.Context, from, to *time.Time) (*ledger.TrialBalance, error)
	AccountLedger(ctx context.Context, code string, from, to *time.Time) (*ledger.AccountLedger, error)
	BalanceSheet(ctx context.Context, asOf time.Time) (*ledger.BalanceSheet, error)
	ProfitAndLoss(ctx context.Context, from, to *time.Time) (*ledger.ProfitAndLoss, error)
}

// HealthChecker is a dependency probed by the health endpoint
type HealthChecker interface {
	Ping(ctx context.Context) error
}
