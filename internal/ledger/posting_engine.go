package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/account"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/asset"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/debt"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/order"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/partner"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/product"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PostingEngine turns business events into balanced journal entries.
type PostingEngine struct {
	journal  *JournalStore
	chart    *ChartOfAccounts
	entries  journal.Repository
	debts    debt.Repository
	assets   asset.Repository
	products product.Repository
	partners *PartnerDirectory
	tx       TxManager
	opts     Options
	now      clock
	logger   *slog.Logger
}

func NewPostingEngine(
	journalStore *JournalStore,
	chart *ChartOfAccounts,
	entries journal.Repository,
	debts debt.Repository,
	assets asset.Repository,
	products product.Repository,
	partners *PartnerDirectory,
	tx TxManager,
	opts Options,
	logger *slog.Logger,
) *PostingEngine {
	return &PostingEngine{
		journal:  journalStore,
		chart:    chart,
		entries:  entries,
		debts:    debts,
		assets:   assets,
		products: products,
		partners: partners,
		tx:       tx,
		opts:     opts,
		now:      utcNow,
		logger:   logger.With("component", "posting_engine"),
	}
}

// SaleResult reports what PostSaleEntry did.
type SaleResult struct {
	Entry    *journal.Entry `json:"entry,omitempty"`
	Debt     *debt.Debt     `json:"debt,omitempty"`
	Created  bool           `json:"created"`
	Deferred bool           `json:"deferred"`
}

// PostSaleEntry records revenue for an order once per order.
func (e *PostingEngine) PostSaleEntry(ctx context.Context, o *order.Order) (*SaleResult, error) {
	if err := validateOrder(o); err != nil {
		return nil, err
	}
	if o.Status == order.StatusCancelled {
		return nil, shared.NewStateError("order is cancelled", "order_id", o.ID)
	}
	logger := e.logger.With("order_id", o.ID, "payment_method", o.PaymentMethod)

	cod := o.PaymentMethod == order.PaymentMethodCOD
	if cod && !o.Status.HasShipped() {
		logger.Info("Sale deferred until shipment", "status", o.Status)
		return &SaleResult{Deferred: true}, nil
	}

	result := &SaleResult{}
	err := e.tx.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := e.entries.FindBySource(ctx, journal.SourceOrder, o.ID, journal.TypeSale)
		if err == nil {
			result.Entry = existing
			return nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		var customer *partner.Partner
		if cod {
			customer, err = e.partners.Resolve(ctx, partner.KindCustomer, partner.Ref{
				ExternalID: o.Customer.ExternalID,
				Name:       o.Customer.Name,
				Phone:      o.Customer.Phone,
			})
			if err != nil {
				return fmt.Errorf("resolve customer for order %s: %w", o.ID, err)
			}
		}

		memo := "Sale " + orderLabel(o)
		var lines []journal.Line
		var date time.Time
		switch {
		case cod:
			date = e.shippedAt(o)
			lines = []journal.Line{
				journal.DebitLine(account.CodeReceivable, o.Total, memo),
				journal.CreditLine(account.CodeSalesRevenue, o.Total, memo),
			}
			lines[0].PartnerID, lines[0].PartnerKind = customer.ID, string(customer.Kind)
		case o.PaymentMethod == order.PaymentMethodCash:
			date = e.paidAt(o)
			lines = []journal.Line{
				journal.DebitLine(account.CodeCash, o.Total, memo),
				journal.CreditLine(account.CodeSalesRevenue, o.Total, memo),
			}
		default:
			date = e.paidAt(o)
			lines = []journal.Line{
				journal.DebitLine(account.CodeBank, o.Total, memo),
				journal.CreditLine(account.CodeSalesRevenue, o.Total, memo),
			}
		}

		entry := journal.NewEntry(journal.TypeSale, date, memo, lines)
		entry.SourceType, entry.SourceID = journal.SourceOrder, o.ID
		posted, err := e.journal.Post(ctx, entry)
		if err != nil {
			return err
		}
		result.Entry, result.Created = posted, true

		if !cod {
			return nil
		}
		d, err := debt.NewDebt(debt.KindReceivable, o.Total, posted.ID, posted.Reference, customer.ID, customer.Name)
		if err != nil {
			return err
		}
		invoice := posted.TransactionDate
		due := invoice.AddDate(0, 0, e.opts.ReceivableGraceDays)
		d.InvoiceDate, d.DueDate = &invoice, &due
		d.SourceID, d.Description = o.ID, memo
		if err := e.debts.Create(ctx, d); err != nil {
			return err
		}
		result.Debt = d
		return nil
	})
	if err != nil {
		logger.Error("Failed to post sale entry", "error", err)
		return nil, err
	}

	if result.Created {
		logger.Info("Sale entry posted", "reference", result.Entry.Reference, "total", o.Total.String())
	} else {
		logger.Info("Sale entry already posted", "reference", result.Entry.Reference)
	}
	return result, nil
}

// PostCOGSEntry books the cost of goods shipped for an order once per order.
// The boolean reports whether a new entry was created.
func (e *PostingEngine) PostCOGSEntry(ctx context.Context, o *order.Order) (*journal.Entry, bool, error) {
	if o == nil || strings.TrimSpace(o.ID) == "" {
		return nil, false, shared.NewValidationError("order id is required")
	}
	if len(o.Lines) == 0 {
		return nil, false, shared.NewValidationError("order has no lines", "order_id", o.ID)
	}
	logger := e.logger.With("order_id", o.ID)

	var out *journal.Entry
	created := false
	err := e.tx.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := e.entries.FindBySourceAccount(ctx, o.ID, account.CodeCOGS)
		if err == nil {
			out = existing
			return nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		total := decimal.Zero
		for _, line := range o.Lines {
			if line.Quantity <= 0 {
				return shared.NewValidationError("line quantity must be positive", "order_id", o.ID, "product_id", line.ProductID)
			}
			cost, err := e.products.GetCost(ctx, line.ProductID)
			if err != nil {
				return err
			}
			total = total.Add(cost.MovingAverageCost.Mul(decimal.NewFromInt(line.Quantity)))
		}
		total = shared.RoundMoney(total)
		if !total.IsPositive() {
			return shared.NewValidationError("cost of goods sold must be positive", "order_id", o.ID, "total", total.String())
		}

		for _, line := range o.Lines {
			if err := e.products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		memo := "Cost of goods sold " + orderLabel(o)
		entry := journal.NewEntry(journal.TypeCOGS, e.shippedAt(o), memo, []journal.Line{
			journal.DebitLine(account.CodeCOGS, total, memo),
			journal.CreditLine(account.CodeInventory, total, memo),
		})
		entry.SourceType, entry.SourceID = journal.SourceOrder, o.ID
		out, err = e.journal.Post(ctx, entry)
		if err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		logger.Error("Failed to post COGS entry", "error", err)
		return nil, false, err
	}

	logger.Info("COGS entry resolved", "reference", out.Reference, "created", created)
	return out, created, nil
}

// GeneralEntryInput is a rule-driven income or expense posting.
type GeneralEntryInput struct {
	Kind          FlowKind
	Category      Category
	Amount        decimal.Decimal
	PaymentStatus SettlementStatus
	Method        string
	Prepayment    bool
	Partner       partner.Ref
	Date          time.Time
	DueDate       *time.Time
	Memo          string
	CorrelationID string
}

// GeneralResult is the entry and the debt, if any, created by PostGeneralEntry.
type GeneralResult struct {
	Entry *journal.Entry `json:"entry"`
	Debt  *debt.Debt     `json:"debt,omitempty"`
}

// PostGeneralEntry posts an income or expense through the category rules.
func (e *PostingEngine) PostGeneralEntry(ctx context.Context, in GeneralEntryInput) (*GeneralResult, error) {
	if !in.Amount.IsPositive() {
		return nil, shared.NewValidationError("amount must be positive", "amount", in.Amount.String())
	}
	amount := shared.RoundMoney(in.Amount)
	rule, err := GeneralRule(in.Kind, in.Category, in.PaymentStatus, in.Method, in.Prepayment, amount)
	if err != nil {
		return nil, err
	}
	date := in.Date
	if date.IsZero() {
		date = e.now()
	}
	memo := in.Memo
	if memo == "" {
		memo = fmt.Sprintf("%s: %s", in.Kind, in.Category)
	}

	result := &GeneralResult{}
	err = e.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var counterparty *partner.Partner
		if rule.DebtKind != "" {
			kind := partner.KindSupplier
			if rule.DebtKind == debt.KindReceivable {
				kind = partner.KindCustomer
			}
			var err error
			counterparty, err = e.partners.Resolve(ctx, kind, in.Partner)
			if err != nil {
				return fmt.Errorf("resolve partner: %w", err)
			}
			for i := range rule.Lines {
				code := rule.Lines[i].AccountCode
				if code == account.CodeReceivable || code == account.CodePayable {
					rule.Lines[i].PartnerID, rule.Lines[i].PartnerKind = counterparty.ID, string(counterparty.Kind)
				}
			}
		}

		entry := journal.NewEntry(journal.TypeManual, date, memo, rule.Lines)
		entry.CorrelationID = in.CorrelationID
		posted, err := e.journal.Post(ctx, entry)
		if err != nil {
			return err
		}
		result.Entry = posted
		if rule.DebtKind == "" {
			return nil
		}

		d, err := debt.NewDebt(rule.DebtKind, amount, posted.ID, posted.Reference, counterparty.ID, counterparty.Name)
		if err != nil {
			return err
		}
		invoice := posted.TransactionDate
		due := invoice.AddDate(0, 0, e.opts.DefaultTermDays)
		if in.DueDate != nil {
			due = shared.StartOfDay(*in.DueDate)
		}
		d.InvoiceDate, d.DueDate, d.Description = &invoice, &due, memo
		if err := e.debts.Create(ctx, d); err != nil {
			return err
		}
		result.Debt = d
		return nil
	})
	if err != nil {
		e.logger.Error("Failed to post general entry", "kind", in.Kind, "category", in.Category, "error", err)
		return nil, err
	}
	e.logger.Info("General entry posted", "reference", result.Entry.Reference, "kind", in.Kind, "category", in.Category)
	return result, nil
}

// DepreciationPosting is one asset charged in a run.
type DepreciationPosting struct {
	AssetID   string          `json:"asset_id"`
	AssetCode string          `json:"asset_code"`
	Amount    decimal.Decimal `json:"amount"`
	EntryID   string          `json:"entry_id"`
	Reference string          `json:"reference"`
}

// DepreciationSkip is one asset left out of a run.
type DepreciationSkip struct {
	AssetID   string `json:"asset_id"`
	AssetCode string `json:"asset_code"`
	Reason    string `json:"reason"`
}

// DepreciationRun summarizes a monthly depreciation run.
type DepreciationRun struct {
	Month   string                `json:"month"`
	Posted  []DepreciationPosting `json:"posted"`
	Skipped []DepreciationSkip    `json:"skipped"`
	Failed  []DepreciationSkip    `json:"failed"`
	Total   decimal.Decimal       `json:"total"`
}

// PostDepreciationEntry charges one month of straight-line depreciation to
// every eligible asset. Each asset is posted in its own transaction.
func (e *PostingEngine) PostDepreciationEntry(ctx context.Context, month time.Time) (*DepreciationRun, error) {
	monthKey := asset.MonthKey(month)
	monthEnd := shared.EndOfMonth(month)
	logger := e.logger.With("month", monthKey)

	assets, err := e.assets.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active assets: %w", err)
	}

	run := &DepreciationRun{
		Month:   monthKey,
		Posted:  []DepreciationPosting{},
		Skipped: []DepreciationSkip{},
		Failed:  []DepreciationSkip{},
		Total:   decimal.Zero,
	}
	for _, a := range assets {
		posting, reason, err := e.depreciate(ctx, a.ID, monthKey, monthEnd)
		switch {
		case err != nil:
			logger.Error("Depreciation failed for asset", "asset_code", a.Code, "error", err)
			run.Failed = append(run.Failed, DepreciationSkip{AssetID: a.ID, AssetCode: a.Code, Reason: err.Error()})
		case reason != "":
			run.Skipped = append(run.Skipped, DepreciationSkip{AssetID: a.ID, AssetCode: a.Code, Reason: reason})
		default:
			run.Posted = append(run.Posted, *posting)
			run.Total = run.Total.Add(posting.Amount)
		}
	}

	logger.Info("Depreciation run finished", "posted", len(run.Posted), "skipped", len(run.Skipped), "failed", len(run.Failed), "total", run.Total.String())
	return run, nil
}

func (e *PostingEngine) depreciate(ctx context.Context, assetID, monthKey string, monthEnd time.Time) (*DepreciationPosting, string, error) {
	var posting *DepreciationPosting
	var reason string
	err := e.tx.WithTransaction(ctx, func(ctx context.Context) error {
		a, err := e.assets.GetByID(ctx, assetID)
		if err != nil {
			return err
		}
		switch {
		case a.Status != asset.StatusActive:
			reason = "asset is " + string(a.Status)
			return nil
		case a.AcquiredAt.After(shared.EndOfDay(monthEnd)):
			reason = "acquired after the month"
			return nil
		case a.DepreciatedIn(monthKey):
			reason = "already depreciated this month"
			return nil
		}
		amount := a.MonthlyAmount()
		if !amount.IsPositive() {
			reason = "nothing left to depreciate"
			return nil
		}

		ref := journal.DepreciationReference(monthEnd, a.Code)
		if _, err := e.entries.GetByReference(ctx, ref); err == nil {
			reason = "already posted"
			return nil
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		memo := fmt.Sprintf("Depreciation %s %s", monthKey, a.Name)
		entry := journal.NewEntry(journal.TypeDepreciation, monthEnd, memo, []journal.Line{
			journal.DebitLine(account.CodeAdminExpense, amount, memo),
			journal.CreditLine(account.CodeAccumDepreciation, amount, memo),
		})
		entry.Reference = ref
		entry.SourceType, entry.SourceID = journal.SourceAsset, a.ID
		posted, err := e.journal.Post(ctx, entry)
		if err != nil {
			return err
		}

		a.ApplyDepreciation(asset.DepreciationRecord{
			Month:          monthKey,
			Amount:         amount,
			JournalEntryID: posted.ID,
			Reference:      posted.Reference,
			PostedAt:       posted.PostedAt,
		})
		if err := e.assets.Update(ctx, a); err != nil {
			return err
		}
		posting = &DepreciationPosting{
			AssetID:   a.ID,
			AssetCode: a.Code,
			Amount:    amount,
			EntryID:   posted.ID,
			Reference: posted.Reference,
		}
		return nil
	})
	return posting, reason, err
}

// TransferInput moves money between two asset accounts.
type TransferInput struct {
	FromCode      string
	ToCode        string
	Amount        decimal.Decimal
	Date          time.Time
	Memo          string
	CorrelationID string
}

// PostTransferEntry debits the destination and credits the source.
func (e *PostingEngine) PostTransferEntry(ctx context.Context, in TransferInput) (*journal.Entry, error) {
	if in.FromCode == in.ToCode {
		return nil, shared.NewValidationError("transfer accounts must differ", "account", in.FromCode)
	}
	if !in.Amount.IsPositive() {
		return nil, shared.NewValidationError("transfer amount must be positive", "amount", in.Amount.String())
	}
	accounts, err := e.chart.EnsureAll(ctx, []string{in.FromCode, in.ToCode})
	if err != nil {
		return nil, err
	}
	for _, code := range []string{in.FromCode, in.ToCode} {
		if accounts[code].Type != account.TypeAsset {
			return nil, shared.NewValidationError("transfer accounts must be asset accounts", "account", code, "type", accounts[code].Type)
		}
	}

	date := in.Date
	if date.IsZero() {
		date = e.now()
	}
	memo := in.Memo
	if memo == "" {
		memo = fmt.Sprintf("Transfer %s to %s", in.FromCode, in.ToCode)
	}
	amount := shared.RoundMoney(in.Amount)
	entry := journal.NewEntry(journal.TypeTransfer, date, memo, []journal.Line{
		journal.DebitLine(in.ToCode, amount, memo),
		journal.CreditLine(in.FromCode, amount, memo),
	})
	entry.CorrelationID = in.CorrelationID
	return e.journal.Post(ctx, entry)
}

// AdjustingInput corrects a prior period through a current-dated entry.
type AdjustingInput struct {
	Lines         []journal.Line
	CorrectedDate time.Time
	Memo          string
	CorrelationID string
}

// PostAdjustingEntry posts a free-form entry dated today and tagged with the
// date it corrects, so it remains possible after that period is closed.
func (e *PostingEngine) PostAdjustingEntry(ctx context.Context, in AdjustingInput) (*journal.Entry, error) {
	if in.CorrectedDate.IsZero() {
		return nil, shared.NewValidationError("corrected date is required")
	}
	corrected := shared.StartOfDay(in.CorrectedDate)
	memo := in.Memo
	if memo == "" {
		memo = "Adjustment for " + corrected.Format(time.DateOnly)
	}
	entry := journal.NewEntry(journal.TypeAdjusting, e.now(), memo, in.Lines)
	entry.CorrectedDate = &corrected
	entry.CorrelationID = in.CorrelationID
	return e.journal.Post(ctx, entry)
}

func validateOrder(o *order.Order) error {
	if o == nil || strings.TrimSpace(o.ID) == "" {
		return shared.NewValidationError("order id is required")
	}
	if !o.Total.IsPositive() {
		return shared.NewValidationError("order total must be positive", "order_id", o.ID)
	}
	if !o.PaymentMethod.IsValid() {
		return shared.NewValidationError("unknown payment method", "order_id", o.ID, "payment_method", o.PaymentMethod)
	}
	return nil
}

func orderLabel(o *order.Order) string {
	if o.Number != "" {
		return o.Number
	}
	return o.ID
}

func (e *PostingEngine) paidAt(o *order.Order) time.Time {
	if o.PaidAt != nil {
		return *o.PaidAt
	}
	if !o.CreatedAt.IsZero() {
		return o.CreatedAt
	}
	return e.now()
}

func (e *PostingEngine) shippedAt(o *order.Order) time.Time {
	if o.ShippedAt != nil {
		return *o.ShippedAt
	}
	return e.now()
}
