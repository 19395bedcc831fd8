package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/account"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/debt"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DebtLedger tracks the lifecycle of receivables and payables.
type DebtLedger struct {
	debts     debt.Repository
	journal   *JournalStore
	publisher EventPublisher
	tx        TxManager
	exact     PaymentMatcher
	heuristic PaymentMatcher
	now       clock
	logger    *slog.Logger
}

func NewDebtLedger(
	debts debt.Repository,
	journalStore *JournalStore,
	publisher EventPublisher,
	tx TxManager,
	opts Options,
	logger *slog.Logger,
) *DebtLedger {
	return &DebtLedger{
		debts:     debts,
		journal:   journalStore,
		publisher: publisher,
		tx:        tx,
		exact:     NewExactReferenceMatcher(debts),
		heuristic: NewHeuristicMatcher(debts, opts.MatchAmountTolerance, opts.MatchLookback),
		now:       utcNow,
		logger:    logger.With("component", "debt_ledger"),
	}
}

// PaymentOptions describe how a payment was received.
type PaymentOptions struct {
	Method      string
	PaidAt      time.Time
	PostReceipt bool
}

// PaymentResult is the outcome of ApplyPayment.
type PaymentResult struct {
	Debt    *debt.Debt      `json:"debt"`
	Applied decimal.Decimal `json:"applied"`
	Entry   *journal.Entry  `json:"entry,omitempty"`
}

// ApplyPayment settles amount against a debt, optionally posting the receipt
// or payment entry for the applied part, all in one transaction.
func (l *DebtLedger) ApplyPayment(ctx context.Context, debtID string, amount decimal.Decimal, opts PaymentOptions) (*PaymentResult, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("payment amount must be positive", "debt_id", debtID, "amount", amount.String())
	}
	paidAt := opts.PaidAt
	if paidAt.IsZero() {
		paidAt = l.now()
	}
	logger := l.logger.With("debt_id", debtID)

	result := &PaymentResult{}
	err := l.tx.WithTransaction(ctx, func(ctx context.Context) error {
		d, err := l.debts.GetByID(ctx, debtID)
		if err != nil {
			return err
		}
		applied, err := d.ApplyPayment(amount, paidAt, opts.Method, "")
		if err != nil {
			return err
		}
		result.Debt, result.Applied = d, applied

		if opts.PostReceipt && applied.IsPositive() {
			entry, err := l.postSettlement(ctx, d, applied, paidAt, opts.Method)
			if err != nil {
				return err
			}
			d.Payments[len(d.Payments)-1].JournalEntryID = entry.ID
			result.Entry = entry
		}

		if err := l.debts.Update(ctx, d); err != nil {
			return err
		}

		event := PaymentSettledEvent{
			DebtID:          d.ID,
			Kind:            d.Kind,
			PartnerID:       d.PartnerID,
			Amount:          applied,
			RemainingAmount: d.RemainingAmount,
			PaymentStatus:   d.PaymentStatus,
			PaidAt:          paidAt,
		}
		if result.Entry != nil {
			event.JournalEntryID = result.Entry.ID
		}
		return l.publisher.Publish(ctx, shared.TopicPaymentSettled, d.ID, event)
	})
	if err != nil {
		logger.Error("Failed to apply payment", "amount", amount.String(), "error", err)
		return nil, err
	}

	logger.Info("Payment applied",
		"applied", result.Applied.String(),
		"remaining", result.Debt.RemainingAmount.String(),
		"status", result.Debt.PaymentStatus,
	)
	return result, nil
}

func (l *DebtLedger) postSettlement(ctx context.Context, d *debt.Debt, amount decimal.Decimal, paidAt time.Time, method string) (*journal.Entry, error) {
	settlement := SettlementAccount(method)
	memo := "Settlement of " + d.JournalReference

	var lines []journal.Line
	if d.Kind == debt.KindReceivable {
		lines = []journal.Line{
			journal.DebitLine(settlement, amount, memo),
			journal.CreditLine(account.CodeReceivable, amount, memo),
		}
		lines[1].PartnerID, lines[1].PartnerKind = d.PartnerID, "customer"
	} else {
		lines = []journal.Line{
			journal.DebitLine(account.CodePayable, amount, memo),
			journal.CreditLine(settlement, amount, memo),
		}
		lines[0].PartnerID, lines[0].PartnerKind = d.PartnerID, "supplier"
	}

	entry := journal.NewEntry(journal.TypePayment, paidAt, memo, lines)
	entry.SourceType, entry.SourceID = journal.SourceDebt, d.ID
	return l.journal.Post(ctx, entry)
}

// MatchAndApply routes a payment notification to a debt and settles it. A
// reference selects exact matching, otherwise the heuristic runs.
func (l *DebtLedger) MatchAndApply(ctx context.Context, event shared.PaymentEvent) (*PaymentResult, error) {
	matcher := l.heuristic
	if event.Reference != "" {
		matcher = l.exact
	}
	d, err := matcher.Match(ctx, debt.KindReceivable, event)
	if err != nil {
		return nil, err
	}
	return l.ApplyPayment(ctx, d.ID, event.Amount, PaymentOptions{
		Method:      event.Method,
		PaidAt:      event.ReceivedAt,
		PostReceipt: true,
	})
}

// Get returns one debt.
func (l *DebtLedger) Get(ctx context.Context, id string) (*debt.Debt, error) {
	return l.debts.GetByID(ctx, id)
}

// List returns a page of debts and the total count.
func (l *DebtLedger) List(ctx context.Context, filter debt.Filter) ([]*debt.Debt, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return l.debts.List(ctx, filter)
}

// AgingReport buckets outstanding debts of kind by days overdue at asOf.
func (l *DebtLedger) AgingReport(ctx context.Context, kind debt.Kind, asOf time.Time) (*debt.AgingReport, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("invalid debt kind", "kind", kind)
	}
	if asOf.IsZero() {
		asOf = l.now()
	}
	debts, _, err := l.debts.List(ctx, debt.Filter{Kind: kind, Outstanding: true})
	if err != nil {
		return nil, err
	}
	report := debt.BuildAging(kind, debts, asOf)
	return &report, nil
}
