package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/account"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/period"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Closing steps, used in the deterministic references.
const (
	closingStepRevenue = "REV"
	closingStepExpense = "EXP"
	closingStepNet     = "NET"
)

// ClosingEngine zeroes revenue and expense accounts into retained earnings.
type ClosingEngine struct {
	periods   period.Repository
	entries   journal.Repository
	accounts  account.Repository
	journal   *JournalStore
	publisher EventPublisher
	tx        TxManager
	now       clock
	logger    *slog.Logger
}

func NewClosingEngine(
	periods period.Repository,
	entries journal.Repository,
	accounts account.Repository,
	journalStore *JournalStore,
	publisher EventPublisher,
	tx TxManager,
	logger *slog.Logger,
) *ClosingEngine {
	return &ClosingEngine{
		periods:   periods,
		entries:   entries,
		accounts:  accounts,
		journal:   journalStore,
		publisher: publisher,
		tx:        tx,
		now:       utcNow,
		logger:    logger.With("component", "closing_engine"),
	}
}

// CreatePeriod registers an open period that overlaps no existing one.
func (c *ClosingEngine) CreatePeriod(ctx context.Context, name string, start, end time.Time) (*period.Period, error) {
	p, err := period.NewPeriod(name, start, end)
	if err != nil {
		return nil, err
	}
	existing, err := c.periods.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if p.Overlaps(other) {
			return nil, shared.NewConflictError("period overlaps an existing period", "name", name, "existing", other.Name)
		}
	}
	if err := c.periods.Create(ctx, p); err != nil {
		return nil, err
	}
	c.logger.Info("Accounting period created", "period_id", p.ID, "name", p.Name)
	return p, nil
}

// ListPeriods returns all periods ordered by start date.
func (c *ClosingEngine) ListPeriods(ctx context.Context) ([]*period.Period, error) {
	return c.periods.List(ctx)
}

// GetPeriod returns one period.
func (c *ClosingEngine) GetPeriod(ctx context.Context, id string) (*period.Period, error) {
	return c.periods.GetByID(ctx, id)
}

// ClosingResult is the outcome of ClosePeriod.
type ClosingResult struct {
	Period    *period.Period   `json:"period"`
	Entries   []*journal.Entry `json:"entries"`
	Revenue   decimal.Decimal  `json:"revenue"`
	Expense   decimal.Decimal  `json:"expense"`
	NetProfit decimal.Decimal  `json:"net_profit"`
}

// ClosePeriod posts the closing entries for the period and locks it. A nil
// lockDate locks through the period end.
func (c *ClosingEngine) ClosePeriod(ctx context.Context, periodID string, lockDate *time.Time, closedBy string) (*ClosingResult, error) {
	logger := c.logger.With("period_id", periodID)
	result := &ClosingResult{Entries: []*journal.Entry{}}

	err := c.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := c.periods.GetByID(ctx, periodID)
		if err != nil {
			return err
		}
		if p.IsClosed() {
			return period.ErrPeriodClosed(p.ID)
		}

		lock := p.EndDate
		if lockDate != nil {
			lock = shared.StartOfDay(*lockDate)
			if lock.Before(p.StartDate) {
				return shared.NewValidationError("lock date is before the period start", "period_id", p.ID)
			}
		}

		// closing entries are dated at the period end and must clear every lock
		latest, err := c.periods.LatestLockDate(ctx)
		if err != nil {
			return err
		}
		if latest != nil && !p.EndDate.After(shared.StartOfDay(*latest)) {
			return shared.NewStateError("periods close in date order and a later lock date is already set",
				"period_id", p.ID, "period_end", p.EndDate.Format(time.DateOnly), "lock_date", latest.Format(time.DateOnly))
		}

		from, to := p.StartDate, shared.EndOfDay(p.EndDate)
		totals, err := c.entries.AccountTotals(ctx, journal.LineFilter{
			From:         &from,
			To:           &to,
			ExcludeTypes: []journal.EntryType{journal.TypeClosing},
		})
		if err != nil {
			return fmt.Errorf("aggregate period lines: %w", err)
		}
		codes := make([]string, 0, len(totals))
		for _, t := range totals {
			codes = append(codes, t.AccountCode)
		}
		accounts, err := c.accounts.ListByCodes(ctx, codes)
		if err != nil {
			return err
		}

		revLines, revenue := closingLines(totals, accounts, account.TypeRevenue)
		expLines, expense := closingLines(totals, accounts, account.TypeExpense)
		result.Revenue, result.Expense = revenue, expense
		result.NetProfit = revenue.Sub(expense)

		post := func(step, memo string, lines []journal.Line) error {
			entry := journal.NewEntry(journal.TypeClosing, p.EndDate, memo, lines)
			entry.Reference = journal.ClosingReference(p.ID, step)
			entry.SourceType, entry.SourceID = journal.SourcePeriod, p.ID
			posted, err := c.journal.Post(ctx, entry)
			if err != nil {
				return err
			}
			result.Entries = append(result.Entries, posted)
			return nil
		}

		if len(revLines) > 0 {
			if !revenue.IsZero() {
				revLines = append(revLines, summaryLine(revenue, false, "Close revenue"))
			}
			if err := post(closingStepRevenue, "Close revenue "+p.Name, revLines); err != nil {
				return err
			}
		}
		if len(expLines) > 0 {
			if !expense.IsZero() {
				expLines = append(expLines, summaryLine(expense, true, "Close expense"))
			}
			if err := post(closingStepExpense, "Close expense "+p.Name, expLines); err != nil {
				return err
			}
		}
		if !result.NetProfit.IsZero() {
			memo := "Transfer result " + p.Name
			profit := result.NetProfit
			var lines []journal.Line
			if profit.IsPositive() {
				lines = []journal.Line{
					journal.DebitLine(account.CodeIncomeSummary, profit, memo),
					journal.CreditLine(account.CodeRetainedEarnings, profit, memo),
				}
			} else {
				lines = []journal.Line{
					journal.DebitLine(account.CodeRetainedEarnings, profit.Neg(), memo),
					journal.CreditLine(account.CodeIncomeSummary, profit.Neg(), memo),
				}
			}
			if err := post(closingStepNet, memo, lines); err != nil {
				return err
			}
		}

		closedAt := c.now()
		if err := c.periods.MarkClosed(ctx, p.ID, lock, closedBy, closedAt); err != nil {
			return err
		}
		p.Status, p.LockDate, p.ClosedBy, p.ClosedAt = period.StatusClosed, &lock, closedBy, &closedAt
		result.Period = p

		ids := make([]string, 0, len(result.Entries))
		for _, e := range result.Entries {
			ids = append(ids, e.ID)
		}
		return c.publisher.Publish(ctx, shared.TopicPeriodClosed, p.ID, PeriodClosedEvent{
			PeriodID:  p.ID,
			Name:      p.Name,
			LockDate:  lock,
			NetProfit: result.NetProfit,
			EntryIDs:  ids,
			ClosedBy:  closedBy,
			ClosedAt:  closedAt,
		})
	})
	if err != nil {
		logger.Error("Failed to close period", "error", err)
		return nil, err
	}

	logger.Info("Period closed",
		"revenue", result.Revenue.String(),
		"expense", result.Expense.String(),
		"net_profit", result.NetProfit.String(),
		"entries", len(result.Entries),
	)
	return result, nil
}

// closingLines reverses the net balance of every account of typ and returns
// the lines with the total moved to the income summary.
func closingLines(totals []journal.AccountTotal, accounts map[string]*account.Account, typ account.Type) ([]journal.Line, decimal.Decimal) {
	sorted := make([]journal.AccountTotal, len(totals))
	copy(sorted, totals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AccountCode < sorted[j].AccountCode })

	var lines []journal.Line
	sum := decimal.Zero
	for _, t := range sorted {
		acc, ok := accounts[t.AccountCode]
		if !ok || acc.Type != typ {
			continue
		}
		net := acc.Balance(t.Debit, t.Credit)
		if net.IsZero() {
			continue
		}
		sum = sum.Add(net)
		memo := "Close " + acc.Code
		// A revenue balance sits on the credit side, so it is reversed with a
		// debit; expenses the other way round. Negative nets flip the side.
		debitSide := typ == account.TypeRevenue
		if net.IsNegative() {
			debitSide = !debitSide
		}
		if debitSide {
			lines = append(lines, journal.DebitLine(acc.Code, net.Abs(), memo))
		} else {
			lines = append(lines, journal.CreditLine(acc.Code, net.Abs(), memo))
		}
	}
	return lines, sum
}

// summaryLine books total on the income summary. Revenue totals are credited
// to it, expense totals debited.
func summaryLine(total decimal.Decimal, debit bool, memo string) journal.Line {
	if total.IsNegative() {
		debit = !debit
	}
	if debit {
		return journal.DebitLine(account.CodeIncomeSummary, total.Abs(), memo)
	}
	return journal.CreditLine(account.CodeIncomeSummary, total.Abs(), memo)
}
