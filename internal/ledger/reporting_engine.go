package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/account"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/journal"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/period"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ReportingEngine derives statements by re-aggregating posted lines on every
// call. It never writes.
type ReportingEngine struct {
	entries  journal.Repository
	accounts account.Repository
	periods  period.Repository
	taxRate  decimal.Decimal
	now      clock
	logger   *slog.Logger
}

func NewReportingEngine(
	entries journal.Repository,
	accounts account.Repository,
	periods period.Repository,
	opts Options,
	logger *slog.Logger,
) *ReportingEngine {
	return &ReportingEngine{
		entries:  entries,
		accounts: accounts,
		periods:  periods,
		taxRate:  opts.CorporateTaxRate,
		now:      utcNow,
		logger:   logger.With("component", "reporting_engine"),
	}
}

// TrialBalance sums every posted line in [from, to], closing entries included.
func (r *ReportingEngine) TrialBalance(ctx context.Context, from, to *time.Time) (*TrialBalance, error) {
	from, to, err := normalizeRange(from, to)
	if err != nil {
		return nil, err
	}
	totals, err := r.entries.AccountTotals(ctx, journal.LineFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("aggregate trial balance: %w", err)
	}
	accounts, err := r.accounts.ListByCodes(ctx, codesOf(totals))
	if err != nil {
		return nil, err
	}
	tb := BuildTrialBalance(totals, accounts)
	tb.From, tb.To = from, to
	if !tb.Balanced {
		r.logger.Warn("Trial balance is out of balance", "debit", tb.TotalDebit.String(), "credit", tb.TotalCredit.String())
	}
	return &tb, nil
}

// AccountLedger replays one account's lines with a running balance.
func (r *ReportingEngine) AccountLedger(ctx context.Context, code string, from, to *time.Time) (*AccountLedger, error) {
	from, to, err := normalizeRange(from, to)
	if err != nil {
		return nil, err
	}
	acc, err := r.accounts.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	lines, err := r.entries.AccountLines(ctx, code, from, to)
	if err != nil {
		return nil, fmt.Errorf("load account lines: %w", err)
	}
	out := BuildAccountLedger(acc, lines)
	return &out, nil
}

// BalanceSheet reports the cumulative position at asOf. Accounts, line totals
// and the lock date load concurrently.
func (r *ReportingEngine) BalanceSheet(ctx context.Context, asOf time.Time) (*BalanceSheet, error) {
	if asOf.IsZero() {
		asOf = r.now()
	}
	to := shared.EndOfDay(asOf)

	var (
		accounts map[string]*account.Account
		totals   []journal.AccountTotal
		lock     *time.Time
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := r.accounts.List(gctx, account.Filter{})
		if err != nil {
			return err
		}
		accounts = make(map[string]*account.Account, len(list))
		for _, a := range list {
			accounts[a.Code] = a
		}
		return nil
	})
	g.Go(func() error {
		var err error
		totals, err = r.entries.AccountTotals(gctx, journal.LineFilter{To: &to})
		return err
	})
	g.Go(func() error {
		var err error
		lock, err = r.periods.LatestLockDate(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load balance sheet inputs: %w", err)
	}

	bs := BuildBalanceSheet(shared.StartOfDay(asOf), totals, accounts, UnclosedProfit(totals, accounts))
	bs.LockedThrough = lock
	if !bs.Balanced {
		r.logger.Warn("Balance sheet does not balance", "as_of", asOf.Format(time.DateOnly), "difference", bs.Difference.String())
	}
	return &bs, nil
}

// ProfitAndLoss reports the result over [from, to], closing entries excluded.
func (r *ReportingEngine) ProfitAndLoss(ctx context.Context, from, to *time.Time) (*ProfitAndLoss, error) {
	from, to, err := normalizeRange(from, to)
	if err != nil {
		return nil, err
	}
	totals, err := r.entries.AccountTotals(ctx, journal.LineFilter{
		From:         from,
		To:           to,
		ExcludeTypes: []journal.EntryType{journal.TypeClosing},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate profit and loss: %w", err)
	}
	accounts, err := r.accounts.ListByCodes(ctx, codesOf(totals))
	if err != nil {
		return nil, err
	}
	pl := BuildProfitAndLoss(totals, accounts, r.taxRate)
	pl.From, pl.To = from, to
	return &pl, nil
}

// normalizeRange makes the range whole days, inclusive of the end day.
func normalizeRange(from, to *time.Time) (*time.Time, *time.Time, error) {
	var f, t *time.Time
	if from != nil {
		v := shared.StartOfDay(*from)
		f = &v
	}
	if to != nil {
		v := shared.EndOfDay(*to)
		t = &v
	}
	if f != nil && t != nil && t.Before(*f) {
		return nil, nil, shared.NewValidationError("range end is before start")
	}
	return f, t, nil
}

func codesOf(totals []journal.AccountTotal) []string {
	codes := make([]string, 0, len(totals))
	for _, t := range totals {
		codes = append(codes, t.AccountCode)
	}
	return codes
}
