package ledger

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/debt"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMatcher picks the debt a payment notification settles.
type PaymentMatcher interface {
	Match(ctx context.Context, kind debt.Kind, event shared.PaymentEvent) (*debt.Debt, error)
}

// ExactReferenceMatcher requires the reference to be a debt id or the
// reference of the entry that created the debt.
type ExactReferenceMatcher struct {
	debts debt.Repository
}

func NewExactReferenceMatcher(debts debt.Repository) *ExactReferenceMatcher {
	return &ExactReferenceMatcher{debts: debts}
}

func (m *ExactReferenceMatcher) Match(ctx context.Context, kind debt.Kind, event shared.PaymentEvent) (*debt.Debt, error) {
	if event.Reference == "" {
		return nil, shared.NewValidationError("payment reference is required")
	}
	d, err := m.debts.GetByID(ctx, event.Reference)
	if errors.Is(err, shared.ErrNotFound) {
		d, err = m.debts.GetByJournalReference(ctx, event.Reference)
	}
	if err != nil {
		return nil, err
	}
	if d.Kind != kind {
		return nil, shared.NewNotFoundError("debt", event.Reference)
	}
	if !d.IsOutstanding() {
		return nil, shared.NewStateError("debt is already settled", "debt_id", d.ID)
	}
	return d, nil
}

// HeuristicMatcher matches by amount within a relative tolerance among debts
// invoiced inside a lookback window. Ties go to the nearest amount, then to
// the oldest debt.
type HeuristicMatcher struct {
	debts     debt.Repository
	tolerance decimal.Decimal
	lookback  time.Duration
}

func NewHeuristicMatcher(debts debt.Repository, tolerance decimal.Decimal, lookback time.Duration) *HeuristicMatcher {
	return &HeuristicMatcher{debts: debts, tolerance: tolerance, lookback: lookback}
}

func (m *HeuristicMatcher) Match(ctx context.Context, kind debt.Kind, event shared.PaymentEvent) (*debt.Debt, error) {
	if !event.Amount.IsPositive() {
		return nil, shared.NewValidationError("payment amount must be positive")
	}
	received := event.ReceivedAt
	if received.IsZero() {
		received = time.Now().UTC()
	}
	earliest := received.Add(-m.lookback)

	open, _, err := m.debts.List(ctx, debt.Filter{Kind: kind, Outstanding: true})
	if err != nil {
		return nil, err
	}

	type candidate struct {
		debt *debt.Debt
		diff decimal.Decimal
	}
	var candidates []candidate
	for _, d := range open {
		invoiced := d.CreatedAt
		if d.InvoiceDate != nil {
			invoiced = *d.InvoiceDate
		}
		if invoiced.Before(earliest) || invoiced.After(received) {
			continue
		}
		diff := d.RemainingAmount.Sub(event.Amount).Abs()
		if diff.GreaterThan(d.RemainingAmount.Mul(m.tolerance)) {
			continue
		}
		candidates = append(candidates, candidate{debt: d, diff: diff})
	}
	if len(candidates) == 0 {
		return nil, shared.NewNotFoundError("matching debt", event.Amount.String())
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if c := candidates[i].diff.Cmp(candidates[j].diff); c != 0 {
			return c < 0
		}
		return candidates[i].debt.CreatedAt.Before(candidates[j].debt.CreatedAt)
	})
	return candidates[0].debt, nil
}
