package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TxManager runs fn inside one atomic unit of work. Calls nested inside an
// active transaction join it.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// Detach returns a context that carries the caller's deadline but no
	// transaction, for writes that must survive a rollback.
	Detach(ctx context.Context) (context.Context, context.CancelFunc)
}

// EventPublisher emits ledger events. Implementations write through the
// caller's transaction when one is active.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// Options are the tunables of the ledger engines.
type Options struct {
	ReceivableGraceDays  int
	DefaultTermDays      int
	CorporateTaxRate     decimal.Decimal
	MatchAmountTolerance decimal.Decimal
	MatchLookback        time.Duration
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		ReceivableGraceDays:  7,
		DefaultTermDays:      30,
		CorporateTaxRate:     decimal.NewFromFloat(0.2),
		MatchAmountTolerance: decimal.NewFromFloat(0.01),
		MatchLookback:        90 * 24 * time.Hour,
	}
}

type clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}
