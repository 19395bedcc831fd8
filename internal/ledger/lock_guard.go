package ledger

import (
	"context"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/period"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
)

// LockGuard rejects mutations dated inside a closed period.
type LockGuard struct {
	periods period.Repository
}

func NewLockGuard(periods period.Repository) *LockGuard {
	return &LockGuard{periods: periods}
}

// EnsureUnlocked fails with a STATE error when date is on or before the
// latest lock date of any closed period.
func (g *LockGuard) EnsureUnlocked(ctx context.Context, date time.Time) error {
	lock, err := g.periods.LatestLockDate(ctx)
	if err != nil {
		return err
	}
	if lock == nil {
		return nil
	}
	if !shared.StartOfDay(date).After(shared.StartOfDay(*lock)) {
		return shared.NewStateError("transaction date falls in a locked period",
			"date", date.Format(time.DateOnly), "lock_date", lock.Format(time.DateOnly))
	}
	return nil
}
