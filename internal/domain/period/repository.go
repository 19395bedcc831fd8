package period

import (
	"context"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
)

// Repository manages accounting period persistence.
type Repository interface {
	Create(ctx context.Context, p *Period) error
	GetByID(ctx context.Context, id string) (*Period, error)
	List(ctx context.Context) ([]*Period, error)
	// MarkClosed sets the closing fields only while the period is still open.
	// It returns a STATE error when another caller closed it first.
	MarkClosed(ctx context.Context, id string, lockDate time.Time, closedBy string, closedAt time.Time) error
	// LatestLockDate returns the greatest lock date among closed periods, or nil.
	LatestLockDate(ctx context.Context) (*time.Time, error)
}

// ErrPeriodNotFound is returned for a missing period.
func ErrPeriodNotFound(id string) error {
	return shared.NewNotFoundError("period", id)
}

// ErrPeriodClosed is returned when closing an already closed period.
func ErrPeriodClosed(id string) error {
	return shared.NewStateError("period is already closed", "period_id", id)
}
