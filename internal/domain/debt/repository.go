package debt

import (
	"context"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
)

// Filter narrows debt listings. Zero values match everything.
type Filter struct {
	Kind        Kind
	Status      PaymentStatus
	PartnerID   string
	Outstanding bool
	Limit       int
	Offset      int
}

// Repository manages receivable and payable persistence.
type Repository interface {
	Create(ctx context.Context, debt *Debt) error
	GetByID(ctx context.Context, id string) (*Debt, error)
	GetByJournalReference(ctx context.Context, reference string) (*Debt, error)
	List(ctx context.Context, filter Filter) ([]*Debt, int64, error)
	Update(ctx context.Context, debt *Debt) error
	CountByJournalEntry(ctx context.Context, entryID string) (int64, error)
}

// ErrDebtNotFound is returned for a missing debt.
func ErrDebtNotFound(id string) error {
	return shared.NewNotFoundError("debt", id)
}
