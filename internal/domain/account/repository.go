package account

import (
	"context"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
)

// Filter narrows account listings. Zero values match everything.
type Filter struct {
	Type   Type
	Status Status
}

// Repository manages chart-of-accounts persistence.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByCode(ctx context.Context, code string) (*Account, error)
	List(ctx context.Context, filter Filter) ([]*Account, error)
	// ListByCodes returns the accounts found for codes, keyed by code.
	ListByCodes(ctx context.Context, codes []string) (map[string]*Account, error)
}

// ErrAccountNotFound is returned by repositories for a missing code.
func ErrAccountNotFound(code string) error {
	return shared.NewNotFoundError("account", code)
}

// ErrDuplicateAccount is returned by repositories when the code already exists.
func ErrDuplicateAccount(code string) error {
	return shared.NewConflictError("account code already exists", "code", code)
}
