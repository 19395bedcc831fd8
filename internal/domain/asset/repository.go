package asset

import (
	"context"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
)

// Repository manages fixed asset persistence.
type Repository interface {
	Create(ctx context.Context, asset *FixedAsset) error
	GetByID(ctx context.Context, id string) (*FixedAsset, error)
	List(ctx context.Context) ([]*FixedAsset, error)
	ListActive(ctx context.Context) ([]*FixedAsset, error)
	Update(ctx context.Context, asset *FixedAsset) error
}

// ErrAssetNotFound is returned for a missing asset.
func ErrAssetNotFound(id string) error {
	return shared.NewNotFoundError("asset", id)
}

// ErrDuplicateAsset is returned when the asset code already exists.
func ErrDuplicateAsset(code string) error {
	return shared.NewConflictError("asset code already exists", "code", code)
}
