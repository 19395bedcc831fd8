package product

import (
	"context"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CostView is the slice of a catalog product the ledger reads for COGS.
type CostView struct {
	ID                string          `json:"id" bson:"_id"`
	Name              string          `json:"name" bson:"name"`
	MovingAverageCost decimal.Decimal `json:"moving_average_cost" bson:"moving_average_cost"`
	Stock             int64           `json:"stock" bson:"stock"`
}

// Repository reads product costs and decrements stock.
type Repository interface {
	GetCost(ctx context.Context, productID string) (*CostView, error)
	// DecrementStock lowers stock by quantity, never below zero.
	DecrementStock(ctx context.Context, productID string, quantity int64) error
}

// ErrProductNotFound is returned for a missing product.
func ErrProductNotFound(id string) error {
	return shared.NewNotFoundError("product", id)
}
