package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/asset"
	"github.com/shopspring/decimal"
)

// RegisterAssetInput describes a newly acquired fixed asset
type RegisterAssetInput struct {
	Code             string
	Name             string
	OriginalCost     decimal.Decimal
	UsefulLifeMonths int
	AcquiredAt       time.Time
}

// AssetServiceImpl implements the AssetService interface
type AssetServiceImpl struct {
	assetRepo asset.Repository
	logger    *slog.Logger
}

// NewAssetService creates a new asset service
func NewAssetService(logger *slog.Logger, assetRepo asset.Repository) AssetService {
	return &AssetServiceImpl{
		assetRepo: assetRepo,
		logger:    logger,
	}
}

// Register validates and stores a new active asset. Duplicate codes surface as
// a ConflictError from the repository.
func (s *AssetServiceImpl) Register(ctx context.Context, in RegisterAssetInput) (*asset.FixedAsset, error) {
	acquiredAt := in.AcquiredAt
	if acquiredAt.IsZero() {
		acquiredAt = time.Now().UTC()
	}
	fa, err := asset.NewFixedAsset(in.Code, in.Name, in.OriginalCost, in.UsefulLifeMonths, acquiredAt)
	if err != nil {
		return nil, err
	}
	if err := s.assetRepo.Create(ctx, fa); err != nil {
		return nil, err
	}
	s.logger.Info("Fixed asset registered", "code", fa.Code, "cost", fa.OriginalCost.String(), "useful_life_months", fa.UsefulLifeMonths)
	return fa, nil
}

// List returns every asset sorted by code
func (s *AssetServiceImpl) List(ctx context.Context) ([]*asset.FixedAsset, error) {
	return s.assetRepo.List(ctx)
}
