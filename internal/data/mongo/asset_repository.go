package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/asset"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AssetRepository implements asset.Repository for MongoDB
type AssetRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewAssetRepository creates a new MongoDB fixed-asset repository
func NewAssetRepository(logger *slog.Logger, db *mongo.Database) asset.Repository {
	return &AssetRepository{
		coll:   collection(db, AssetsCollection),
		logger: logger,
	}
}

func (r *AssetRepository) Create(ctx context.Context, a *asset.FixedAsset) error {
	if _, err := r.coll.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return asset.ErrDuplicateAsset(a.Code)
		}
		r.logger.Error("Failed to create asset", "code", a.Code, "error", err)
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

func (r *AssetRepository) GetByID(ctx context.Context, id string) (*asset.FixedAsset, error) {
	var a asset.FixedAsset
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if isNoDocuments(err) {
			return nil, asset.ErrAssetNotFound(id)
		}
		r.logger.Error("Failed to get asset", "asset_id", id, "error", err)
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &a, nil
}

func (r *AssetRepository) List(ctx context.Context) ([]*asset.FixedAsset, error) {
	return r.find(ctx, bson.M{})
}

func (r *AssetRepository) ListActive(ctx context.Context) ([]*asset.FixedAsset, error) {
	return r.find(ctx, bson.M{"status": asset.StatusActive})
}

func (r *AssetRepository) find(ctx context.Context, query bson.M) ([]*asset.FixedAsset, error) {
	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		r.logger.Error("Failed to list assets", "error", err)
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer cursor.Close(ctx)

	assets := make([]*asset.FixedAsset, 0)
	if err := cursor.All(ctx, &assets); err != nil {
		r.logger.Error("Failed to decode assets", "error", err)
		return nil, fmt.Errorf("failed to decode assets: %w", err)
	}
	return assets, nil
}

func (r *AssetRepository) Update(ctx context.Context, a *asset.FixedAsset) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		r.logger.Error("Failed to update asset", "asset_id", a.ID, "error", err)
		return fmt.Errorf("failed to update asset: %w", err)
	}
	if res.MatchedCount == 0 {
		return asset.ErrAssetNotFound(a.ID)
	}
	return nil
}
