package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/product"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductRepository reads the catalog collection shared with the shop
// backend. Only cost and stock are touched.
type ProductRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewProductRepository creates a new MongoDB product cost repository
func NewProductRepository(logger *slog.Logger, db *mongo.Database) product.Repository {
	return &ProductRepository{
		coll:   collection(db, ProductsCollection),
		logger: logger,
	}
}

func (r *ProductRepository) GetCost(ctx context.Context, productID string) (*product.CostView, error) {
	opts := options.FindOne().SetProjection(bson.M{"name": 1, "moving_average_cost": 1, "stock": 1})

	var view product.CostView
	if err := r.coll.FindOne(ctx, productFilter(productID), opts).Decode(&view); err != nil {
		if isNoDocuments(err) {
			return nil, product.ErrProductNotFound(productID)
		}
		r.logger.Error("Failed to get product cost", "product_id", productID, "error", err)
		return nil, fmt.Errorf("failed to get product cost: %w", err)
	}
	return &view, nil
}

// DecrementStock subtracts quantity server-side and floors the result at 0.
func (r *ProductRepository) DecrementStock(ctx context.Context, productID string, quantity int64) error {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"stock": bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$stock", quantity}}}},
		}}},
	}

	res, err := r.coll.UpdateOne(ctx, productFilter(productID), update)
	if err != nil {
		r.logger.Error("Failed to decrement stock",
			"product_id", productID,
			"quantity", quantity,
			"error", err)
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return product.ErrProductNotFound(productID)
	}
	return nil
}

// productFilter matches catalog ids stored either as ObjectIDs or as strings.
func productFilter(productID string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(productID); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, productID}}}
	}
	return bson.M{"_id": productID}
}
