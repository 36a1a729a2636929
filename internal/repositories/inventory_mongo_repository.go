package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

// StockDeductionsCollection holds one document per deducted order.
const StockDeductionsCollection = "stock_deductions"

// MongoInventoryRepository is a MongoDB implementation of InventoryRepository.
// It uses multi-document transactions, so the server must be a replica set.
type MongoInventoryRepository struct {
	client     *mongo.Client
	products   *mongo.Collection
	deductions *mongo.Collection
}

// NewMongoInventoryRepository creates a new instance of MongoInventoryRepository.
func NewMongoInventoryRepository(db *mongo.Database) *MongoInventoryRepository {
	return &MongoInventoryRepository{
		client:     db.Client(),
		products:   db.Collection(ProductsCollection),
		deductions: db.Collection(StockDeductionsCollection),
	}
}

// DeductForOrder records the order and updates every product in one
// transaction.
func (r *MongoInventoryRepository) DeductForOrder(ctx context.Context, orderID string, items []models.OrderItem) (bool, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return false, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		err := r.deductions.FindOne(sc, bson.M{"_id": orderID}).Err()
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		if _, err := r.deductions.InsertOne(sc, models.StockDeduction{OrderID: orderID, CreatedAt: time.Now().UTC()}); err != nil {
			return nil, err
		}

		for _, it := range items {
			if it.Quantity <= 0 {
				continue
			}
			update := mongo.Pipeline{{{Key: "$set", Value: bson.D{
				{Key: "stock", Value: bson.D{{Key: "$max", Value: bson.A{0, bson.D{{Key: "$subtract", Value: bson.A{"$stock", it.Quantity}}}}}}},
				{Key: "updated_at", Value: "$$NOW"},
			}}}}
			if _, err := r.products.UpdateOne(sc, bson.M{"_id": it.ProductID}, update); err != nil {
				return nil, fmt.Errorf("product %s: %w", it.ProductID, err)
			}
		}
		return true, nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to deduct stock for order %s: %w", orderID, err)
	}
	applied, _ := result.(bool)
	return applied, nil
}
