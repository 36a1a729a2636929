package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/models"
)

// GORMInventoryRepository is a GORM implementation of InventoryRepository.
type GORMInventoryRepository struct {
	db *gorm.DB
}

// NewGORMInventoryRepository creates a new instance of GORMInventoryRepository.
func NewGORMInventoryRepository(db *gorm.DB) *GORMInventoryRepository {
	return &GORMInventoryRepository{
		db: db,
	}
}

// DeductForOrder records the order and updates every product in one
// transaction.
func (r *GORMInventoryRepository) DeductForOrder(ctx context.Context, orderID string, items []models.OrderItem) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.StockDeduction{OrderID: orderID})
		if res.Error != nil {
			return fmt.Errorf("failed to record stock deduction for order %s: %w", orderID, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		for _, it := range items {
			if it.Quantity <= 0 {
				continue
			}
			err := tx.Model(&models.Product{}).
				Where("id = ?", it.ProductID).
				Update("stock", gorm.Expr("CASE WHEN stock > ? THEN stock - ? ELSE 0 END", it.Quantity, it.Quantity)).
				Error
			if err != nil {
				return fmt.Errorf("failed to deduct stock of product %s: %w", it.ProductID, err)
			}
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}
