package repositories

import (
	"context"

	"storefront/internal/models"
)

// InventoryRepository takes ordered quantities out of the catalog.
type InventoryRepository interface {
	// DeductForOrder subtracts the item quantities from stock, never going
	// below zero, and skips products that no longer exist. It runs at most
	// once per order: applied is false when orderID was already deducted.
	DeductForOrder(ctx context.Context, orderID string, items []models.OrderItem) (applied bool, err error)
}
