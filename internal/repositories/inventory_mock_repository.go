package repositories

import (
	"context"
	"sync"
	"time"

	"storefront/internal/models"
)

// MockInventoryRepository deducts stock from a MockProductRepository.
type MockInventoryRepository struct {
	products *MockProductRepository
	applied  map[string]struct{}
	mu       sync.Mutex
}

// NewMockInventoryRepository creates a new instance of MockInventoryRepository.
func NewMockInventoryRepository(products *MockProductRepository) *MockInventoryRepository {
	return &MockInventoryRepository{
		products: products,
		applied:  make(map[string]struct{}),
	}
}

// DeductForOrder updates every product under the product repository's lock.
func (r *MockInventoryRepository) DeductForOrder(_ context.Context, orderID string, items []models.OrderItem) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, done := r.applied[orderID]; done {
		return false, nil
	}

	r.products.mu.Lock()
	defer r.products.mu.Unlock()
	now := time.Now()
	for _, it := range items {
		p, ok := r.products.products[it.ProductID]
		if !ok || it.Quantity <= 0 {
			continue
		}
		p.Stock = max(p.Stock-it.Quantity, 0)
		p.UpdatedAt = now
		r.products.products[it.ProductID] = p
	}
	r.applied[orderID] = struct{}{}
	return true, nil
}
