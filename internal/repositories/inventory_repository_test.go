package repositories_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

type inventoryCase struct {
	products  repositories.ProductRepository
	inventory repositories.InventoryRepository
}

func inventoryRepos(t *testing.T) map[string]inventoryCase {
	t.Helper()
	mockProducts := repositories.NewMockProductRepository()
	db := newSQLiteDB(t)
	return map[string]inventoryCase{
		"mock": {mockProducts, repositories.NewMockInventoryRepository(mockProducts)},
		"gorm": {repositories.NewGORMProductRepository(db), repositories.NewGORMInventoryRepository(db)},
	}
}

func TestInventoryDeductForOrder(t *testing.T) {
	for name, tc := range inventoryRepos(t) {
		t.Run(name, func(t *testing.T) {
			a := randomProduct()
			a.Stock = 5
			b := randomProduct()
			b.Stock = 1
			require.NoError(t, tc.products.Create(bg, &a))
			require.NoError(t, tc.products.Create(bg, &b))

			items := []models.OrderItem{
				{ProductID: a.ID, Quantity: 2},
				{ProductID: b.ID, Quantity: 3},
				{ProductID: "deleted", Quantity: 1},
			}
			applied, err := tc.inventory.DeductForOrder(bg, "o1", items)
			require.NoError(t, err)
			assert.True(t, applied)

			applied, err = tc.inventory.DeductForOrder(bg, "o1", items)
			require.NoError(t, err)
			assert.False(t, applied, "same order is deducted once")

			got, err := tc.products.GetByID(bg, a.ID)
			require.NoError(t, err)
			assert.Equal(t, 3, got.Stock)
			got, err = tc.products.GetByID(bg, b.ID)
			require.NoError(t, err)
			assert.Zero(t, got.Stock)

			applied, err = tc.inventory.DeductForOrder(bg, "o2", items[:1])
			require.NoError(t, err)
			assert.True(t, applied)
			got, err = tc.products.GetByID(bg, a.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, got.Stock)
		})
	}
}

func TestInventoryConcurrentRedelivery(t *testing.T) {
	products := repositories.NewMockProductRepository()
	inventory := repositories.NewMockInventoryRepository(products)
	p := randomProduct()
	p.Stock = 10
	require.NoError(t, products.Create(bg, &p))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := inventory.DeductForOrder(bg, "o1", []models.OrderItem{{ProductID: p.ID, Quantity: 2}})
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, applied)
	got, err := products.GetByID(bg, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Stock)
}

func TestGORMInventoryRollsBackOnFailure(t *testing.T) {
	db := newSQLiteDB(t)
	products := repositories.NewGORMProductRepository(db)
	inventory := repositories.NewGORMInventoryRepository(db)

	a := randomProduct()
	a.Stock = 5
	require.NoError(t, products.Create(bg, &a))
	b := randomProduct()
	b.Stock = 5
	require.NoError(t, products.Create(bg, &b))

	failing := errors.New("disk full")
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("fail_second_product", func(tx *gorm.DB) {
		vars := tx.Statement.Vars
		if len(vars) == 0 {
			return
		}
		if id, ok := vars[len(vars)-1].(string); ok && id == b.ID {
			_ = tx.AddError(failing)
		}
	}))
	t.Cleanup(func() { _ = db.Callback().Update().Remove("fail_second_product") })

	items := []models.OrderItem{{ProductID: a.ID, Quantity: 2}, {ProductID: b.ID, Quantity: 2}}
	applied, err := inventory.DeductForOrder(context.Background(), "o1", items)
	require.ErrorIs(t, err, failing)
	assert.False(t, applied)

	got, err := products.GetByID(bg, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock, "first update is rolled back")
}
