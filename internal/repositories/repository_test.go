package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storefront/internal/models"
)

// newSQLiteDB returns a private in-memory database with every table migrated.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Order{}, &models.CartRecord{}, &models.StockDeduction{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func randomProduct() models.Product {
	return models.Product{
		Title:         gofakeit.ProductName(),
		Description:   gofakeit.ProductDescription(),
		Price:         int64(gofakeit.Number(100, 500_000)),
		ImageURL:      gofakeit.URL(),
		Stock:         gofakeit.Number(0, 40),
		Categories:    []string{"tecnologia"},
		Subcategories: []string{"tecnologia-computadoras"},
		IsVisible:     true,
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
}

func randomOrder() models.Order {
	return models.Order{
		SessionID:    uuid.NewString(),
		CustomerName: gofakeit.Name(),
		Email:        gofakeit.Email(),
		Shipping: models.ShippingAddress{
			Address:    gofakeit.Street(),
			City:       gofakeit.City(),
			PostalCode: gofakeit.Zip(),
		},
		Items: []models.OrderItem{
			{ProductID: uuid.NewString(), Title: gofakeit.ProductName(), Quantity: 2, Price: 1000},
		},
		Subtotal:  2000,
		CardLast4: "4242",
		Status:    models.OrderStatusPaid,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

var bg = context.Background()
