package repositories_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

type postgresSuite struct {
	suite.Suite

	container *tcpostgres.PostgresContainer
	db        *gorm.DB
	products  *repositories.GORMProductRepository
	orders    *repositories.GORMOrderRepository
	carts     *repositories.GORMCartStore
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres container tests skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	suite.Run(t, new(postgresSuite))
}

func (s *postgresSuite) SetupSuite() {
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:17.6-alpine3.22",
		tcpostgres.WithDatabase("storefront"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = ctr

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	s.Require().NoError(err)
	s.Require().NoError(s.db.AutoMigrate(&models.Product{}, &models.Order{}, &models.CartRecord{}, &models.StockDeduction{}))

	s.products = repositories.NewGORMProductRepository(s.db)
	s.orders = repositories.NewGORMOrderRepository(s.db)
	s.carts = repositories.NewGORMCartStore(s.db)
}

func (s *postgresSuite) TearDownSuite() {
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if s.container != nil {
		s.NoError(testcontainers.TerminateContainer(s.container))
	}
}

func (s *postgresSuite) TearDownTest() {
	s.db.Exec("DELETE FROM products")
	s.db.Exec("DELETE FROM orders")
	s.db.Exec("DELETE FROM cart_records")
	s.db.Exec("DELETE FROM stock_deductions")
}

func (s *postgresSuite) TestProductCRUD() {
	t := s.T()
	ctx := context.Background()

	p := randomProduct()
	require.NoError(t, s.products.Create(ctx, &p))

	p.Title = "Updated"
	require.NoError(t, s.products.Update(ctx, &p))

	got, err := s.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	s.Equal("Updated", got.Title)
	s.Equal(p.Categories, got.Categories)

	s.NoError(s.products.Delete(ctx, p.ID))
	s.ErrorIs(s.products.Delete(ctx, p.ID), repositories.ErrNotFound)
}

func (s *postgresSuite) TestOrderAmountsKeepPrecision() {
	t := s.T()
	ctx := context.Background()

	o := randomOrder()
	o.Subtotal = 2501
	o.Tax = decimal.RequireFromString("475.19")
	o.Total = decimal.RequireFromString("2976.19")
	require.NoError(t, s.orders.Create(ctx, &o))

	got, err := s.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	s.True(o.Tax.Equal(got.Tax), "tax %s", got.Tax)
	s.True(o.Total.Equal(got.Total), "total %s", got.Total)
}

func (s *postgresSuite) TestCartStoreUpsert() {
	t := s.T()
	ctx := context.Background()

	c, err := cart.Load(ctx, s.carts, "cart:pg")
	require.NoError(t, err)
	require.NoError(t, c.AddItem(ctx, cart.Product{ID: "A", Price: 1000, Stock: 5}, 2))
	require.NoError(t, c.SetQuantity(ctx, "A", 3))

	reloaded, err := cart.Load(ctx, s.carts, "cart:pg")
	require.NoError(t, err)
	s.Equal(3, reloaded.Count())

	require.NoError(t, reloaded.Clear(ctx))
	_, found, err := s.carts.Get(ctx, "cart:pg")
	require.NoError(t, err)
	s.False(found)
}

func (s *postgresSuite) TestInventoryDeductsOncePerOrder() {
	t := s.T()
	ctx := context.Background()
	inventory := repositories.NewGORMInventoryRepository(s.db)

	p := randomProduct()
	p.Stock = 4
	require.NoError(t, s.products.Create(ctx, &p))
	items := []models.OrderItem{{ProductID: p.ID, Quantity: 3}}

	applied, err := inventory.DeductForOrder(ctx, "pg-order", items)
	require.NoError(t, err)
	s.True(applied)
	applied, err = inventory.DeductForOrder(ctx, "pg-order", items)
	require.NoError(t, err)
	s.False(applied)

	got, err := s.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	s.Equal(1, got.Stock)
}
