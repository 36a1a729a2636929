package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Port: ":0", Env: "test", Locale: "en-US", SeedDemoProducts: true},
		Log: config.LogConfig{Level: "error", Format: "json"},
		DB: config.DBConfig{
			Driver: config.DriverSQLite,
			DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		},
		Cart: config.CartConfig{
			Store:        config.CartStoreMemory,
			KeyPrefix:    "cart",
			EnforceStock: true,
			TaxRate:      decimal.RequireFromString("0.19"),
		},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := NewApp(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })
	return app
}

func inStockProduct(t *testing.T, app *App) models.Product {
	t.Helper()
	products, err := app.Products.GetAllProducts(context.Background())
	require.NoError(t, err)
	for _, p := range products {
		if p.IsVisible && p.Stock > 0 {
			return p
		}
	}
	t.Fatal("no product in stock")
	return models.Product{}
}

func TestNewApp_HealthAndSeed(t *testing.T) {
	app := newTestApp(t, testConfig())

	resp, err := app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "disabled", health["events"])

	products, err := app.Products.GetAllProducts(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, products, "demo catalog seeded")
}

func TestNewApp_MetricsEndpoint(t *testing.T) {
	app := newTestApp(t, testConfig())

	resp, err := app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNewApp_UnknownRoute(t *testing.T) {
	app := newTestApp(t, testConfig())

	resp, err := app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Not Found", body["error"])
}

func TestNewApp_CartStores(t *testing.T) {
	mr := miniredis.RunT(t)

	cases := map[string]func(*config.Config){
		"memory": func(*config.Config) {},
		"db":     func(c *config.Config) { c.Cart.Store = config.CartStoreDB },
		"redis": func(c *config.Config) {
			c.Cart.Store = config.CartStoreRedis
			c.Redis.URL = "redis://" + mr.Addr()
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			mutate(cfg)
			app := newTestApp(t, cfg)
			ctx := context.Background()

			product := inStockProduct(t, app)
			session := uuid.NewString()
			_, err := app.Carts.AddProduct(ctx, session, product.ID, 1)
			require.NoError(t, err)

			reopened, err := app.Carts.Open(ctx, session)
			require.NoError(t, err)
			assert.Equal(t, 1, reopened.Count())
		})
	}
	assert.Len(t, mr.Keys(), 1)
}

func TestNewApp_FailsOnUnreachableRedis(t *testing.T) {
	cfg := testConfig()
	cfg.Cart.Store = config.CartStoreRedis
	cfg.Redis.URL = "redis://127.0.0.1:1"

	_, err := NewApp(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestApp_HandleOrderEvent(t *testing.T) {
	app := newTestApp(t, testConfig())
	ctx := context.Background()

	target := inStockProduct(t, app)

	body, err := json.Marshal(services.OrderPlacedEvent{
		OrderID: uuid.NewString(),
		Items:   []models.OrderItem{{ProductID: target.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, app.HandleOrderEvent(ctx, amqp.Delivery{RoutingKey: "order.shipped", Body: body}))
	unchanged, err := app.Products.GetProductByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, target.Stock, unchanged.Stock)

	require.NoError(t, app.HandleOrderEvent(ctx, amqp.Delivery{RoutingKey: services.RoutingKeyOrderPlaced, Body: body}))
	deducted, err := app.Products.GetProductByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, target.Stock-1, deducted.Stock)

	require.NoError(t, app.HandleOrderEvent(ctx, amqp.Delivery{RoutingKey: services.RoutingKeyOrderPlaced, Body: body, Redelivered: true}))
	redelivered, err := app.Products.GetProductByID(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, target.Stock-1, redelivered.Stock)
}
