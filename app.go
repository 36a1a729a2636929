package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"storefront/internal/cart"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/config"
	"storefront/pkg/database"
	pkgerrors "storefront/pkg/errors"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/pkg/money"
	"storefront/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

// App is the wired storefront: HTTP server, services and the connections
// they hold.
type App struct {
	Fiber    *fiber.App
	Products *services.ProductService
	Carts    *services.CartService
	Orders   *services.OrderService
	// Events is nil when RABBITMQ_URL is empty.
	Events *rabbitmq.Client

	cfg     *config.Config
	log     *logger.Logger
	started time.Time
	closers []func() error
}

// NewApp opens every datastore named by cfg, builds the services and
// registers the HTTP routes. On error everything opened so far is closed.
func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (_ *App, err error) {
	if log == nil {
		log = logger.Nop()
	}
	a := &App{cfg: cfg, log: log, started: time.Now()}
	defer func() {
		if err != nil {
			err = multierr.Append(err, a.Close())
		}
	}()

	repos, err := a.openCatalog(ctx)
	if err != nil {
		return nil, err
	}
	productRepo, orderRepo := repos.products, repos.orders
	store, err := a.openCartStore(ctx, repos.db)
	if err != nil {
		return nil, err
	}

	formatter, err := money.NewFormatter(cfg.App.Locale)
	if err != nil {
		return nil, fmt.Errorf("price formatter: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storefrontMetrics := metrics.NewStorefront(registry)

	checkoutOpts := []services.CheckoutOption{
		services.WithPaymentDelay(cfg.Checkout.PaymentDelay),
		services.WithCheckoutMetrics(storefrontMetrics),
	}
	if cfg.RabbitMQ.URL != "" {
		a.Events, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.Events.Close)
		checkoutOpts = append(checkoutOpts, services.WithPublisher(a.Events))
	} else {
		log.Warn(ctx, "RABBITMQ_URL not set, order events are disabled")
	}

	a.Products = services.NewProductService(productRepo, formatter.Locale(), log)
	a.Carts = services.NewCartService(store, productRepo, services.CartSettings{
		KeyPrefix:       cfg.Cart.KeyPrefix,
		TaxRate:         cfg.Cart.TaxRate,
		EnforceStock:    cfg.Cart.EnforceStock,
		MaxLineQuantity: cfg.Cart.MaxLineQuantity,
	}, storefrontMetrics, log)
	a.Orders = services.NewOrderService(orderRepo, repos.inventory, log)
	checkout := services.NewCheckoutService(a.Carts, productRepo, orderRepo, log, checkoutOpts...)

	if cfg.App.SeedDemoProducts {
		n, err := a.Products.SeedDemoProducts(ctx)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			log.Info(log.WithField(ctx, "count", n), "seeded demo products")
		}
	}

	a.Fiber = fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: a.handleError,
	})
	a.Fiber.Use(requestid.New())
	a.Fiber.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	a.Fiber.Use(middleware.RequestContext(log))

	a.Fiber.Get("/health", a.handleHealth)
	a.Fiber.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	apiV1 := a.Fiber.Group("/api/v1")
	handlers.NewProductHandler(a.Products, log).RegisterRoutes(apiV1)
	handlers.NewCatalogHandler(a.Products, log).RegisterRoutes(apiV1)
	handlers.NewCartHandler(a.Carts, formatter, log).RegisterRoutes(apiV1)
	handlers.NewCheckoutHandler(checkout, log).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(a.Orders, log).RegisterRoutes(apiV1)

	return a, nil
}

type catalogRepos struct {
	products  repositories.ProductRepository
	orders    repositories.OrderRepository
	inventory repositories.InventoryRepository
	// db is nil unless the driver is a SQL one.
	db *gorm.DB
}

// openCatalog returns the catalog repositories for cfg.DB.Driver.
func (a *App) openCatalog(ctx context.Context) (catalogRepos, error) {
	if a.cfg.DB.Driver == config.DriverMongo {
		client, mdb, err := database.ConnectMongo(ctx, a.cfg.DB.MongoURI, a.cfg.DB.MongoDatabase)
		if err != nil {
			return catalogRepos{}, err
		}
		a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })
		return catalogRepos{
			products:  repositories.NewMongoProductRepository(mdb),
			orders:    repositories.NewMongoOrderRepository(mdb),
			inventory: repositories.NewMongoInventoryRepository(mdb),
		}, nil
	}

	db, err := database.OpenGORM(ctx, a.cfg.DB, a.log)
	if err != nil {
		return catalogRepos{}, err
	}
	a.closers = append(a.closers, func() error { return database.CloseGORM(db) })
	if err := database.AutoMigrate(ctx, db, &models.Product{}, &models.Order{}, &models.CartRecord{}, &models.StockDeduction{}); err != nil {
		return catalogRepos{}, err
	}
	return catalogRepos{
		products:  repositories.NewGORMProductRepository(db),
		orders:    repositories.NewGORMOrderRepository(db),
		inventory: repositories.NewGORMInventoryRepository(db),
		db:        db,
	}, nil
}

func (a *App) openCartStore(ctx context.Context, db *gorm.DB) (cart.Store, error) {
	switch a.cfg.Cart.Store {
	case config.CartStoreRedis:
		client, err := database.OpenRedis(ctx, a.cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return repositories.NewRedisCartStore(client, a.cfg.Cart.TTL), nil
	case config.CartStoreDB:
		if db == nil {
			return nil, errors.New("CART_STORE=db needs a SQL database")
		}
		return repositories.NewGORMCartStore(db), nil
	default:
		return repositories.NewMockCartStore(), nil
	}
}

// HandleOrderEvent is the order queue consumer.
func (a *App) HandleOrderEvent(ctx context.Context, msg amqp.Delivery) error {
	if msg.RoutingKey != services.RoutingKeyOrderPlaced {
		a.log.Debug(a.log.WithField(ctx, "routing_key", msg.RoutingKey), "ignoring order event")
		return nil
	}
	return a.Orders.HandleOrderPlaced(ctx, msg.Body)
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	events := "disabled"
	if a.Events != nil {
		events = "enabled"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"time":      time.Now().Format(time.RFC3339),
		"uptime":    time.Since(a.started).Round(time.Second).String(),
		"dbDriver":  a.cfg.DB.Driver,
		"cartStore": a.cfg.Cart.Store,
		"events":    events,
	})
}

// handleError renders errors that escape the handlers, such as unknown
// routes, in the same shape as handler errors.
func (a *App) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"message": fe.Message,
			"error":   utils.StatusMessage(fe.Code),
		})
	}
	a.log.Error(c.UserContext(), "unhandled error", err)
	meta := pkgerrors.MetadataFor(pkgerrors.CodeInternal)
	return c.Status(meta.HTTPStatus).JSON(fiber.Map{
		"message": meta.PublicMessage,
		"error":   string(pkgerrors.CodeInternal),
	})
}

// Close releases every connection in reverse order of opening.
func (a *App) Close() error {
	var err error
	for _, closeFn := range slices.Backward(a.closers) {
		err = multierr.Append(err, closeFn())
	}
	a.closers = nil
	return err
}
