package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/repositories"
	pkgerrors "storefront/pkg/errors"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
)

// DefaultMaxLineQuantity caps a single cart line when CartSettings leaves
// MaxLineQuantity unset.
const DefaultMaxLineQuantity = 999

// CartSettings configures the carts opened by CartService.
type CartSettings struct {
	KeyPrefix       string
	TaxRate         decimal.Decimal
	EnforceStock    bool
	MaxLineQuantity int
}

// CartService opens the cart of a shopping session and applies the
// storefront's product rules before mutating it.
type CartService struct {
	store    cart.Store
	products repositories.ProductRepository
	settings CartSettings
	metrics  *metrics.Storefront
	log      *logger.Logger
}

// NewCartService creates a CartService. An empty KeyPrefix defaults to "cart"
// and a zero MaxLineQuantity to DefaultMaxLineQuantity.
func NewCartService(store cart.Store, products repositories.ProductRepository, settings CartSettings, m *metrics.Storefront, log *logger.Logger) *CartService {
	if log == nil {
		log = logger.Nop()
	}
	if settings.KeyPrefix == "" {
		settings.KeyPrefix = "cart"
	}
	if settings.MaxLineQuantity <= 0 {
		settings.MaxLineQuantity = DefaultMaxLineQuantity
	}
	return &CartService{
		store:    store,
		products: products,
		settings: settings,
		metrics:  m,
		log:      log,
	}
}

// Key returns the store key of a session's cart.
func (s *CartService) Key(sessionID string) string {
	return s.settings.KeyPrefix + ":" + sessionID
}

// Open loads the cart of sessionID.
func (s *CartService) Open(ctx context.Context, sessionID string) (*cart.Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}

	opts := []cart.Option{
		cart.WithTaxRate(s.settings.TaxRate),
		cart.WithMaxLineQuantity(s.settings.MaxLineQuantity),
		cart.WithCorruptionHook(func(err error) {
			s.metrics.IncCorruptRecord()
			s.log.Warn(s.log.WithField(ctx, "cart_key", s.Key(sessionID)), "discarded corrupt cart record: "+err.Error())
		}),
	}
	if s.settings.EnforceStock {
		opts = append(opts, cart.WithStockLimit())
	}

	c, err := cart.Load(ctx, s.store, s.Key(sessionID), opts...)
	if err != nil {
		return nil, mapCartError(err)
	}
	return c, nil
}

// AddProduct adds quantity units of a visible catalog product.
func (s *CartService) AddProduct(ctx context.Context, sessionID, productID string, quantity int) (*cart.Cart, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	c, err := s.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	if !product.IsVisible {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if err := c.AddItem(ctx, Snapshot(product), quantity); err != nil {
		return nil, mapCartError(err)
	}
	s.metrics.IncCartOp("add")
	return c, nil
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
// Products that are not in the cart are ignored.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*cart.Cart, error) {
	c, err := s.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.SetQuantity(ctx, productID, quantity); err != nil {
		return nil, mapCartError(err)
	}
	s.metrics.IncCartOp("update")
	return c, nil
}

// RemoveProduct drops a line. Removing a product that is not in the cart is
// not an error.
func (s *CartService) RemoveProduct(ctx context.Context, sessionID, productID string) (*cart.Cart, error) {
	c, err := s.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveItem(ctx, productID); err != nil {
		return nil, mapCartError(err)
	}
	s.metrics.IncCartOp("remove")
	return c, nil
}

// Clear empties the session's cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) (*cart.Cart, error) {
	c, err := s.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.Clear(ctx); err != nil {
		return nil, mapCartError(err)
	}
	s.metrics.IncCartOp("clear")
	return c, nil
}

// Snapshot copies the fields a cart keeps from a catalog product.
func Snapshot(p *models.Product) cart.Product {
	return cart.Product{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		ImageRef: p.ImageURL,
		Stock:    p.Stock,
	}
}

func mapCartError(err error) error {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "quantity must be greater than zero")
	case errors.Is(err, cart.ErrQuantityTooLarge):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "quantity is too large")
	case errors.Is(err, cart.ErrOutOfStock):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product is out of stock")
	case errors.Is(err, cart.ErrInvalidTaxRate):
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cart is misconfigured")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart storage unavailable")
	}
}
