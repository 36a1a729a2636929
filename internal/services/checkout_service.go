package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/repositories"
	pkgerrors "storefront/pkg/errors"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"
)

// RoutingKeyOrderPlaced is published once per successful checkout.
const RoutingKeyOrderPlaced = "order.placed"

// EventPublisher delivers domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// CheckoutRequest is the checkout form.
type CheckoutRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Email      string `json:"email" validate:"required,email"`
	Address    string `json:"address" validate:"required,max=300"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	CardNumber string `json:"cardNumber" validate:"required,credit_card"`
	CardExpiry string `json:"cardExpiry" validate:"required,card_expiry"`
	CardCVC    string `json:"cardCvc" validate:"required,numeric,min=3,max=4"`
}

// OrderPlacedEvent is the body of an order.placed message.
type OrderPlacedEvent struct {
	OrderID   string             `json:"orderId"`
	SessionID string             `json:"sessionId"`
	Email     string             `json:"email"`
	Items     []models.OrderItem `json:"items"`
	Subtotal  int64              `json:"subtotal"`
	Tax       decimal.Decimal    `json:"tax"`
	Total     decimal.Decimal    `json:"total"`
	PlacedAt  time.Time          `json:"placedAt"`
}

// CheckoutService turns a session's cart into a paid order. Payment is
// simulated.
type CheckoutService struct {
	carts     *CartService
	products  repositories.ProductRepository
	orders    repositories.OrderRepository
	publisher EventPublisher
	delay     time.Duration
	validate  *validator.Validate
	metrics   *metrics.Storefront
	log       *logger.Logger
	now       func() time.Time
}

// CheckoutOption configures a CheckoutService.
type CheckoutOption func(*CheckoutService)

// WithPaymentDelay makes every checkout wait d to simulate a payment provider.
func WithPaymentDelay(d time.Duration) CheckoutOption {
	return func(s *CheckoutService) { s.delay = d }
}

// WithPublisher sets where order.placed events go. Without one no events are sent.
func WithPublisher(p EventPublisher) CheckoutOption {
	return func(s *CheckoutService) { s.publisher = p }
}

// WithClock replaces time.Now, which card expiry checks and metrics use.
func WithClock(now func() time.Time) CheckoutOption {
	return func(s *CheckoutService) { s.now = now }
}

// WithCheckoutMetrics records checkout results and durations on m.
func WithCheckoutMetrics(m *metrics.Storefront) CheckoutOption {
	return func(s *CheckoutService) { s.metrics = m }
}

// NewCheckoutService creates a CheckoutService. It panics if the card
// validations cannot be registered.
func NewCheckoutService(carts *CartService, products repositories.ProductRepository, orders repositories.OrderRepository, log *logger.Logger, opts ...CheckoutOption) *CheckoutService {
	if log == nil {
		log = logger.Nop()
	}
	s := &CheckoutService{
		carts:    carts,
		products: products,
		orders:   orders,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.validate = validator.New()
	if err := s.validate.RegisterValidation("card_expiry", func(fl validator.FieldLevel) bool {
		return validExpiry(fl.Field().String(), s.now())
	}); err != nil {
		panic(fmt.Sprintf("register card_expiry validation: %v", err))
	}
	return s
}

// Checkout validates req, re-checks the cart against the live catalog,
// records a paid order and empties the cart.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, req CheckoutRequest) (*models.Order, error) {
	start := s.now()
	order, err := s.checkout(ctx, sessionID, req)
	switch code := pkgerrors.CodeOf(err); {
	case err == nil:
		s.metrics.ObserveCheckout(metrics.ResultSuccess, s.now().Sub(start))
	case code == pkgerrors.CodeValidation || code == pkgerrors.CodeConflict || code == pkgerrors.CodeStateConflict:
		s.metrics.ObserveCheckout(metrics.ResultRejected, 0)
	default:
		s.metrics.ObserveCheckout(metrics.ResultFailed, 0)
	}
	return order, err
}

func (s *CheckoutService) checkout(ctx context.Context, sessionID string, req CheckoutRequest) (*models.Order, error) {
	req.CardNumber = stripCardSeparators(req.CardNumber)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	c, err := s.carts.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}
	if err := s.verifyAvailability(ctx, c.Items()); err != nil {
		return nil, err
	}

	if err := s.simulatePayment(ctx); err != nil {
		return nil, err
	}

	order := buildOrder(sessionID, req, c)
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to save order")
	}

	logCtx := s.log.WithFields(ctx, map[string]any{"order_id": order.ID, "session_id": sessionID})
	s.log.Info(logCtx, "order placed")
	s.publishPlaced(logCtx, order)

	if err := c.Clear(ctx); err != nil {
		s.log.Error(logCtx, "failed to clear cart after checkout", err)
	}
	return order, nil
}

// verifyAvailability fails with CONFLICT when any line refers to a product
// that is gone, hidden or short of stock.
func (s *CheckoutService) verifyAvailability(ctx context.Context, items []cart.LineItem) error {
	problems := map[string]string{}
	for _, li := range items {
		product, err := s.products.GetByID(ctx, li.Product.ID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			problems[li.Product.ID] = "no longer available"
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load product")
		case !product.IsVisible:
			problems[li.Product.ID] = "no longer available"
		case product.Stock < li.Quantity:
			problems[li.Product.ID] = fmt.Sprintf("only %d in stock", product.Stock)
		}
	}
	if len(problems) > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "some items are unavailable").WithDetails(problems)
	}
	return nil
}

func (s *CheckoutService) simulatePayment(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "payment was interrupted")
	case <-timer.C:
		return nil
	}
}

func (s *CheckoutService) publishPlaced(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(OrderPlacedEvent{
		OrderID:   order.ID,
		SessionID: order.SessionID,
		Email:     order.Email,
		Items:     order.Items,
		Subtotal:  order.Subtotal,
		Tax:       order.Tax,
		Total:     order.Total,
		PlacedAt:  order.CreatedAt,
	})
	if err != nil {
		s.log.Error(ctx, "failed to encode order event", err)
		return
	}
	if err := s.publisher.Publish(ctx, RoutingKeyOrderPlaced, body); err != nil {
		s.log.Warn(ctx, "failed to publish order event: "+err.Error())
	}
}

func buildOrder(sessionID string, req CheckoutRequest, c *cart.Cart) *models.Order {
	items := c.Items()
	orderItems := make([]models.OrderItem, len(items))
	for i, li := range items {
		orderItems[i] = models.OrderItem{
			ProductID: li.Product.ID,
			Title:     li.Product.Title,
			Quantity:  li.Quantity,
			Price:     li.Product.Price,
		}
	}

	summary := c.Summary()
	return &models.Order{
		SessionID:    sessionID,
		CustomerName: strings.TrimSpace(req.Name),
		Email:        req.Email,
		Shipping: models.ShippingAddress{
			Address:    strings.TrimSpace(req.Address),
			City:       strings.TrimSpace(req.City),
			PostalCode: strings.TrimSpace(req.PostalCode),
		},
		Items:     orderItems,
		Subtotal:  summary.Subtotal,
		Tax:       summary.Tax,
		Total:     summary.Total,
		CardLast4: req.CardNumber[len(req.CardNumber)-4:],
		Status:    models.OrderStatusPaid,
	}
}

var cardSeparators = strings.NewReplacer(" ", "", "-", "")

func stripCardSeparators(s string) string {
	return cardSeparators.Replace(strings.TrimSpace(s))
}

// validExpiry accepts MM/YY up to and including the current month.
func validExpiry(v string, now time.Time) bool {
	mm, yy, ok := strings.Cut(strings.TrimSpace(v), "/")
	if !ok || len(mm) != 2 || len(yy) != 2 {
		return false
	}
	month, err := strconv.Atoi(mm)
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(yy)
	if err != nil {
		return false
	}
	year += 2000

	current := now.Year()*12 + int(now.Month()) - 1
	return year*12+month-1 >= current
}
