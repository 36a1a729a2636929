package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	pkgerrors "storefront/pkg/errors"
	"storefront/pkg/metrics"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	args := m.Called(ctx, routingKey, body)
	return args.Error(0)
}

var fixedNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

type checkoutFixture struct {
	*cartFixture
	orders    *repositories.MockOrderRepository
	publisher *MockPublisher
	checkout  *services.CheckoutService
	a, b      *models.Product
}

func newCheckoutFixture(t *testing.T, opts ...services.CheckoutOption) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		cartFixture: newCartFixture(t, true),
		orders:      repositories.NewMockOrderRepository(),
		publisher:   new(MockPublisher),
	}
	f.a = f.addProduct(t, models.Product{Title: "A", Price: 1000, Stock: 5, IsVisible: true})
	f.b = f.addProduct(t, models.Product{Title: "B", Price: 500, Stock: 5, IsVisible: true})

	opts = append([]services.CheckoutOption{
		services.WithPublisher(f.publisher),
		services.WithClock(func() time.Time { return fixedNow }),
		services.WithCheckoutMetrics(f.metrics),
	}, opts...)
	f.checkout = services.NewCheckoutService(f.service, f.products, f.orders, nil, opts...)
	return f
}

func (f *checkoutFixture) fillCart(t *testing.T, session string) {
	t.Helper()
	_, err := f.service.AddProduct(ctx, session, f.a.ID, 2)
	require.NoError(t, err)
	_, err = f.service.AddProduct(ctx, session, f.b.ID, 1)
	require.NoError(t, err)
}

func validCheckout() services.CheckoutRequest {
	return services.CheckoutRequest{
		Name:       gofakeit.Name(),
		Email:      gofakeit.Email(),
		Address:    gofakeit.Street(),
		City:       gofakeit.City(),
		PostalCode: "8320000",
		CardNumber: "4242 4242 4242 4242",
		CardExpiry: "04/26",
		CardCVC:    "123",
	}
}

func TestCheckoutService_PlacesPaidOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t, "s1")

	var published services.OrderPlacedEvent
	f.publisher.On("Publish", mock.Anything, services.RoutingKeyOrderPlaced, mock.Anything).
		Run(func(args mock.Arguments) {
			require.NoError(t, json.Unmarshal(args.Get(2).([]byte), &published))
		}).Return(nil).Once()

	order, err := f.checkout.Checkout(ctx, "s1", validCheckout())
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, "4242", order.CardLast4)
	assert.EqualValues(t, 2500, order.Subtotal)
	assert.True(t, order.Tax.Equal(decimal.NewFromInt(475)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(2975)))
	require.Len(t, order.Items, 2)
	assert.Equal(t, f.a.ID, order.Items[0].ProductID)
	assert.Equal(t, 3, order.ItemCount())

	stored, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "s1", stored.SessionID)

	assert.Equal(t, order.ID, published.OrderID)
	assert.Len(t, published.Items, 2)

	c, err := f.service.Open(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 1.0, counterValue(t, f.registry, "checkouts_total", metrics.ResultSuccess))
	f.publisher.AssertExpectations(t)
}

func TestCheckoutService_PublishFailureDoesNotFailCheckout(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t, "s1")
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := f.checkout.Checkout(ctx, "s1", validCheckout())
	require.NoError(t, err)

	orders, err := f.orders.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCheckoutService_WithoutPublisher(t *testing.T) {
	f := newCheckoutFixture(t, services.WithPublisher(nil))
	f.fillCart(t, "s1")

	_, err := f.checkout.Checkout(ctx, "s1", validCheckout())
	require.NoError(t, err)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutService_RejectsInvalidForms(t *testing.T) {
	cases := map[string]struct {
		mutate func(*services.CheckoutRequest)
		field  string
	}{
		"bad email":        {func(r *services.CheckoutRequest) { r.Email = "nope" }, "Email"},
		"luhn failure":     {func(r *services.CheckoutRequest) { r.CardNumber = "4242 4242 4242 4241" }, "CardNumber"},
		"short card":       {func(r *services.CheckoutRequest) { r.CardNumber = "4242 4242 42" }, "CardNumber"},
		"letters in card":  {func(r *services.CheckoutRequest) { r.CardNumber = "4242 42x2 4242 4242" }, "CardNumber"},
		"expired card":     {func(r *services.CheckoutRequest) { r.CardExpiry = "02/26" }, "CardExpiry"},
		"bad expiry month": {func(r *services.CheckoutRequest) { r.CardExpiry = "13/30" }, "CardExpiry"},
		"short cvc":        {func(r *services.CheckoutRequest) { r.CardCVC = "12" }, "CardCVC"},
		"alpha cvc":        {func(r *services.CheckoutRequest) { r.CardCVC = "12a" }, "CardCVC"},
		"missing city":     {func(r *services.CheckoutRequest) { r.City = "" }, "City"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newCheckoutFixture(t)
			f.fillCart(t, "s1")

			req := validCheckout()
			tc.mutate(&req)
			_, err := f.checkout.Checkout(ctx, "s1", req)

			require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
			details, ok := pkgerrors.As(err).Details().(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tc.field)

			c, err := f.service.Open(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, 3, c.Count(), "cart untouched")
		})
	}
}

func TestCheckoutService_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.checkout.Checkout(ctx, "empty", validCheckout())
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))
	assert.Equal(t, 1.0, counterValue(t, f.registry, "checkouts_total", metrics.ResultRejected))
}

func TestCheckoutService_ConflictsWithLiveCatalog(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fillCart(t, "s1")

	a, err := f.products.GetByID(ctx, f.a.ID)
	require.NoError(t, err)
	a.Stock = 1
	require.NoError(t, f.products.Update(ctx, a))
	require.NoError(t, f.products.Delete(ctx, f.b.ID))

	_, err = f.checkout.Checkout(ctx, "s1", validCheckout())
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	details := pkgerrors.As(err).Details().(map[string]string)
	assert.Equal(t, "only 1 in stock", details[f.a.ID])
	assert.Equal(t, "no longer available", details[f.b.ID])

	orders, err := f.orders.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckoutService_PaymentDelayHonoursContext(t *testing.T) {
	f := newCheckoutFixture(t, services.WithPaymentDelay(time.Hour))
	f.fillCart(t, "s1")

	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	_, err := f.checkout.Checkout(cctx, "s1", validCheckout())
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1.0, counterValue(t, f.registry, "checkouts_total", metrics.ResultFailed))

	c, err := f.service.Open(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Count())
}
