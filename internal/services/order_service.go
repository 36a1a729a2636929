package services

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"
	pkgerrors "storefront/pkg/errors"
	"storefront/pkg/logger"
)

// OrderStatuses lists every status an order may be moved to.
var OrderStatuses = []string{
	models.OrderStatusPending,
	models.OrderStatusPaid,
	models.OrderStatusProcessing,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
	models.OrderStatusCancelled,
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	inventory repositories.InventoryRepository
	log       *logger.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, inventory repositories.InventoryRepository, log *logger.Logger) *OrderService {
	if log == nil {
		log = logger.Nop()
	}
	return &OrderService{
		orderRepo: orderRepo,
		inventory: inventory,
		log:       log,
	}
}

// GetAllOrders retrieves all orders, newest first.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list orders")
	}
	return orders, nil
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "order")
	}
	return order, nil
}

// UpdateOrderStatus updates the status of an existing order.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status string) (*models.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !slices.Contains(OrderStatuses, status) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": status, "allowed": OrderStatuses})
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, notFoundOr(err, "order")
	}
	s.log.Info(s.log.WithFields(ctx, map[string]any{"order_id": id, "status": status}), "order status updated")
	return s.GetOrderByID(ctx, id)
}

// HandleOrderPlaced consumes an order.placed event by deducting the ordered
// quantities from the catalog. A redelivered event is acknowledged without
// deducting again.
func (s *OrderService) HandleOrderPlaced(ctx context.Context, body []byte) error {
	var event OrderPlacedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed order event")
	}
	if event.OrderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order event without order id")
	}

	ctx = s.log.WithField(ctx, "order_id", event.OrderID)
	applied, err := s.inventory.DeductForOrder(ctx, event.OrderID, event.Items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to deduct stock")
	}
	if !applied {
		s.log.Info(ctx, "stock already deducted for order, skipping")
		return nil
	}
	s.log.Info(ctx, "stock deducted for order")
	return nil
}
