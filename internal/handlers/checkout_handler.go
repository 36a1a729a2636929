package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/services"
	"storefront/pkg/logger"
)

// CheckoutHandler turns the session's cart into an order.
type CheckoutHandler struct {
	service *services.CheckoutService
	log     *logger.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService, log *logger.Logger) *CheckoutHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CheckoutHandler{service: service, log: log}
}

// RegisterRoutes registers the checkout route behind the session middleware.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", middleware.CartSession(), h.HandleCheckout)
}

// HandleCheckout validates the checkout form, charges the simulated payment
// and answers with the placed order.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, h.log, err)
	}

	sessionID := middleware.SessionID(c)
	ctx := h.log.WithSessionID(c.UserContext(), sessionID)
	order, err := h.service.Checkout(ctx, sessionID, req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}
