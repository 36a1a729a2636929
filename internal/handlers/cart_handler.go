package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/middleware"
	"storefront/internal/services"
	pkgerrors "storefront/pkg/errors"
	"storefront/pkg/logger"
	"storefront/pkg/money"
)

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	// Quantity defaults to one when omitted. The cart service caps it.
	Quantity *int `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

type cartLineResponse struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	ImageRef  string `json:"imageRef"`
	Stock     int    `json:"stock"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
	Formatted struct {
		Price    string `json:"price"`
		Subtotal string `json:"subtotal"`
	} `json:"formatted"`
}

type cartResponse struct {
	SessionID string             `json:"sessionId"`
	Items     []cartLineResponse `json:"items"`
	Count     int                `json:"count"`
	Subtotal  int64              `json:"subtotal"`
	TaxRate   decimal.Decimal    `json:"taxRate"`
	Tax       decimal.Decimal    `json:"tax"`
	Total     decimal.Decimal    `json:"total"`
	Formatted struct {
		Subtotal string `json:"subtotal"`
		Tax      string `json:"tax"`
		Total    string `json:"total"`
	} `json:"formatted"`
}

// CartHandler exposes the cart of the requesting shopping session.
type CartHandler struct {
	service   *services.CartService
	formatter *money.Formatter
	validate  *validator.Validate
	log       *logger.Logger
}

// NewCartHandler creates a new CartHandler. Amounts are rendered with formatter.
func NewCartHandler(service *services.CartService, formatter *money.Formatter, log *logger.Logger) *CartHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CartHandler{
		service:   service,
		formatter: formatter,
		validate:  validator.New(),
		log:       log,
	}
}

// RegisterRoutes registers the cart routes behind the session middleware.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart", middleware.CartSession())
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:productId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
}

// HandleGetCart returns the session's cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	ctx, sessionID := h.session(c)
	shoppingCart, err := h.service.Open(ctx, sessionID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(h.render(sessionID, shoppingCart))
}

// HandleAddItem adds a catalog product to the cart, merging with an
// existing line for the same product.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, h.log, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, h.log, err)
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	ctx, sessionID := h.session(c)
	shoppingCart, err := h.service.AddProduct(ctx, sessionID, req.ProductID, quantity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.render(sessionID, shoppingCart))
}

// HandleUpdateItem sets the quantity of a line; zero or less removes it.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, h.log, err)
	}
	if req.Quantity == nil {
		return respondError(c, h.log, pkgerrors.New(pkgerrors.CodeValidation, "quantity is required"))
	}

	ctx, sessionID := h.session(c)
	shoppingCart, err := h.service.UpdateQuantity(ctx, sessionID, c.Params("productId"), *req.Quantity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(h.render(sessionID, shoppingCart))
}

// HandleRemoveItem drops a line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	ctx, sessionID := h.session(c)
	shoppingCart, err := h.service.RemoveProduct(ctx, sessionID, c.Params("productId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(h.render(sessionID, shoppingCart))
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	ctx, sessionID := h.session(c)
	shoppingCart, err := h.service.Clear(ctx, sessionID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(h.render(sessionID, shoppingCart))
}

func (h *CartHandler) session(c *fiber.Ctx) (context.Context, string) {
	sessionID := middleware.SessionID(c)
	return h.log.WithSessionID(c.UserContext(), sessionID), sessionID
}

func (h *CartHandler) render(sessionID string, shoppingCart *cart.Cart) cartResponse {
	items := shoppingCart.Items()
	resp := cartResponse{
		SessionID: sessionID,
		Items:     make([]cartLineResponse, len(items)),
		TaxRate:   shoppingCart.TaxRate(),
	}
	for i, li := range items {
		line := cartLineResponse{
			ProductID: li.Product.ID,
			Title:     li.Product.Title,
			Price:     li.Product.Price,
			ImageRef:  li.Product.ImageRef,
			Stock:     li.Product.Stock,
			Quantity:  li.Quantity,
			Subtotal:  li.Subtotal(),
		}
		line.Formatted.Price = h.formatter.Format(li.Product.Price)
		line.Formatted.Subtotal = h.formatter.Format(li.Subtotal())
		resp.Items[i] = line
	}

	summary := shoppingCart.Summary()
	resp.Count = summary.Count
	resp.Subtotal = summary.Subtotal
	resp.Tax = summary.Tax
	resp.Total = summary.Total
	resp.Formatted.Subtotal = h.formatter.Format(summary.Subtotal)
	resp.Formatted.Tax = h.formatter.FormatDecimal(summary.Tax)
	resp.Formatted.Total = h.formatter.FormatDecimal(summary.Total)
	return resp
}
