package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/catalog"
	"storefront/internal/services"
	pkgerrors "storefront/pkg/errors"
	"storefront/pkg/logger"
)

// CatalogHandler serves the shopper-facing listing, category and search
// endpoints. Hidden products never appear here.
type CatalogHandler struct {
	service *services.ProductService
	log     *logger.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.ProductService, log *logger.Logger) *CatalogHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogHandler{service: service, log: log}
}

// RegisterRoutes registers the storefront routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/catalog", h.HandleListCatalog)
	router.Get("/catalog/products/:id", h.HandleGetCatalogProduct)
	router.Get("/catalog/categories/:id", h.HandleListCategory)
	router.Get("/catalog/categories/:id/:subId", h.HandleListSubcategory)

	router.Get("/categories", h.HandleGetCategories)
	router.Get("/categories/:id", h.HandleGetCategory)

	router.Get("/search/suggestions", h.HandleSuggestions)
}

// HandleListCatalog lists visible products matching the query string
// filters q, category, minPrice, maxPrice, inStock and sort.
func (h *CatalogHandler) HandleListCatalog(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	products, err := h.service.ListCatalog(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"products": products,
		"total":    len(products),
	})
}

// HandleGetCatalogProduct returns a visible product.
func (h *CatalogHandler) HandleGetCatalogProduct(c *fiber.Ctx) error {
	product, err := h.service.GetVisibleProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(product)
}

// HandleListCategory lists the visible products of a category, cheapest first.
func (h *CatalogHandler) HandleListCategory(c *fiber.Ctx) error {
	category, products, err := h.service.ListCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"category": category,
		"products": products,
	})
}

// HandleListSubcategory lists the visible products of a subcategory, cheapest first.
func (h *CatalogHandler) HandleListSubcategory(c *fiber.Ctx) error {
	category, sub, products, err := h.service.ListSubcategory(c.UserContext(), c.Params("id"), c.Params("subId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"category":    category,
		"subcategory": sub,
		"products":    products,
	})
}

// HandleGetCategories returns the category tree.
func (h *CatalogHandler) HandleGetCategories(c *fiber.Ctx) error {
	return c.JSON(catalog.Categories())
}

// HandleGetCategory returns one category with its subcategories.
func (h *CatalogHandler) HandleGetCategory(c *fiber.Ctx) error {
	category, ok := catalog.FindCategory(c.Params("id"))
	if !ok {
		return respondError(c, h.log, pkgerrors.New(pkgerrors.CodeNotFound, "category not found"))
	}
	return c.JSON(category)
}

// HandleSuggestions answers the search box autocomplete.
func (h *CatalogHandler) HandleSuggestions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", catalog.DefaultSuggestionLimit)
	suggestions, err := h.service.Suggest(c.UserContext(), c.Query("q"), limit)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(suggestions)
}

func parseFilter(c *fiber.Ctx) (catalog.Filter, error) {
	f := catalog.DefaultFilter()
	f.Query = c.Query("q")

	for _, id := range strings.Split(c.Query("category"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			f.Categories = append(f.Categories, id)
		}
	}

	var err error
	if f.MinPrice, err = queryPrice(c, "minPrice", f.MinPrice); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryPrice(c, "maxPrice", f.MaxPrice); err != nil {
		return f, err
	}
	f.InStockOnly = c.QueryBool("inStock", false)

	if f.Sort, err = catalog.ParseSort(c.Query("sort")); err != nil {
		return f, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort order").
			WithDetails(map[string]string{"sort": err.Error()})
	}
	return f, nil
}

func queryPrice(c *fiber.Ctx, key string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid price filter").
			WithDetails(map[string]string{key: "must be a non-negative whole number"})
	}
	return v, nil
}
