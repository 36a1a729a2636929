package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/repositories"
	pkgerrors "storefront/pkg/errors"
	"storefront/pkg/logger"
)

// ProductInput is the editable part of a product as sent by the dashboard.
// A nil IsVisible means visible on create and unchanged on update.
type ProductInput struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Description   string   `json:"description" validate:"required,max=2000"`
	Price         int64    `json:"price" validate:"gte=0"`
	ImageURL      string   `json:"imageUrl" validate:"required,max=500"`
	Stock         int      `json:"stock" validate:"gte=0"`
	Categories    []string `json:"categories" validate:"required,min=1,dive,required"`
	Subcategories []string `json:"subcategories" validate:"dive,required"`
	IsVisible     *bool    `json:"isVisible"`
}

// DashboardSummary aggregates the catalog for the admin dashboard.
type DashboardSummary struct {
	TotalProducts  int   `json:"totalProducts"`
	Visible        int   `json:"visible"`
	Hidden         int   `json:"hidden"`
	OutOfStock     int   `json:"outOfStock"`
	TotalUnits     int   `json:"totalUnits"`
	InventoryValue int64 `json:"inventoryValue"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
	lang     language.Tag
	log      *logger.Logger
}

// NewProductService creates a new ProductService. lang drives name ordering
// in storefront listings.
func NewProductService(repo repositories.ProductRepository, lang language.Tag, log *logger.Logger) *ProductService {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductService{
		repo:     repo,
		validate: validator.New(),
		lang:     lang,
		log:      log,
	}
}

// GetAllProducts retrieves all products, hidden ones included.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list products")
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	return product, nil
}

// GetVisibleProduct is GetProductByID for shoppers: hidden products do not exist.
func (s *ProductService) GetVisibleProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsVisible {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// CreateProduct validates in and stores it as a new product.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := s.checkInput(&in); err != nil {
		return nil, err
	}

	product := &models.Product{IsVisible: true}
	applyInput(product, in)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create product")
	}

	s.log.Info(s.log.WithField(ctx, "product_id", product.ID), "product created")
	return product, nil
}

// UpdateProduct replaces the editable fields of the product with the given ID.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	if err := s.checkInput(&in); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	applyInput(product, in)
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, notFoundOr(err, "product")
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "product")
	}
	s.log.Info(s.log.WithField(ctx, "product_id", id), "product deleted")
	return nil
}

// ListCatalog returns the storefront listing for f.
func (s *ProductService) ListCatalog(ctx context.Context, f catalog.Filter) ([]models.Product, error) {
	if f.MinPrice > f.MaxPrice {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minPrice must not exceed maxPrice")
	}
	products, err := s.GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(products, s.lang), nil
}

// ListCategory returns a category and its visible products, cheapest first.
func (s *ProductService) ListCategory(ctx context.Context, categoryID string) (catalog.Category, []models.Product, error) {
	category, ok := catalog.FindCategory(categoryID)
	if !ok {
		return catalog.Category{}, nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	products, err := s.GetAllProducts(ctx)
	if err != nil {
		return catalog.Category{}, nil, err
	}
	return category, catalog.InCategory(products, categoryID), nil
}

// ListSubcategory returns a subcategory, its parent and its visible products,
// cheapest first.
func (s *ProductService) ListSubcategory(ctx context.Context, categoryID, subID string) (catalog.Category, catalog.Subcategory, []models.Product, error) {
	category, sub, ok := catalog.FindSubcategory(categoryID, subID)
	if !ok {
		return catalog.Category{}, catalog.Subcategory{}, nil, pkgerrors.New(pkgerrors.CodeNotFound, "subcategory not found")
	}
	products, err := s.GetAllProducts(ctx)
	if err != nil {
		return catalog.Category{}, catalog.Subcategory{}, nil, err
	}
	return category, sub, catalog.InSubcategory(products, categoryID, subID), nil
}

// Suggest returns up to limit search suggestions. A blank query yields none.
func (s *ProductService) Suggest(ctx context.Context, query string, limit int) ([]catalog.Suggestion, error) {
	if strings.TrimSpace(query) == "" {
		return []catalog.Suggestion{}, nil
	}
	products, err := s.GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Suggest(products, query, limit), nil
}

// DashboardSummary totals products, units and inventory value across the catalog.
func (s *ProductService) DashboardSummary(ctx context.Context) (DashboardSummary, error) {
	products, err := s.GetAllProducts(ctx)
	if err != nil {
		return DashboardSummary{}, err
	}

	sum := DashboardSummary{TotalProducts: len(products)}
	for _, p := range products {
		if p.IsVisible {
			sum.Visible++
		} else {
			sum.Hidden++
		}
		if !p.InStock() {
			sum.OutOfStock++
		}
		sum.TotalUnits += p.Stock
		sum.InventoryValue += p.Price * int64(p.Stock)
	}
	return sum, nil
}

// SeedDemoProducts fills an empty catalog with the demo assortment and
// reports how many products were created.
func (s *ProductService) SeedDemoProducts(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to count products")
	}
	if n > 0 {
		return 0, nil
	}

	created := 0
	for _, in := range demoProducts() {
		if _, err := s.CreateProduct(ctx, in); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *ProductService) checkInput(in *ProductInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)

	if err := s.validate.Struct(in); err != nil {
		return validationError(err)
	}

	details := map[string]string{}
	for _, c := range in.Categories {
		if _, ok := catalog.FindCategory(c); !ok {
			details["Categories"] = "unknown category " + c
		}
	}
	for _, key := range in.Subcategories {
		if !subcategoryBelongs(key, in.Categories) {
			details["Subcategories"] = "subcategory " + key + " is not under the selected categories"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func subcategoryBelongs(key string, categories []string) bool {
	for _, c := range categories {
		subID, ok := strings.CutPrefix(key, c+"-")
		if !ok {
			continue
		}
		if _, _, found := catalog.FindSubcategory(c, subID); found {
			return true
		}
	}
	return false
}

func applyInput(p *models.Product, in ProductInput) {
	p.Title = in.Title
	p.Description = in.Description
	p.Price = in.Price
	p.ImageURL = in.ImageURL
	p.Stock = in.Stock
	p.Categories = append([]string(nil), in.Categories...)
	p.Subcategories = append([]string(nil), in.Subcategories...)
	if in.IsVisible != nil {
		p.IsVisible = *in.IsVisible
	}
}
