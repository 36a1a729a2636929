package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"storefront/internal/models"
)

// Price bounds applied when a listing does not set them.
const (
	DefaultMinPrice int64 = 0
	DefaultMaxPrice int64 = 1_000_000
)

// SortOrder selects how a filtered listing is ordered.
type SortOrder string

const (
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortNameAsc   SortOrder = "name-asc"
	SortNameDesc  SortOrder = "name-desc"
)

// ParseSort maps a query value to a SortOrder; empty means price-asc.
func ParseSort(v string) (SortOrder, error) {
	switch s := SortOrder(strings.ToLower(strings.TrimSpace(v))); s {
	case "":
		return SortPriceAsc, nil
	case SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return s, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", v)
	}
}

// Filter narrows the storefront listing. The price range is inclusive.
type Filter struct {
	Query       string
	Categories  []string
	MinPrice    int64
	MaxPrice    int64
	InStockOnly bool
	Sort        SortOrder
}

// DefaultFilter matches every visible product, cheapest first.
func DefaultFilter() Filter {
	return Filter{MinPrice: DefaultMinPrice, MaxPrice: DefaultMaxPrice, Sort: SortPriceAsc}
}

// Apply returns the visible products that pass f, sorted by f.Sort.
func (f Filter) Apply(products []models.Product, lang language.Tag) []models.Product {
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(f.Query))

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !p.IsVisible {
			continue
		}
		if query != "" && !matchesText(fold, p, query) {
			continue
		}
		if len(f.Categories) > 0 && !hasAnyCategory(p, f.Categories) {
			continue
		}
		if p.Price < f.MinPrice || p.Price > f.MaxPrice {
			continue
		}
		if f.InStockOnly && !p.InStock() {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, f.Sort, lang)
	return out
}

// InCategory returns the visible products listed under categoryID, cheapest first.
func InCategory(products []models.Product, categoryID string) []models.Product {
	return visibleSortedByPrice(products, func(p models.Product) bool {
		return slices.Contains(p.Categories, categoryID)
	})
}

// InSubcategory returns the visible products carrying the subcategory key, cheapest first.
func InSubcategory(products []models.Product, categoryID, subID string) []models.Product {
	key := SubcategoryKey(categoryID, subID)
	return visibleSortedByPrice(products, func(p models.Product) bool {
		return p.HasSubcategory(key)
	})
}

func visibleSortedByPrice(products []models.Product, keep func(models.Product) bool) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.IsVisible && keep(p) {
			out = append(out, p)
		}
	}
	sortProducts(out, SortPriceAsc, language.Und)
	return out
}

func matchesText(fold cases.Caser, p models.Product, query string) bool {
	return strings.Contains(fold.String(p.Title), query) ||
		strings.Contains(fold.String(p.Description), query)
}

func hasAnyCategory(p models.Product, wanted []string) bool {
	for _, c := range p.Categories {
		if slices.Contains(wanted, c) {
			return true
		}
	}
	return false
}

func sortProducts(products []models.Product, order SortOrder, lang language.Tag) {
	switch order {
	case SortPriceDesc:
		slices.SortStableFunc(products, func(a, b models.Product) int {
			return cmp.Compare(b.Price, a.Price)
		})
	case SortNameAsc, SortNameDesc:
		coll := collate.New(lang, collate.IgnoreCase)
		slices.SortStableFunc(products, func(a, b models.Product) int {
			if order == SortNameDesc {
				a, b = b, a
			}
			return coll.CompareString(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(products, func(a, b models.Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	}
}
