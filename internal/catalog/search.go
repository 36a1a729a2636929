package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"storefront/internal/models"
)

// DefaultSuggestionLimit is used when a caller does not pass a positive limit.
const DefaultSuggestionLimit = 6

// Suggestion kinds.
const (
	SuggestionProduct     = "product"
	SuggestionCategory    = "category"
	SuggestionSubcategory = "subcategory"
	SuggestionQuery       = "query"
)

const (
	maxCategorySuggestions    = 2
	maxSubcategorySuggestions = 2
)

// Suggestion is one search-as-you-type hit: a product, category or subcategory.
type Suggestion struct {
	Type          string `json:"type"`
	ID            string `json:"id"`
	Title         string `json:"title"`
	ImageURL      string `json:"imageUrl,omitempty"`
	Price         *int64 `json:"price,omitempty"`
	CategoryID    string `json:"categoryId,omitempty"`
	SubcategoryID string `json:"subcategoryId,omitempty"`
}

// Suggest builds autocomplete entries for query: matching visible products
// first, then categories, then subcategories. When nothing matches the query
// itself is echoed back. A blank query yields no suggestions.
func Suggest(products []models.Product, query string, limit int) []Suggestion {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return []Suggestion{}
	}

	var out []Suggestion
	productLimit := max(limit-2, 0)
	for _, p := range products {
		if len(out) >= productLimit {
			break
		}
		if !p.IsVisible || !matchesText(fold, p, q) {
			continue
		}
		price := p.Price
		out = append(out, Suggestion{
			Type:     SuggestionProduct,
			ID:       p.ID,
			Title:    p.Title,
			ImageURL: p.ImageURL,
			Price:    &price,
		})
	}

	added := 0
	for _, c := range categories {
		if added == maxCategorySuggestions {
			break
		}
		if strings.Contains(fold.String(c.Name), q) {
			out = append(out, Suggestion{Type: SuggestionCategory, ID: c.ID, Title: c.Name})
			added++
		}
	}

	added = 0
	for _, c := range categories {
		for _, s := range c.Subcategories {
			if added == maxSubcategorySuggestions {
				break
			}
			if strings.Contains(fold.String(s.Name), q) {
				out = append(out, Suggestion{
					Type:          SuggestionSubcategory,
					ID:            SubcategoryKey(c.ID, s.ID),
					Title:         s.Name,
					CategoryID:    c.ID,
					SubcategoryID: s.ID,
				})
				added++
			}
		}
	}

	if len(out) == 0 {
		trimmed := strings.TrimSpace(query)
		return []Suggestion{{Type: SuggestionQuery, ID: "query-" + trimmed, Title: trimmed}}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
