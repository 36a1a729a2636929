package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"storefront/internal/models"
)

func fixture() []models.Product {
	return []models.Product{
		{ID: "1", Title: "Smart TV 55", Description: "Pantalla 4K", Price: 399990, Stock: 4,
			Categories: []string{"tecnologia"}, Subcategories: []string{"tecnologia-tv"}, IsVisible: true},
		{ID: "2", Title: "audífonos inalámbricos", Description: "Bluetooth", Price: 29990, Stock: 0,
			Categories: []string{"tecnologia"}, Subcategories: []string{"tecnologia-audio"}, IsVisible: true},
		{ID: "3", Title: "Cama para perro", Description: "Acolchada", Price: 19990, Stock: 12,
			Categories: []string{"mascotas"}, Subcategories: []string{"mascotas-perros"}, IsVisible: true},
		{ID: "4", Title: "Prototipo oculto", Description: "No publicar", Price: 10, Stock: 1,
			Categories: []string{"tecnologia"}, Subcategories: []string{"tecnologia-tv"}, IsVisible: false},
		{ID: "5", Title: "Bicicleta aro 29", Description: "Montaña", Price: 1_500_000, Stock: 2,
			Categories: []string{"deportes-aire-libre"}, IsVisible: true},
	}
}

func ids(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestCategoryLookups(t *testing.T) {
	all := Categories()
	require.Len(t, all, 19)
	assert.Equal(t, "tecnologia", all[0].ID)

	c, ok := FindCategory("mascotas")
	require.True(t, ok)
	assert.Equal(t, "Mascotas", c.Name)

	_, ok = FindCategory("nope")
	assert.False(t, ok)

	cat, sub, ok := FindSubcategory("tecnologia", "pc-gamer")
	require.True(t, ok)
	assert.Equal(t, "tecnologia", cat.ID)
	assert.Equal(t, "PC gamer", sub.Name)

	_, _, ok = FindSubcategory("tecnologia", "perros")
	assert.False(t, ok)

	assert.Equal(t, "mascotas-perros", SubcategoryKey("mascotas", "perros"))
}

func TestCategoriesReturnsCopies(t *testing.T) {
	all := Categories()
	all[0].Subcategories[0].Name = "changed"

	c, _ := FindCategory(all[0].ID)
	assert.Equal(t, "TV", c.Subcategories[0].Name)
}

func TestDefaultFilterHidesInvisibleAndExpensive(t *testing.T) {
	got := DefaultFilter().Apply(fixture(), language.Spanish)
	assert.Equal(t, []string{"3", "2", "1"}, ids(got))
}

func TestFilterCombinations(t *testing.T) {
	cases := []struct {
		name   string
		filter func(*Filter)
		want   []string
	}{
		{"query matches description, case folded", func(f *Filter) { f.Query = "BLUETOOTH" }, []string{"2"}},
		{"query matches title", func(f *Filter) { f.Query = "tv" }, []string{"1"}},
		{"categories any match", func(f *Filter) { f.Categories = []string{"mascotas", "tecnologia"} }, []string{"3", "2", "1"}},
		{"in stock only", func(f *Filter) { f.InStockOnly = true }, []string{"3", "1"}},
		{"price range inclusive", func(f *Filter) { f.MinPrice = 19990; f.MaxPrice = 29990 }, []string{"3", "2"}},
		{"raised ceiling", func(f *Filter) { f.MaxPrice = 2_000_000 }, []string{"3", "2", "1", "5"}},
		{"price desc", func(f *Filter) { f.Sort = SortPriceDesc }, []string{"1", "2", "3"}},
		{"name asc ignores case", func(f *Filter) { f.Sort = SortNameAsc }, []string{"2", "3", "1"}},
		{"name desc", func(f *Filter) { f.Sort = SortNameDesc }, []string{"1", "3", "2"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := DefaultFilter()
			tc.filter(&f)
			assert.Equal(t, tc.want, ids(f.Apply(fixture(), language.Spanish)))
		})
	}
}

func TestParseSort(t *testing.T) {
	s, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortPriceAsc, s)

	s, err = ParseSort("Name-Desc")
	require.NoError(t, err)
	assert.Equal(t, SortNameDesc, s)

	_, err = ParseSort("popularity")
	assert.Error(t, err)
}

func TestCategoryListings(t *testing.T) {
	assert.Equal(t, []string{"2", "1"}, ids(InCategory(fixture(), "tecnologia")))
	assert.Equal(t, []string{"1"}, ids(InSubcategory(fixture(), "tecnologia", "tv")))
	assert.Empty(t, InSubcategory(fixture(), "mascotas", "gatos"))
}

func TestSuggest(t *testing.T) {
	t.Run("blank query", func(t *testing.T) {
		assert.Empty(t, Suggest(fixture(), "   ", 6))
	})

	t.Run("products then categories then subcategories", func(t *testing.T) {
		got := Suggest(fixture(), "perro", 6)
		require.Len(t, got, 2)
		assert.Equal(t, SuggestionProduct, got[0].Type)
		assert.Equal(t, "3", got[0].ID)
		require.NotNil(t, got[0].Price)
		assert.EqualValues(t, 19990, *got[0].Price)
		assert.Equal(t, SuggestionSubcategory, got[1].Type)
		assert.Equal(t, "mascotas-perros", got[1].ID)
		assert.Equal(t, "mascotas", got[1].CategoryID)
	})

	t.Run("category matches are capped at two", func(t *testing.T) {
		got := Suggest(nil, "ropa", 10)
		var categories, subcategories int
		for _, s := range got {
			switch s.Type {
			case SuggestionCategory:
				categories++
			case SuggestionSubcategory:
				subcategories++
			}
		}
		assert.LessOrEqual(t, categories, 2)
		assert.Equal(t, 2, subcategories)
	})

	t.Run("hidden products never suggested", func(t *testing.T) {
		got := Suggest(fixture(), "prototipo", 6)
		require.Len(t, got, 1)
		assert.Equal(t, SuggestionQuery, got[0].Type)
		assert.Equal(t, "prototipo", got[0].Title)
	})

	t.Run("limit bounds products and total", func(t *testing.T) {
		products := fixture()
		for i := range products {
			products[i].Title = "Tecnología " + products[i].Title
		}
		got := Suggest(products, "tecnolog", 3)
		require.Len(t, got, 3)
		assert.Equal(t, SuggestionProduct, got[0].Type)
		assert.Equal(t, SuggestionCategory, got[1].Type)
		assert.Equal(t, "tecnologia", got[1].ID)
	})

	t.Run("default limit", func(t *testing.T) {
		assert.LessOrEqual(t, len(Suggest(fixture(), "a", 0)), DefaultSuggestionLimit)
	})
}
