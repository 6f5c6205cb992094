package catalog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
)

func sampleCatalog() *catalog.Catalog {
	categories := []catalog.Category{
		{ID: "5", Name: "Pizzas", Count: 2, HappyHour: &pricing.HappyHour{Enabled: true, Start: "18:00", End: "20:00", Kind: pricing.KindPercentage, Value: pricing.FromInt(20)}},
		{ID: "7", Name: "Bebidas", Count: 1},
		{ID: "9", Name: "Vacía", Count: 0},
	}
	products := []catalog.Product{
		{ID: "10", Name: "Margarita", Price: pricing.FromInt(8000), Categories: []catalog.CategoryRef{{ID: "5"}}, StockStatus: catalog.InStock},
		{ID: "11", Name: "Pepperoni", Price: pricing.FromInt(9000), Categories: []catalog.CategoryRef{{ID: "5"}}, StockStatus: catalog.OutOfStock},
		{ID: "20", Name: "Cola", Price: pricing.FromInt(1500), Categories: []catalog.CategoryRef{{ID: "7"}}, StockStatus: catalog.InStock},
		{ID: "20", Name: "Duplicate", Price: pricing.FromInt(1), StockStatus: catalog.InStock},
	}
	return catalog.New(categories, products)
}

func TestNewFiltersEmptyCategoriesAndDuplicates(t *testing.T) {
	c := sampleCatalog()
	cats := c.Categories()
	require.Len(t, cats, 2)
	require.Equal(t, "5", cats[0].ID)
	require.Len(t, c.Products(), 3)

	p, ok := c.Product("20")
	require.True(t, ok)
	require.Equal(t, "Cola", p.Name)

	_, ok = c.Product("missing")
	require.False(t, ok)
	require.Len(t, c.InCategory("5"), 2)
}

func TestAnnotateAppliesHappyHour(t *testing.T) {
	c := sampleCatalog()
	book := pricing.PriceBook{Location: time.UTC}
	now := time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)

	priced := c.Annotate(book, c.Products(), now)
	require.Len(t, priced, 3)
	require.True(t, priced[0].Effective.Price.Equal(pricing.FromInt(6400)))
	require.NotNil(t, priced[0].Effective.OriginalPrice)
	require.True(t, priced[2].Effective.Price.Equal(pricing.FromInt(1500)))
	require.Nil(t, priced[2].Effective.HappyHour)

	require.Equal(t, []string{"5"}, c.ActiveHappyHours(book, now))
	require.Empty(t, c.ActiveHappyHours(book, now.Add(3*time.Hour)))
}

func TestProductHelpers(t *testing.T) {
	c := sampleCatalog()
	p, _ := c.Product("11")
	require.False(t, p.Available())
	require.True(t, p.InCategory("5"))
	require.Equal(t, []string{"5"}, p.CategoryIDs())
}
