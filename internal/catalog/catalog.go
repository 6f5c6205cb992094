package catalog

import (
	"time"

	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
)

// Catalog is a read-only index over categories and products fetched for a session.
type Catalog struct {
	categories []Category
	products   []Product
	byID       map[string]int
	windows    map[string]pricing.CategoryWindow
}

// New builds a catalog. Categories without products are dropped while their happy-hour
// windows stay addressable by id.
func New(categories []Category, products []Product) *Catalog {
	c := &Catalog{
		byID:    make(map[string]int, len(products)),
		windows: make(map[string]pricing.CategoryWindow, len(categories)),
	}
	for _, cat := range categories {
		c.windows[cat.ID] = pricing.CategoryWindow{ID: cat.ID, Name: cat.Name, HappyHour: cat.HappyHour}
		if cat.Count > 0 {
			c.categories = append(c.categories, cat)
		}
	}
	for _, p := range products {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// Categories returns the non-empty categories in upstream order.
func (c *Catalog) Categories() []Category {
	if c == nil {
		return nil
	}
	return append([]Category(nil), c.categories...)
}

// Products returns all products in upstream order.
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	return append([]Product(nil), c.products...)
}

// Product looks up a product by id.
func (c *Catalog) Product(id string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	idx, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[idx], true
}

// InCategory returns the products of a category in upstream order.
func (c *Catalog) InCategory(categoryID string) []Product {
	if c == nil {
		return nil
	}
	var out []Product
	for _, p := range c.products {
		if p.InCategory(categoryID) {
			out = append(out, p)
		}
	}
	return out
}

// Windows exposes the happy-hour windows keyed by category id.
func (c *Catalog) Windows() map[string]pricing.CategoryWindow {
	if c == nil {
		return nil
	}
	return c.windows
}

// EffectivePrice resolves a product's price at now.
func (c *Catalog) EffectivePrice(book pricing.PriceBook, p Product, now time.Time) pricing.Resolution {
	return book.Resolve(p.Price, p.CategoryIDs(), c.Windows(), now)
}

// Annotate resolves the effective price of every product at now.
func (c *Catalog) Annotate(book pricing.PriceBook, products []Product, now time.Time) []PricedProduct {
	out := make([]PricedProduct, 0, len(products))
	for _, p := range products {
		out = append(out, PricedProduct{Product: p, Effective: c.EffectivePrice(book, p, now)})
	}
	return out
}

// ActiveHappyHours returns the ids of categories whose happy hour is active at now.
func (c *Catalog) ActiveHappyHours(book pricing.PriceBook, now time.Time) []string {
	if c == nil {
		return nil
	}
	var ids []string
	for _, cat := range c.categories {
		if book.Active(c.windows[cat.ID], now) {
			ids = append(ids, cat.ID)
		}
	}
	return ids
}
