package catalog

import "github.com/noah-isme/pizzeria-storefront/internal/pricing"

// StockStatus reports whether a product can be ordered.
type StockStatus string

const (
	// InStock marks an orderable product.
	InStock StockStatus = "instock"
	// OutOfStock marks a product that cannot be ordered.
	OutOfStock StockStatus = "outofstock"
)

// CategoryRef is a category reference carried by a product.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category is a normalized catalog category with its optional happy hour.
type Category struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Count     int                `json:"count"`
	HappyHour *pricing.HappyHour `json:"happyHour,omitempty"`
}

// Size is a selectable product size.
type Size struct {
	Name          string        `json:"name"`
	PriceModifier pricing.Money `json:"priceModifier"`
}

// Personalization describes the customization schema of a product.
type Personalization struct {
	Sizes            []Size   `json:"sizes,omitempty"`
	BaseIngredients  []string `json:"baseIngredients,omitempty"`
	ExtraIngredients []string `json:"extraIngredients,omitempty"`
}

// ComboSlot is a named selection step of a combo referencing a category.
type ComboSlot struct {
	CategoryID   string `json:"categoryId"`
	Name         string `json:"name"`
	MinSelection int    `json:"minSelection"`
	MaxSelection int    `json:"maxSelection"`
}

// Combo describes a composite product.
type Combo struct {
	Slots []ComboSlot `json:"slots"`
}

// Product is the normalized catalog product. Values are treated as immutable once loaded.
type Product struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Price           pricing.Money    `json:"price"`
	RegularPrice    *pricing.Money   `json:"regularPrice,omitempty"`
	SalePrice       *pricing.Money   `json:"salePrice,omitempty"`
	Categories      []CategoryRef    `json:"categories"`
	StockStatus     StockStatus      `json:"stockStatus"`
	Images          []string         `json:"images,omitempty"`
	Featured        bool             `json:"featured,omitempty"`
	Personalization *Personalization `json:"personalization,omitempty"`
	Combo           *Combo           `json:"combo,omitempty"`
}

// CategoryIDs returns the product's category ids in declaration order.
func (p Product) CategoryIDs() []string {
	ids := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// InCategory reports whether the product belongs to the category.
func (p Product) InCategory(id string) bool {
	for _, c := range p.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Available reports whether the product may be added to a cart.
func (p Product) Available() bool {
	return p.StockStatus != OutOfStock
}

// PricedProduct is a product annotated with its effective price at a point in time.
type PricedProduct struct {
	Product
	Effective pricing.Resolution `json:"effective"`
}
