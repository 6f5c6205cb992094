package session

import (
	"time"

	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
	"github.com/noah-isme/pizzeria-storefront/internal/checkout"
	"github.com/noah-isme/pizzeria-storefront/internal/discount"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
	"github.com/noah-isme/pizzeria-storefront/internal/shipping"
)

// PaymentMethod is an enabled payment gateway offered at checkout.
type PaymentMethod struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Snapshot is the serialisable form of a session configuration.
type Snapshot struct {
	Categories           []catalog.Category `json:"categories"`
	Products             []catalog.Product  `json:"products"`
	Rules                []discount.Rule    `json:"rules"`
	Shipping             shipping.Policy    `json:"shipping"`
	ExtraIngredientPrice pricing.Money      `json:"extraIngredientPrice"`
	Business             checkout.Business  `json:"business"`
	Schedule             checkout.Schedule  `json:"schedule"`
	PaymentMethods       []PaymentMethod    `json:"paymentMethods"`
	LoadedAt             time.Time          `json:"loadedAt"`
}

// Config is an immutable configuration snapshot shared by all requests until the next
// refresh. Accessors return copies.
type Config struct {
	snap    Snapshot
	catalog *catalog.Catalog
}

// NewConfig indexes a snapshot.
func NewConfig(s Snapshot) *Config {
	return &Config{snap: s, catalog: catalog.New(s.Categories, s.Products)}
}

// Snapshot returns the serialisable form.
func (c *Config) Snapshot() Snapshot {
	return c.snap
}

// Catalog returns the product index.
func (c *Config) Catalog() *catalog.Catalog { return c.catalog }

// ExtraIngredientPrice returns the surcharge per added ingredient.
func (c *Config) ExtraIngredientPrice() pricing.Money { return c.snap.ExtraIngredientPrice }

// Rules returns the active discount rules in declaration order.
func (c *Config) Rules() []discount.Rule {
	return append([]discount.Rule(nil), c.snap.Rules...)
}

// ShippingPolicy returns the delivery fee policy.
func (c *Config) ShippingPolicy() shipping.Policy { return c.snap.Shipping }

// Business returns the store identity.
func (c *Config) Business() checkout.Business { return c.snap.Business }

// Schedule returns the opening hours.
func (c *Config) Schedule() checkout.Schedule {
	out := make(checkout.Schedule, len(c.snap.Schedule))
	for day, hours := range c.snap.Schedule {
		out[day] = hours
	}
	return out
}

// PaymentMethods returns the enabled gateways.
func (c *Config) PaymentMethods() []PaymentMethod {
	return append([]PaymentMethod(nil), c.snap.PaymentMethods...)
}

// LoadedAt is when the snapshot was fetched upstream.
func (c *Config) LoadedAt() time.Time { return c.snap.LoadedAt }
