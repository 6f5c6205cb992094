package discount

import (
	"errors"
	"fmt"

	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
)

// Type enumerates the promotion kinds a merchant can author.
type Type string

const (
	// TypeBuyXGetY reduces the price of the cheapest eligible units per qualifying set.
	TypeBuyXGetY Type = "buyXgetY"
	// TypePercentage takes a percentage off the eligible amount.
	TypePercentage Type = "percentage"
	// TypeFixed takes a flat amount off the order.
	TypeFixed Type = "fixed"
	// TypeProgressive applies the best tier reached by the subtotal.
	TypeProgressive Type = "progressive"
)

// ErrInvalidRule marks a rule that can never apply. Such rules are inactive, not fatal.
var ErrInvalidRule = errors.New("discount rule misconfigured")

// Tier is one step of a progressive rule.
type Tier struct {
	MinAmount pricing.Money `json:"minAmount"`
	Kind      pricing.Kind  `json:"type"`
	Value     pricing.Money `json:"value"`
}

// Conditions scopes a rule to parts of the cart.
type Conditions struct {
	Categories  []string       `json:"categories,omitempty"`
	Products    []string       `json:"products,omitempty"`
	MinQuantity int            `json:"minQuantity,omitempty"`
	GetQuantity int            `json:"getQuantity,omitempty"`
	MinAmount   *pricing.Money `json:"minAmount,omitempty"`
	Tiers       []Tier         `json:"tiers,omitempty"`
}

// Rule is a merchant-authored promotion. Rules are read-only.
type Rule struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Enabled    bool          `json:"enabled"`
	Type       Type          `json:"type"`
	Conditions Conditions    `json:"conditions"`
	Value      pricing.Money `json:"value"`
}

// Line is the cart view the engine evaluates.
type Line struct {
	ProductID  string
	Categories []string
	UnitPrice  pricing.Money
	Quantity   int
}

// Scoped reports whether the rule names categories or products.
func (r Rule) Scoped() bool {
	return len(r.Conditions.Categories) > 0 || len(r.Conditions.Products) > 0
}

// Matches reports whether the line falls under the rule's category or product scope.
func (r Rule) Matches(l Line) bool {
	for _, want := range r.Conditions.Categories {
		for _, have := range l.Categories {
			if want == have {
				return true
			}
		}
	}
	for _, want := range r.Conditions.Products {
		if want == l.ProductID {
			return true
		}
	}
	return false
}

// minAmount returns the minimum subtotal condition; a zero or negative minimum is unset.
func (r Rule) minAmount() (pricing.Money, bool) {
	if r.Conditions.MinAmount == nil || !r.Conditions.MinAmount.IsPositive() {
		return pricing.Zero, false
	}
	return *r.Conditions.MinAmount, true
}

// belowMinimum reports whether the subtotal misses a present minAmount condition.
func (r Rule) belowMinimum(subtotal pricing.Money) bool {
	threshold, ok := r.minAmount()
	return ok && subtotal.LessThan(threshold)
}

// Validate reports configuration errors that make the rule inert.
func (r Rule) Validate() error {
	if r.Value.IsNegative() {
		return fmt.Errorf("rule %q: negative value: %w", r.ID, ErrInvalidRule)
	}
	switch r.Type {
	case TypeBuyXGetY:
		if r.Conditions.MinQuantity <= 0 {
			return fmt.Errorf("rule %q: minQuantity must be positive: %w", r.ID, ErrInvalidRule)
		}
		if r.Conditions.GetQuantity < 0 {
			return fmt.Errorf("rule %q: negative getQuantity: %w", r.ID, ErrInvalidRule)
		}
	case TypePercentage, TypeFixed:
	case TypeProgressive:
		for i, tier := range r.Conditions.Tiers {
			if tier.Kind != pricing.KindPercentage && tier.Kind != pricing.KindFixed {
				return fmt.Errorf("rule %q: tier %d has unknown kind %q: %w", r.ID, i, tier.Kind, ErrInvalidRule)
			}
		}
	default:
		return fmt.Errorf("rule %q: unknown type %q: %w", r.ID, r.Type, ErrInvalidRule)
	}
	return nil
}
