package shipping

import "github.com/noah-isme/pizzeria-storefront/internal/pricing"

// Defaults used when the commerce backend exposes no shipping zones.
var (
	DefaultFlatFee               = pricing.FromInt(2500)
	DefaultFreeShippingThreshold = pricing.FromInt(20000)
)

// Policy is the merchant's delivery fee configuration.
type Policy struct {
	FlatFee               pricing.Money `json:"flatFee"`
	FreeShippingEnabled   bool          `json:"freeShippingEnabled"`
	FreeShippingThreshold pricing.Money `json:"freeShippingThreshold"`
}

// DefaultPolicy mirrors the storefront's fallback shipping settings.
func DefaultPolicy() Policy {
	return Policy{
		FlatFee:               DefaultFlatFee,
		FreeShippingEnabled:   true,
		FreeShippingThreshold: DefaultFreeShippingThreshold,
	}
}

// Cost returns the delivery fee for an order with the given discounted subtotal.
func (p Policy) Cost(mode Mode, discountedSubtotal pricing.Money) pricing.Money {
	if mode == ModePickup {
		return pricing.Zero
	}
	if p.qualifies(discountedSubtotal) {
		return pricing.Zero
	}
	return pricing.NonNegative(p.FlatFee)
}

// Remaining reports how much more is needed to unlock free delivery. It returns false
// when free shipping is disabled or already reached.
func (p Policy) Remaining(discountedSubtotal pricing.Money) (pricing.Money, bool) {
	if !p.FreeShippingEnabled || p.qualifies(discountedSubtotal) {
		return pricing.Zero, false
	}
	return p.FreeShippingThreshold.Sub(discountedSubtotal), true
}

func (p Policy) qualifies(subtotal pricing.Money) bool {
	return p.FreeShippingEnabled && subtotal.GreaterThanOrEqual(p.FreeShippingThreshold)
}
