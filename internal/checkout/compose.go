package checkout

import (
	"time"

	"github.com/noah-isme/pizzeria-storefront/internal/cart"
	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
	"github.com/noah-isme/pizzeria-storefront/internal/discount"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
	"github.com/noah-isme/pizzeria-storefront/internal/shipping"
)

// Totals is the priced view of a cart. It is everything order submission needs beyond
// the customer's contact details.
type Totals struct {
	Subtotal           pricing.Money   `json:"subtotal"`
	Discounts          discount.Result `json:"discounts"`
	DiscountedSubtotal pricing.Money   `json:"discountedSubtotal"`
	Shipping           pricing.Money   `json:"shipping"`
	GrandTotal         pricing.Money   `json:"grandTotal"`
	DeliveryMode       shipping.Mode   `json:"deliveryMode"`
	ItemCount          int             `json:"itemCount"`
	ComputedAt         time.Time       `json:"computedAt"`
}

// Input carries everything Compose reads.
type Input struct {
	Lines    []cart.Line
	Rules    []discount.Rule
	Mode     shipping.Mode
	Shipping shipping.Policy
	Engine   discount.Engine
	Now      time.Time
}

// Compose prices a cart: rule discounts on the subtotal, shipping on the discounted
// subtotal, grand total as their sum.
func Compose(in Input) Totals {
	ledger := cart.NewLedger(in.Lines)
	subtotal := ledger.Subtotal()
	discounts := in.Engine.Evaluate(ledger.DiscountLines(), subtotal, in.Rules)
	discounted := pricing.NonNegative(subtotal.Sub(discounts.Total))
	mode := in.Mode
	if !mode.Valid() {
		mode = shipping.ModeDelivery
	}
	fee := in.Shipping.Cost(mode, discounted)
	return Totals{
		Subtotal:           subtotal,
		Discounts:          discounts,
		DiscountedSubtotal: discounted,
		Shipping:           fee,
		GrandTotal:         discounted.Add(fee),
		DeliveryMode:       mode,
		ItemCount:          ledger.ItemCount(),
		ComputedAt:         in.Now,
	}
}

// State is the session state a cart view is derived from.
type State struct {
	Ledger   *cart.Ledger
	Mode     shipping.Mode
	Rules    []discount.Rule
	Shipping shipping.Policy
	Engine   discount.Engine
	Now      time.Time
}

// Recompute derives the totals from the state. Callers invoke it after every
// transition; nothing is cached between calls.
func Recompute(s State) Totals {
	var lines []cart.Line
	if s.Ledger != nil {
		lines = s.Ledger.Lines()
	}
	return Compose(Input{
		Lines:    lines,
		Rules:    s.Rules,
		Mode:     s.Mode,
		Shipping: s.Shipping,
		Engine:   s.Engine,
		Now:      s.Now,
	})
}

// Quote is the cart view: totals plus upsell hints.
type Quote struct {
	Lines                 []cart.Line                  `json:"lines"`
	Totals                Totals                       `json:"totals"`
	Pending               []discount.Pending           `json:"pending"`
	Suggestions           map[string][]catalog.Product `json:"suggestions"`
	FreeShippingRemaining *pricing.Money               `json:"freeShippingRemaining,omitempty"`
}

// suggestionLimit caps upsell products per pending rule.
const suggestionLimit = 2

// BuildQuote recomputes the totals and projects near-miss promotions.
func BuildQuote(s State, advisor discount.Advisor, products []catalog.Product) Quote {
	totals := Recompute(s)
	var lines []cart.Line
	if s.Ledger != nil {
		lines = s.Ledger.Lines()
	} else {
		lines = []cart.Line{}
	}
	var discountLines []discount.Line
	for _, l := range lines {
		discountLines = append(discountLines, l.DiscountLine())
	}
	pending := advisor.FindPending(discountLines, s.Rules, totals.Subtotal)
	q := Quote{
		Lines:       lines,
		Totals:      totals,
		Pending:     pending,
		Suggestions: discount.Suggest(pending, products, suggestionLimit),
	}
	if totals.DeliveryMode == shipping.ModeDelivery {
		if remaining, ok := s.Shipping.Remaining(totals.DiscountedSubtotal); ok {
			q.FreeShippingRemaining = &remaining
		}
	}
	return q
}
