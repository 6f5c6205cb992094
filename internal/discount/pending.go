package discount

import (
	"fmt"

	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
)

// PendingType distinguishes what a customer still needs to reach a promotion.
type PendingType string

const (
	PendingQuantity PendingType = "quantity"
	PendingAmount   PendingType = "amount"
)

// DefaultAmountThreshold bounds how far below a minimum spend a pending hint is shown.
var DefaultAmountThreshold = pricing.FromInt(10000)

// maxQuantityShortfall is the largest unit shortfall worth advertising.
const maxQuantityShortfall = 2

// Pending describes a promotion the cart almost qualifies for.
type Pending struct {
	Type              PendingType   `json:"type"`
	Description       string        `json:"description"`
	Needed            pricing.Money `json:"needed"`
	Rule              Rule          `json:"rule"`
	SuggestedCategory string        `json:"suggestedCategory,omitempty"`
}

// Advisor projects near-miss promotions for upsell hints.
type Advisor struct {
	AmountThreshold pricing.Money
	Formatter       *pricing.Formatter
}

// FindPending lists near-miss promotions in rule declaration order.
func (a Advisor) FindPending(lines []Line, rules []Rule, subtotal pricing.Money) []Pending {
	threshold := a.AmountThreshold
	if !threshold.IsPositive() {
		threshold = DefaultAmountThreshold
	}

	pending := make([]Pending, 0)
	for _, rule := range rules {
		if !rule.Enabled || rule.Validate() != nil {
			continue
		}
		switch rule.Type {
		case TypeBuyXGetY:
			short := rule.Conditions.MinQuantity - EligibleQuantity(lines, rule)
			if short < 1 || short > maxQuantityShortfall {
				continue
			}
			suggested := ""
			if len(rule.Conditions.Categories) > 0 {
				suggested = rule.Conditions.Categories[0]
			}
			pending = append(pending, Pending{
				Type:              PendingQuantity,
				Description:       quantityHint(short, rule.Name),
				Needed:            pricing.FromInt(int64(short)),
				Rule:              rule,
				SuggestedCategory: suggested,
			})
		case TypePercentage:
			minAmount, ok := rule.minAmount()
			if !ok || !subtotal.LessThan(minAmount) {
				continue
			}
			needed := minAmount.Sub(subtotal)
			if !needed.LessThan(threshold) {
				continue
			}
			pending = append(pending, Pending{
				Type:        PendingAmount,
				Description: fmt.Sprintf("Agrega %s más para %s%% de descuento", a.money(needed), rule.Value.String()),
				Needed:      needed,
				Rule:        rule,
			})
		}
	}
	return pending
}

func (a Advisor) money(v pricing.Money) string {
	if a.Formatter == nil {
		return "$" + v.String()
	}
	return a.Formatter.Format(v)
}

func quantityHint(short int, name string) string {
	if short == 1 {
		return fmt.Sprintf("Agrega 1 producto más para %s", name)
	}
	return fmt.Sprintf("Agrega %d productos más para %s", short, name)
}

// Suggest returns up to limit available products from the suggested category of each
// quantity hint, keyed by rule id.
func Suggest(pending []Pending, products []catalog.Product, limit int) map[string][]catalog.Product {
	out := make(map[string][]catalog.Product)
	if limit <= 0 {
		return out
	}
	for _, p := range pending {
		if p.Type != PendingQuantity || p.SuggestedCategory == "" {
			continue
		}
		var picks []catalog.Product
		for _, product := range products {
			if !product.Available() || !product.InCategory(p.SuggestedCategory) {
				continue
			}
			picks = append(picks, product)
			if len(picks) == limit {
				break
			}
		}
		if len(picks) > 0 {
			out[p.Rule.ID] = picks
		}
	}
	return out
}
