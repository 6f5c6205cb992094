package discount

import (
	"fmt"
	"sort"

	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
)

// Applied is one rule's contribution to the order discount.
type Applied struct {
	RuleID      string        `json:"ruleId"`
	Type        Type          `json:"type"`
	Description string        `json:"description"`
	Amount      pricing.Money `json:"amount"`
}

// Result is the discount breakdown for a cart.
type Result struct {
	Total   pricing.Money `json:"total"`
	Applied []Applied     `json:"applied"`
}

// Engine evaluates promotion rules against a cart. The zero value is ready to use.
type Engine struct {
	// Formatter renders tier amounts in progressive descriptions. Nil renders the raw value.
	Formatter *pricing.Formatter
}

// Evaluate runs rules with the zero Engine.
func Evaluate(lines []Line, subtotal pricing.Money, rules []Rule) Result {
	return Engine{}.Evaluate(lines, subtotal, rules)
}

// Evaluate applies every enabled rule independently against the original line prices.
// The total is not capped at the subtotal.
func (e Engine) Evaluate(lines []Line, subtotal pricing.Money, rules []Rule) Result {
	res := Result{Total: pricing.Zero, Applied: []Applied{}}
	for _, rule := range rules {
		if !rule.Enabled || rule.Validate() != nil {
			continue
		}
		entry, ok := e.apply(rule, lines, subtotal)
		if !ok {
			continue
		}
		res.Applied = append(res.Applied, entry)
		res.Total = res.Total.Add(entry.Amount)
	}
	return res
}

func (e Engine) apply(rule Rule, lines []Line, subtotal pricing.Money) (Applied, bool) {
	entry := Applied{RuleID: rule.ID, Type: rule.Type, Description: rule.Name}
	switch rule.Type {
	case TypeBuyXGetY:
		amount := BuyXGetY(lines, rule)
		if !amount.IsPositive() {
			return entry, false
		}
		entry.Amount = amount
	case TypePercentage:
		if rule.belowMinimum(subtotal) {
			return entry, false
		}
		amount := pricing.Percent(EligibleAmount(lines, rule), rule.Value)
		if !amount.IsPositive() {
			return entry, false
		}
		entry.Amount = amount
	case TypeFixed:
		if rule.belowMinimum(subtotal) {
			return entry, false
		}
		entry.Amount = rule.Value
	case TypeProgressive:
		tier, ok := SelectTier(rule.Conditions.Tiers, subtotal)
		if !ok {
			return entry, false
		}
		if tier.Kind == pricing.KindPercentage {
			entry.Amount = pricing.Percent(subtotal, tier.Value)
			entry.Description = fmt.Sprintf("%s (%s%%)", rule.Name, tier.Value.String())
		} else {
			entry.Amount = tier.Value
			entry.Description = fmt.Sprintf("%s (%s)", rule.Name, e.money(tier.Value))
		}
	default:
		return entry, false
	}
	return entry, true
}

func (e Engine) money(v pricing.Money) string {
	if e.Formatter == nil {
		return "$" + v.String()
	}
	return e.Formatter.Format(v)
}

// EligibleLines returns the lines a scoped rule matches. Unscoped rules match nothing.
func EligibleLines(lines []Line, rule Rule) []Line {
	var out []Line
	for _, l := range lines {
		if l.Quantity > 0 && rule.Matches(l) {
			out = append(out, l)
		}
	}
	return out
}

// EligibleQuantity sums the quantities of the lines a rule matches.
func EligibleQuantity(lines []Line, rule Rule) int {
	total := 0
	for _, l := range EligibleLines(lines, rule) {
		total += l.Quantity
	}
	return total
}

// EligibleAmount sums price x quantity over matching lines, or over every line when the
// rule is unscoped.
func EligibleAmount(lines []Line, rule Rule) pricing.Money {
	scoped := rule.Scoped()
	total := pricing.Zero
	for _, l := range lines {
		if scoped && !rule.Matches(l) {
			continue
		}
		total = total.Add(pricing.LineTotal(l.UnitPrice, l.Quantity))
	}
	return total
}

// FreeUnits returns how many units a buy-x-get-y rule discounts for the given quantity.
func FreeUnits(rule Rule, eligibleQty int) int {
	setSize := rule.Conditions.MinQuantity
	if setSize <= 0 || eligibleQty < setSize {
		return 0
	}
	return (eligibleQty / setSize) * rule.Conditions.GetQuantity
}

// BuyXGetY marks the cheapest eligible units as discounted and returns the summed
// reduction.
func BuyXGetY(lines []Line, rule Rule) pricing.Money {
	eligible := EligibleLines(lines, rule)
	qty := 0
	for _, l := range eligible {
		qty += l.Quantity
	}
	free := FreeUnits(rule, qty)
	if free <= 0 {
		return pricing.Zero
	}

	sorted := make([]Line, len(eligible))
	copy(sorted, eligible)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UnitPrice.LessThan(sorted[j].UnitPrice)
	})

	total := pricing.Zero
	marked := 0
	for _, l := range sorted {
		if marked >= free {
			break
		}
		units := l.Quantity
		if remaining := free - marked; units > remaining {
			units = remaining
		}
		total = total.Add(pricing.Percent(pricing.LineTotal(l.UnitPrice, units), rule.Value))
		marked += units
	}
	return total
}

// SelectTier picks the tier with the highest minimum not exceeding the subtotal.
func SelectTier(tiers []Tier, subtotal pricing.Money) (Tier, bool) {
	var (
		best  Tier
		found bool
	)
	for _, tier := range tiers {
		if subtotal.LessThan(tier.MinAmount) {
			continue
		}
		if !found || tier.MinAmount.GreaterThan(best.MinAmount) {
			best = tier
			found = true
		}
	}
	return best, found
}
