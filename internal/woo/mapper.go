package woo

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
	"github.com/noah-isme/pizzeria-storefront/internal/discount"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
	"github.com/noah-isme/pizzeria-storefront/internal/session"
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

const descriptionLimit = 150

// MapCategory normalises an upstream category.
func MapCategory(w CategoryPayload) catalog.Category {
	return catalog.Category{ID: string(w.ID), Name: w.Name, Count: w.Count}
}

// MapProduct normalises an upstream product. Prices arrive as strings; a malformed
// price maps to zero and optional prices to nil.
func MapProduct(w ProductPayload) catalog.Product {
	price, _ := pricing.Parse(w.Price)
	p := catalog.Product{
		ID:          string(w.ID),
		Name:        w.Name,
		Description: describe(w.ShortDescription, w.Description),
		Price:       price,
		StockStatus: catalog.InStock,
		Featured:    w.Featured,
	}
	if v, ok := pricing.Parse(w.RegularPrice); ok {
		p.RegularPrice = &v
	}
	if v, ok := pricing.Parse(w.SalePrice); ok {
		p.SalePrice = &v
	}
	if catalog.StockStatus(w.StockStatus) == catalog.OutOfStock {
		p.StockStatus = catalog.OutOfStock
	}
	for _, c := range w.Categories {
		p.Categories = append(p.Categories, catalog.CategoryRef{ID: string(c.ID), Name: c.Name})
	}
	for _, img := range w.Images {
		if img.Src != "" {
			p.Images = append(p.Images, img.Src)
		}
	}
	return p
}

func describe(short, long string) string {
	if s := strings.TrimSpace(htmlTag.ReplaceAllString(short, "")); s != "" {
		return s
	}
	s := strings.TrimSpace(htmlTag.ReplaceAllString(long, ""))
	if s == "" {
		return ""
	}
	if utf8.RuneCountInString(s) > descriptionLimit {
		s = string([]rune(s)[:descriptionLimit])
	}
	return s + "..."
}

// MapHappyHour normalises a happy-hour window. Disabled or malformed windows report
// ok=false.
func MapHappyHour(w HappyHourPayload) (*pricing.HappyHour, bool) {
	kind, ok := pricing.ParseKind(w.Type)
	if !ok || !bool(w.Enabled) || !w.Value.valid {
		return nil, false
	}
	hh := &pricing.HappyHour{
		Enabled: true,
		Start:   strings.TrimSpace(w.Start),
		End:     strings.TrimSpace(w.End),
		Kind:    kind,
		Value:   w.Value.value,
	}
	if !hh.Valid() {
		return nil, false
	}
	return hh, true
}

// MapRule normalises a discount rule. Shape problems surface later through
// discount.Rule.Validate.
func MapRule(w RulePayload) discount.Rule {
	r := discount.Rule{
		ID:      string(w.ID),
		Name:    w.Name,
		Enabled: bool(w.Enabled),
		Type:    discount.Type(strings.TrimSpace(w.Type)),
		Conditions: discount.Conditions{
			Categories:  w.Conditions.Categories.strings(),
			Products:    w.Conditions.Products.strings(),
			MinQuantity: w.Conditions.MinQuantity,
			GetQuantity: w.Conditions.GetQuantity,
			MinAmount:   w.Conditions.MinAmount.ptr(),
		},
		Value: w.Value.value,
	}
	for _, t := range w.Conditions.Tiers {
		kind, ok := pricing.ParseKind(t.Type)
		if !ok {
			kind = pricing.Kind(t.Type)
		}
		r.Conditions.Tiers = append(r.Conditions.Tiers, discount.Tier{
			MinAmount: t.MinAmount.value,
			Kind:      kind,
			Value:     t.Value.value,
		})
	}
	return r
}

func mapMerchantConfig(w wireMerchantConfig) session.MerchantConfig {
	out := session.MerchantConfig{
		HappyHours:      map[string]*pricing.HappyHour{},
		Personalization: map[string]*catalog.Personalization{},
		Combos:          map[string]*catalog.Combo{},
	}
	for categoryID, cfg := range w.Categories {
		if cfg.HappyHour == nil {
			continue
		}
		if hh, ok := MapHappyHour(*cfg.HappyHour); ok {
			out.HappyHours[categoryID] = hh
		}
	}
	for productID, cfg := range w.Products {
		if cfg.IsPersonalizable {
			out.Personalization[productID] = mapPersonalization(cfg)
		}
		if cfg.IsCombo && len(cfg.ComboConfig) > 0 {
			out.Combos[productID] = mapCombo(cfg.ComboConfig)
		}
	}
	if s := w.Settings; s != nil {
		out.ExtraIngredientPrice = s.ExtraIngredientPrice.ptr()
		out.FreeShippingAmount = s.FreeShippingAmount.ptr()
		if s.FreeShippingEnabled != nil {
			enabled := bool(*s.FreeShippingEnabled)
			out.FreeShippingEnabled = &enabled
		}
	}
	return out
}

func mapPersonalization(cfg wireProductConfig) *catalog.Personalization {
	p := &catalog.Personalization{}
	for _, s := range cfg.Sizes {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		modifier := s.PriceModifier
		if !modifier.valid {
			modifier = s.Price
		}
		p.Sizes = append(p.Sizes, catalog.Size{Name: name, PriceModifier: modifier.value})
	}
	if cfg.Ingredients != nil {
		p.BaseIngredients = append(p.BaseIngredients, cfg.Ingredients.Base...)
		p.ExtraIngredients = append(p.ExtraIngredients, cfg.Ingredients.Extras...)
	}
	return p
}

func mapCombo(slots map[string]wireComboSlot) *catalog.Combo {
	keys := make([]string, 0, len(slots))
	for k := range slots {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	combo := &catalog.Combo{}
	for _, k := range keys {
		s := slots[k]
		name := strings.TrimSpace(s.Name)
		if name == "" {
			name = k
		}
		combo.Slots = append(combo.Slots, catalog.ComboSlot{
			CategoryID:   k,
			Name:         name,
			MinSelection: s.MinSelection,
			MaxSelection: s.MaxSelection,
		})
	}
	return combo
}
