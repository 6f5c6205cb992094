package cart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
)

// ErrInvalidCustomization is returned when a personalization or combo selection does
// not fit the product's schema.
var ErrInvalidCustomization = errors.New("invalid customization")

// DefaultExtraIngredientPrice is charged per added ingredient when the merchant sets none.
var DefaultExtraIngredientPrice = pricing.FromInt(1500)

// PersonalizationInput is the customer's choice for a personalizable product.
type PersonalizationInput struct {
	Size    string   `json:"size"`
	Removed []string `json:"removed"`
	Added   []string `json:"added"`
}

// ComboSelection lists the product ids picked for one combo slot.
type ComboSelection struct {
	SlotID     string   `json:"slotId"`
	ProductIDs []string `json:"productIds"`
}

// PlainItem builds a cart item for an unmodified product at its resolved price.
func PlainItem(p catalog.Product, res pricing.Resolution) Item {
	return Item{
		ProductID:     p.ID,
		Name:          p.Name,
		UnitPrice:     res.Price,
		OriginalPrice: res.OriginalPrice,
		Categories:    p.CategoryIDs(),
	}
}

// Personalize validates the input against the product's personalization schema and
// prices the result: resolved price plus size modifier plus extra ingredients.
func Personalize(p catalog.Product, res pricing.Resolution, in PersonalizationInput, extraPrice pricing.Money) (Item, error) {
	schema := p.Personalization
	if schema == nil {
		return Item{}, fmt.Errorf("product %s is not personalizable: %w", p.ID, ErrInvalidCustomization)
	}

	var size *catalog.Size
	wanted := strings.TrimSpace(in.Size)
	switch {
	case len(schema.Sizes) == 0 && wanted != "":
		return Item{}, fmt.Errorf("product %s has no sizes: %w", p.ID, ErrInvalidCustomization)
	case len(schema.Sizes) > 0 && wanted == "":
		first := schema.Sizes[0]
		size = &first
	case len(schema.Sizes) > 0:
		for _, s := range schema.Sizes {
			if strings.EqualFold(s.Name, wanted) {
				picked := s
				size = &picked
				break
			}
		}
		if size == nil {
			return Item{}, fmt.Errorf("unknown size %q: %w", wanted, ErrInvalidCustomization)
		}
	}

	removed, err := pickFrom(in.Removed, schema.BaseIngredients, "base ingredient")
	if err != nil {
		return Item{}, err
	}
	added, err := pickFrom(in.Added, schema.ExtraIngredients, "extra ingredient")
	if err != nil {
		return Item{}, err
	}

	surcharge := pricing.LineTotal(extraPrice, len(added))
	if size != nil {
		surcharge = surcharge.Add(size.PriceModifier)
	}

	item := PlainItem(p, res)
	item.UnitPrice = res.Price.Add(surcharge)
	if res.OriginalPrice != nil {
		orig := res.OriginalPrice.Add(surcharge)
		item.OriginalPrice = &orig
	}
	if size != nil {
		item.Name = fmt.Sprintf("%s (%s)", p.Name, size.Name)
	}
	item.Modifications = &Modifications{Size: size, Removed: removed, Added: added}
	return item, nil
}

// pickFrom validates that every choice is offered and drops duplicates.
func pickFrom(choices, offered []string, what string) ([]string, error) {
	if len(choices) == 0 {
		return nil, nil
	}
	allowed := make(map[string]struct{}, len(offered))
	for _, o := range offered {
		allowed[o] = struct{}{}
	}
	seen := make(map[string]struct{}, len(choices))
	out := make([]string, 0, len(choices))
	for _, c := range choices {
		if _, ok := allowed[c]; !ok {
			return nil, fmt.Errorf("unknown %s %q: %w", what, c, ErrInvalidCustomization)
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// ComposeCombo validates slot selections against the combo schema. The combo keeps its
// own resolved price; picked products only describe its contents.
func ComposeCombo(p catalog.Product, res pricing.Resolution, picks []ComboSelection, cat *catalog.Catalog) (Item, error) {
	if p.Combo == nil || len(p.Combo.Slots) == 0 {
		return Item{}, fmt.Errorf("product %s is not a combo: %w", p.ID, ErrInvalidCustomization)
	}
	bySlot := make(map[string][]string, len(picks))
	for _, pick := range picks {
		if _, dup := bySlot[pick.SlotID]; dup {
			return Item{}, fmt.Errorf("slot %q selected twice: %w", pick.SlotID, ErrInvalidCustomization)
		}
		bySlot[pick.SlotID] = pick.ProductIDs
	}

	selections := make([]ComboPick, 0, len(p.Combo.Slots))
	for _, slot := range p.Combo.Slots {
		ids := bySlot[slot.CategoryID]
		delete(bySlot, slot.CategoryID)
		if len(ids) < slot.MinSelection || len(ids) > slot.MaxSelection {
			return Item{}, fmt.Errorf("slot %q needs between %d and %d selections, got %d: %w",
				slot.Name, slot.MinSelection, slot.MaxSelection, len(ids), ErrInvalidCustomization)
		}
		pick := ComboPick{SlotID: slot.CategoryID, SlotName: slot.Name}
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				return Item{}, fmt.Errorf("product %s picked twice in slot %q: %w", id, slot.Name, ErrInvalidCustomization)
			}
			seen[id] = struct{}{}
			member, ok := cat.Product(id)
			if !ok || !member.InCategory(slot.CategoryID) {
				return Item{}, fmt.Errorf("product %s is not offered in slot %q: %w", id, slot.Name, ErrInvalidCustomization)
			}
			pick.Items = append(pick.Items, ComboItem{ProductID: member.ID, Name: member.Name})
		}
		if len(pick.Items) > 0 {
			selections = append(selections, pick)
		}
	}
	for slotID := range bySlot {
		return Item{}, fmt.Errorf("unknown combo slot %q: %w", slotID, ErrInvalidCustomization)
	}

	item := PlainItem(p, res)
	item.ComboSelections = selections
	return item, nil
}
