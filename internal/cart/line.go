package cart

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
	"github.com/noah-isme/pizzeria-storefront/internal/discount"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
)

// Modifications records how a personalizable product was customised.
type Modifications struct {
	Size    *catalog.Size `json:"size,omitempty"`
	Removed []string      `json:"removed,omitempty"`
	Added   []string      `json:"added,omitempty"`
}

// ComboItem is one product picked for a combo slot.
type ComboItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
}

// ComboPick lists the products chosen for a combo slot.
type ComboPick struct {
	SlotID   string      `json:"slotId"`
	SlotName string      `json:"slotName"`
	Items    []ComboItem `json:"items"`
}

// Item is a priced product ready to be placed in a cart.
type Item struct {
	ProductID       string
	Name            string
	UnitPrice       pricing.Money
	OriginalPrice   *pricing.Money
	Categories      []string
	Modifications   *Modifications
	ComboSelections []ComboPick
}

// Line is a cart entry. Price, name and categories are captured when the line is created
// and never recalculated from the live catalog.
type Line struct {
	Key             string         `json:"key"`
	ProductID       string         `json:"productId"`
	Name            string         `json:"name"`
	UnitPrice       pricing.Money  `json:"unitPrice"`
	OriginalPrice   *pricing.Money `json:"originalPrice,omitempty"`
	Categories      []string       `json:"categories"`
	Quantity        int            `json:"quantity"`
	Modifications   *Modifications `json:"modifications,omitempty"`
	ComboSelections []ComboPick    `json:"comboSelections,omitempty"`
	AddedAt         time.Time      `json:"addedAt"`
}

// Total is the line's unit price times its quantity.
func (l Line) Total() pricing.Money {
	return pricing.LineTotal(l.UnitPrice, l.Quantity)
}

// DiscountLine adapts the line for rule evaluation.
func (l Line) DiscountLine() discount.Line {
	return discount.Line{
		ProductID:  l.ProductID,
		Categories: l.Categories,
		UnitPrice:  l.UnitPrice,
		Quantity:   l.Quantity,
	}
}

// Key returns the identity key of the item. Plain products are keyed by product id;
// customised ones carry a digest of their canonical customisation so differently
// customised instances never merge.
func (it Item) Key() string {
	sig := it.signature()
	if sig == "" {
		return it.ProductID
	}
	sum := sha256.Sum256([]byte(sig))
	return it.ProductID + "~" + hex.EncodeToString(sum[:])[:12]
}

func (it Item) signature() string {
	var parts []string
	if m := it.Modifications; m != nil {
		if m.Size != nil {
			parts = append(parts, "size="+m.Size.Name)
		}
		if len(m.Removed) > 0 {
			parts = append(parts, "removed="+joinSorted(m.Removed))
		}
		if len(m.Added) > 0 {
			parts = append(parts, "added="+joinSorted(m.Added))
		}
	}
	if len(it.ComboSelections) > 0 {
		slots := make([]string, 0, len(it.ComboSelections))
		for _, pick := range it.ComboSelections {
			ids := make([]string, 0, len(pick.Items))
			for _, item := range pick.Items {
				ids = append(ids, item.ProductID)
			}
			slots = append(slots, pick.SlotID+":"+joinSorted(ids))
		}
		sort.Strings(slots)
		parts = append(parts, "combo="+strings.Join(slots, "|"))
	}
	return strings.Join(parts, ";")
}

func joinSorted(values []string) string {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func (it Item) snapshot(now time.Time) Line {
	line := Line{
		Key:        it.Key(),
		ProductID:  it.ProductID,
		Name:       it.Name,
		UnitPrice:  it.UnitPrice,
		Categories: append([]string(nil), it.Categories...),
		Quantity:   1,
		AddedAt:    now,
	}
	if it.OriginalPrice != nil {
		orig := *it.OriginalPrice
		line.OriginalPrice = &orig
	}
	if m := it.Modifications; m != nil {
		copied := Modifications{
			Removed: append([]string(nil), m.Removed...),
			Added:   append([]string(nil), m.Added...),
		}
		if m.Size != nil {
			size := *m.Size
			copied.Size = &size
		}
		line.Modifications = &copied
	}
	for _, pick := range it.ComboSelections {
		line.ComboSelections = append(line.ComboSelections, ComboPick{
			SlotID:   pick.SlotID,
			SlotName: pick.SlotName,
			Items:    append([]ComboItem(nil), pick.Items...),
		})
	}
	return line
}
