package cart

import (
	"testing"
	"time"

	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
)

var addedAt = time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)

func plain(id string, price int64, categories ...string) Item {
	return Item{ProductID: id, Name: "Product " + id, UnitPrice: pricing.FromInt(price), Categories: categories}
}

func TestAddMergesByIdentity(t *testing.T) {
	l := NewLedger(nil)
	l.Add(plain("1", 8000, "5"), addedAt)
	line := l.Add(plain("1", 8000, "5"), addedAt)
	l.Add(plain("2", 3000), addedAt)

	if line.Quantity != 2 || line.Key != "1" {
		t.Fatalf("expected merged line with quantity 2, got %+v", line)
	}
	if len(l.Lines()) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(l.Lines()))
	}
	if !l.Subtotal().Equal(pricing.FromInt(19000)) {
		t.Fatalf("expected subtotal 19000, got %s", l.Subtotal())
	}
	if l.ItemCount() != 3 {
		t.Fatalf("expected 3 items, got %d", l.ItemCount())
	}
}

func TestAddKeepsPriceSnapshot(t *testing.T) {
	l := NewLedger(nil)
	l.Add(plain("1", 8000), addedAt)
	// A later add at a different live price increments the captured line.
	line := l.Add(plain("1", 6400), addedAt.Add(time.Hour))
	if !line.UnitPrice.Equal(pricing.FromInt(8000)) {
		t.Fatalf("expected captured price 8000, got %s", line.UnitPrice)
	}
	if !line.AddedAt.Equal(addedAt) {
		t.Fatalf("expected original timestamp, got %s", line.AddedAt)
	}
}

func TestPersonalizedItemsDoNotMerge(t *testing.T) {
	large := catalog.Size{Name: "Familiar", PriceModifier: pricing.FromInt(4000)}
	a := plain("1", 8000)
	a.Modifications = &Modifications{Size: &large, Added: []string{"Aceitunas", "Choclo"}}
	b := plain("1", 8000)
	b.Modifications = &Modifications{Size: &large, Added: []string{"Choclo", "Aceitunas"}}
	c := plain("1", 8000)
	c.Modifications = &Modifications{Size: &large, Removed: []string{"Cebolla"}}

	if a.Key() != b.Key() {
		t.Fatalf("expected ingredient order not to matter: %s vs %s", a.Key(), b.Key())
	}
	if a.Key() == c.Key() || a.Key() == "1" {
		t.Fatalf("expected distinct keys, got %s and %s", a.Key(), c.Key())
	}

	l := NewLedger(nil)
	l.Add(plain("1", 8000), addedAt)
	l.Add(a, addedAt)
	l.Add(b, addedAt)
	l.Add(c, addedAt)
	if len(l.Lines()) != 3 {
		t.Fatalf("expected 3 distinct lines, got %d", len(l.Lines()))
	}
}

func TestSnapshotIsDetachedFromItem(t *testing.T) {
	item := plain("1", 8000, "5")
	l := NewLedger(nil)
	l.Add(item, addedAt)
	item.Categories[0] = "changed"
	if got := l.Lines()[0].Categories[0]; got != "5" {
		t.Fatalf("expected snapshot categories to be copied, got %q", got)
	}
}

func TestSetQuantity(t *testing.T) {
	l := NewLedger(nil)
	l.Add(plain("1", 1000), addedAt)
	l.Add(plain("2", 2000), addedAt)

	if !l.SetQuantity("1", 4) {
		t.Fatalf("expected line 1 to exist")
	}
	if line, _ := l.Line("1"); line.Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", line.Quantity)
	}
	if !l.SetQuantity("2", 0) {
		t.Fatalf("expected line 2 to exist")
	}
	if _, ok := l.Line("2"); ok {
		t.Fatalf("expected zero quantity to remove the line")
	}
	if !l.SetQuantity("1", -3) || !l.Empty() {
		t.Fatalf("expected negative quantity to remove the line")
	}
	if l.SetQuantity("missing", 1) {
		t.Fatalf("expected unknown key to report false")
	}
}

func TestRemoveAndClear(t *testing.T) {
	l := NewLedger(nil)
	l.Add(plain("1", 1000), addedAt)
	l.Add(plain("2", 2000), addedAt)
	if !l.Remove("1") || l.Remove("1") {
		t.Fatalf("expected remove to succeed once")
	}
	l.Clear()
	if !l.Empty() || !l.Subtotal().IsZero() || l.ItemCount() != 0 {
		t.Fatalf("expected empty ledger after clear")
	}
}

func TestNewLedgerDropsEmptyLines(t *testing.T) {
	l := NewLedger([]Line{{Key: "1", Quantity: 0}, {Key: "2", Quantity: 2, UnitPrice: pricing.FromInt(10)}})
	if len(l.Lines()) != 1 || !l.Subtotal().Equal(pricing.FromInt(20)) {
		t.Fatalf("unexpected ledger %+v", l.Lines())
	}
}

func TestDiscountLines(t *testing.T) {
	l := NewLedger(nil)
	l.Add(plain("1", 1000, "5", "6"), addedAt)
	got := l.DiscountLines()
	if len(got) != 1 || got[0].ProductID != "1" || got[0].Quantity != 1 || len(got[0].Categories) != 2 {
		t.Fatalf("unexpected discount lines %+v", got)
	}
}
