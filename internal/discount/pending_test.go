package discount

import (
	"testing"

	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
)

func TestFindPendingQuantityShortfall(t *testing.T) {
	rule := Rule{
		ID: "r1", Name: "3x2", Enabled: true, Type: TypeBuyXGetY,
		Conditions: Conditions{Categories: []string{"5", "6"}, MinQuantity: 3, GetQuantity: 1},
		Value:      money(100),
	}
	cases := []struct {
		qty   int
		want  bool
		short int64
	}{
		{qty: 0, want: false},
		{qty: 1, want: true, short: 2},
		{qty: 2, want: true, short: 1},
		{qty: 3, want: false},
	}
	for _, tc := range cases {
		var lines []Line
		if tc.qty > 0 {
			lines = []Line{{ProductID: "p1", Categories: []string{"6"}, UnitPrice: money(5000), Quantity: tc.qty}}
		}
		got := Advisor{}.FindPending(lines, []Rule{rule}, money(0))
		if !tc.want {
			if len(got) != 0 {
				t.Fatalf("qty %d: expected no hint, got %+v", tc.qty, got)
			}
			continue
		}
		if len(got) != 1 || got[0].Type != PendingQuantity || !got[0].Needed.Equal(money(tc.short)) {
			t.Fatalf("qty %d: unexpected pending %+v", tc.qty, got)
		}
		if got[0].SuggestedCategory != "5" {
			t.Fatalf("expected first rule category, got %q", got[0].SuggestedCategory)
		}
	}
}

func TestFindPendingAmountThreshold(t *testing.T) {
	rule := Rule{
		ID: "r2", Enabled: true, Type: TypePercentage,
		Conditions: Conditions{MinAmount: moneyPtr(20000)},
		Value:      money(10),
	}
	got := Advisor{}.FindPending(nil, []Rule{rule}, money(15000))
	if len(got) != 1 || got[0].Type != PendingAmount || !got[0].Needed.Equal(money(5000)) {
		t.Fatalf("unexpected pending %+v", got)
	}
	if got[0].Description != "Agrega $5000 más para 10% de descuento" {
		t.Fatalf("unexpected description %q", got[0].Description)
	}

	if got := (Advisor{}).FindPending(nil, []Rule{rule}, money(10000)); len(got) != 0 {
		t.Fatalf("expected shortfall of exactly the threshold to be hidden, got %+v", got)
	}
	if got := (Advisor{AmountThreshold: money(15000)}).FindPending(nil, []Rule{rule}, money(10000)); len(got) != 1 {
		t.Fatalf("expected configured threshold to widen the window")
	}
	if got := (Advisor{}).FindPending(nil, []Rule{rule}, money(20000)); len(got) != 0 {
		t.Fatalf("expected no hint once qualified")
	}
}

func TestFindPendingKeepsDeclarationOrder(t *testing.T) {
	rules := []Rule{
		{ID: "a", Enabled: true, Type: TypePercentage, Value: money(5), Conditions: Conditions{MinAmount: moneyPtr(12000)}},
		{ID: "off", Enabled: false, Type: TypePercentage, Value: money(5), Conditions: Conditions{MinAmount: moneyPtr(12000)}},
		{ID: "b", Enabled: true, Type: TypeBuyXGetY, Value: money(100),
			Conditions: Conditions{Products: []string{"p1"}, MinQuantity: 2, GetQuantity: 1}},
		{ID: "c", Enabled: true, Type: TypePercentage, Value: money(5), Conditions: Conditions{MinAmount: moneyPtr(12000)}},
	}
	lines := []Line{{ProductID: "p1", UnitPrice: money(10000), Quantity: 1}}
	got := Advisor{}.FindPending(lines, rules, money(10000))
	if len(got) != 3 || got[0].Rule.ID != "a" || got[1].Rule.ID != "b" || got[2].Rule.ID != "c" {
		t.Fatalf("unexpected order %+v", got)
	}
	if got[1].SuggestedCategory != "" {
		t.Fatalf("expected no suggested category for product-scoped rule")
	}
}

func TestSuggestPicksAvailableProducts(t *testing.T) {
	pending := []Pending{{Type: PendingQuantity, Rule: Rule{ID: "r1"}, SuggestedCategory: "5"}}
	products := []catalog.Product{
		{ID: "1", Categories: []catalog.CategoryRef{{ID: "5"}}, StockStatus: catalog.OutOfStock},
		{ID: "2", Categories: []catalog.CategoryRef{{ID: "5"}}, StockStatus: catalog.InStock},
		{ID: "3", Categories: []catalog.CategoryRef{{ID: "7"}}, StockStatus: catalog.InStock},
		{ID: "4", Categories: []catalog.CategoryRef{{ID: "5"}}, StockStatus: catalog.InStock},
		{ID: "5", Categories: []catalog.CategoryRef{{ID: "5"}}, StockStatus: catalog.InStock},
	}
	got := Suggest(pending, products, 2)
	picks := got["r1"]
	if len(picks) != 2 || picks[0].ID != "2" || picks[1].ID != "4" {
		t.Fatalf("unexpected suggestions %+v", picks)
	}
}
