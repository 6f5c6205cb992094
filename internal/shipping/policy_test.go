package shipping

import (
	"testing"

	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
)

func TestCostFreeAtThreshold(t *testing.T) {
	p := Policy{FlatFee: pricing.FromInt(2500), FreeShippingEnabled: true, FreeShippingThreshold: pricing.FromInt(20000)}
	if got := p.Cost(ModeDelivery, pricing.FromInt(20000)); !got.IsZero() {
		t.Fatalf("expected free delivery at threshold, got %s", got)
	}
	if got := p.Cost(ModeDelivery, pricing.FromInt(19999)); !got.Equal(pricing.FromInt(2500)) {
		t.Fatalf("expected flat fee below threshold, got %s", got)
	}
}

func TestCostPickupIsFree(t *testing.T) {
	p := Policy{FlatFee: pricing.FromInt(2500)}
	for _, subtotal := range []int64{0, 100, 1_000_000} {
		if got := p.Cost(ModePickup, pricing.FromInt(subtotal)); !got.IsZero() {
			t.Fatalf("expected pickup to cost 0 for %d, got %s", subtotal, got)
		}
	}
}

func TestCostFreeShippingDisabled(t *testing.T) {
	p := Policy{FlatFee: pricing.FromInt(3000), FreeShippingEnabled: false, FreeShippingThreshold: pricing.FromInt(1)}
	if got := p.Cost(ModeDelivery, pricing.FromInt(50000)); !got.Equal(pricing.FromInt(3000)) {
		t.Fatalf("expected flat fee, got %s", got)
	}
	if _, ok := p.Remaining(pricing.Zero); ok {
		t.Fatalf("expected no remaining amount when free shipping is disabled")
	}
}

func TestCostUnknownModeIsDelivery(t *testing.T) {
	p := DefaultPolicy()
	if got := p.Cost(Mode("drone"), pricing.FromInt(1000)); !got.Equal(DefaultFlatFee) {
		t.Fatalf("expected flat fee for unknown mode, got %s", got)
	}
}

func TestRemaining(t *testing.T) {
	p := DefaultPolicy()
	got, ok := p.Remaining(pricing.FromInt(12500))
	if !ok || !got.Equal(pricing.FromInt(7500)) {
		t.Fatalf("expected 7500 remaining, got %s (%v)", got, ok)
	}
	if _, ok := p.Remaining(pricing.FromInt(20000)); ok {
		t.Fatalf("expected nothing remaining once threshold reached")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"pickup":    ModePickup,
		" PICKUP ":  ModePickup,
		"retiro":    ModePickup,
		"delivery":  ModeDelivery,
		"":          ModeDelivery,
		"something": ModeDelivery,
	}
	for in, want := range cases {
		if got := ParseMode(in); got != want {
			t.Fatalf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLookupModeRejectsUnknownLabels(t *testing.T) {
	for _, in := range []string{"", "drone", "pickupp"} {
		if m, ok := LookupMode(in); ok {
			t.Fatalf("LookupMode(%q) = %q, want rejection", in, m)
		}
	}
	if m, ok := LookupMode(" Despacho "); !ok || m != ModeDelivery {
		t.Fatalf("LookupMode(despacho) = %q, %v", m, ok)
	}
	if m, ok := LookupMode("Retiro"); !ok || m != ModePickup {
		t.Fatalf("LookupMode(retiro) = %q, %v", m, ok)
	}
}
