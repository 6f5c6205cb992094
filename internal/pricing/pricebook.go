package pricing

import (
	"strconv"
	"strings"
	"time"
)

// Kind enumerates how a reduction is expressed.
type Kind string

const (
	// KindPercentage reduces by a percentage of the price.
	KindPercentage Kind = "percentage"
	// KindFixed reduces by a flat amount.
	KindFixed Kind = "fixed"
)

// ParseKind normalises an upstream kind string. Unknown kinds report ok=false.
func ParseKind(raw string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindPercentage:
		return KindPercentage, true
	case KindFixed:
		return KindFixed, true
	default:
		return "", false
	}
}

// HappyHour describes a daily time-of-day window with an automatic category discount.
type HappyHour struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Kind    Kind   `json:"kind"`
	Value   Money  `json:"value"`
}

// CategoryWindow pairs a category with its optional happy hour.
type CategoryWindow struct {
	ID        string
	Name      string
	HappyHour *HappyHour
}

// HappyHourInfo describes the happy hour that produced a resolved price.
type HappyHourInfo struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Kind         Kind   `json:"kind"`
	Value        Money  `json:"value"`
}

// Resolution is the effective price of a product at a given instant.
type Resolution struct {
	Price         Money          `json:"price"`
	OriginalPrice *Money         `json:"originalPrice,omitempty"`
	HappyHour     *HappyHourInfo `json:"happyHour,omitempty"`
}

// PriceBook resolves effective unit prices against happy-hour windows evaluated in the
// store's local wall-clock time.
type PriceBook struct {
	Location *time.Location
}

// Resolve returns the effective price for a product with the given base price and
// category ids (in declaration order). Only the first category with an active window
// is applied.
func (b PriceBook) Resolve(base Money, categoryIDs []string, windows map[string]CategoryWindow, now time.Time) Resolution {
	minute := b.minuteOfDay(now)
	for _, id := range categoryIDs {
		w, ok := windows[id]
		if !ok || !w.HappyHour.activeAt(minute) {
			continue
		}
		hh := w.HappyHour
		var discounted Money
		switch hh.Kind {
		case KindPercentage:
			discounted = base.Mul(hundred.Sub(hh.Value)).Div(hundred)
		case KindFixed:
			discounted = NonNegative(base.Sub(hh.Value))
		}
		original := base
		return Resolution{
			Price:         discounted.Round(0),
			OriginalPrice: &original,
			HappyHour: &HappyHourInfo{
				CategoryID:   w.ID,
				CategoryName: w.Name,
				Kind:         hh.Kind,
				Value:        hh.Value,
			},
		}
	}
	return Resolution{Price: base}
}

// Active reports whether the category window is active at now.
func (b PriceBook) Active(w CategoryWindow, now time.Time) bool {
	return w.HappyHour.activeAt(b.minuteOfDay(now))
}

func (b PriceBook) minuteOfDay(now time.Time) int {
	if b.Location != nil {
		now = now.In(b.Location)
	}
	return now.Hour()*60 + now.Minute()
}

// Valid reports whether the happy hour is well formed. Malformed happy hours are never
// active.
func (h *HappyHour) Valid() bool {
	if h == nil {
		return false
	}
	if _, ok := ParseClock(h.Start); !ok {
		return false
	}
	if _, ok := ParseClock(h.End); !ok {
		return false
	}
	if h.Kind != KindPercentage && h.Kind != KindFixed {
		return false
	}
	if h.Value.IsNegative() {
		return false
	}
	return !(h.Kind == KindPercentage && h.Value.GreaterThan(hundred))
}

func (h *HappyHour) activeAt(minute int) bool {
	if h == nil || !h.Enabled || !h.Valid() {
		return false
	}
	start, _ := ParseClock(h.Start)
	end, _ := ParseClock(h.End)
	return minute >= start && minute <= end
}

// ParseClock converts an "HH:MM" wall-clock string into minutes after midnight.
func ParseClock(raw string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 || len(parts[1]) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 {
		return 0, false
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return 0, false
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}
