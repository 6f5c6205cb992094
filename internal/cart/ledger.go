package cart

import (
	"time"

	"github.com/noah-isme/pizzeria-storefront/internal/discount"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
)

// Ledger holds the ordered lines of one session's cart. It is not safe for concurrent use.
type Ledger struct {
	lines []Line
}

// NewLedger restores a ledger from persisted lines. Lines with a non-positive quantity
// are dropped.
func NewLedger(lines []Line) *Ledger {
	l := &Ledger{}
	for _, line := range lines {
		if line.Quantity > 0 {
			l.lines = append(l.lines, line)
		}
	}
	return l
}

// Add increments the line matching the item's identity or appends a new line with
// quantity 1. It returns the resulting line.
func (l *Ledger) Add(item Item, now time.Time) Line {
	key := item.Key()
	if i := l.index(key); i >= 0 {
		l.lines[i].Quantity++
		return l.lines[i]
	}
	line := item.snapshot(now)
	l.lines = append(l.lines, line)
	return line
}

// Remove deletes the line with the given key. It reports whether a line was removed.
func (l *Ledger) Remove(key string) bool {
	i := l.index(key)
	if i < 0 {
		return false
	}
	l.lines = append(l.lines[:i], l.lines[i+1:]...)
	return true
}

// SetQuantity replaces a line's quantity, keeping its captured price. Non-positive
// quantities remove the line. It reports whether the key was found.
func (l *Ledger) SetQuantity(key string, qty int) bool {
	i := l.index(key)
	if i < 0 {
		return false
	}
	if qty <= 0 {
		l.lines = append(l.lines[:i], l.lines[i+1:]...)
		return true
	}
	l.lines[i].Quantity = qty
	return true
}

// Subtotal is the sum of unit price times quantity over every line.
func (l *Ledger) Subtotal() pricing.Money {
	total := pricing.Zero
	for _, line := range l.lines {
		total = total.Add(line.Total())
	}
	return total
}

// ItemCount is the sum of quantities.
func (l *Ledger) ItemCount() int {
	count := 0
	for _, line := range l.lines {
		count += line.Quantity
	}
	return count
}

// Lines returns a copy of the lines in insertion order.
func (l *Ledger) Lines() []Line {
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// Line returns the line with the given key.
func (l *Ledger) Line(key string) (Line, bool) {
	if i := l.index(key); i >= 0 {
		return l.lines[i], true
	}
	return Line{}, false
}

// DiscountLines adapts every line for rule evaluation.
func (l *Ledger) DiscountLines() []discount.Line {
	out := make([]discount.Line, 0, len(l.lines))
	for _, line := range l.lines {
		out = append(out, line.DiscountLine())
	}
	return out
}

// Empty reports whether the ledger has no lines.
func (l *Ledger) Empty() bool { return len(l.lines) == 0 }

// Clear drops every line.
func (l *Ledger) Clear() { l.lines = nil }

func (l *Ledger) index(key string) int {
	for i := range l.lines {
		if l.lines[i].Key == key {
			return i
		}
	}
	return -1
}
