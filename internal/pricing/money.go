package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money represents a monetary value in the catalog's currency unit.
type Money = decimal.Decimal

var (
	// Zero is the additive identity for Money.
	Zero = decimal.Zero

	hundred = decimal.NewFromInt(100)
)

// FromInt builds a Money value from whole currency units.
func FromInt(v int64) Money {
	return decimal.NewFromInt(v)
}

// Parse converts an upstream price string into Money. Empty or malformed input yields
// ok=false so callers can treat the value as absent.
func Parse(raw string) (Money, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Zero, false
	}
	v, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Zero, false
	}
	return v, true
}

// Percent returns amount * pct / 100.
func Percent(amount, pct Money) Money {
	return amount.Mul(pct).Div(hundred)
}

// NonNegative floors v at zero.
func NonNegative(v Money) Money {
	if v.IsNegative() {
		return Zero
	}
	return v
}

// LineTotal multiplies a unit price by a quantity.
func LineTotal(unit Money, qty int) Money {
	if qty <= 0 {
		return Zero
	}
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}

// Formatter renders money for human-readable summaries.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter builds a formatter for the given BCP 47 locale. Unknown locales fall back
// to Latin American Spanish.
func NewFormatter(locale, symbol string) Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.LatinAmericanSpanish
	}
	if symbol == "" {
		symbol = "$"
	}
	return Formatter{printer: message.NewPrinter(tag), symbol: symbol}
}

// Format renders the amount rounded to whole units with locale digit grouping.
func (f Formatter) Format(m Money) string {
	p := f.printer
	if p == nil {
		p = message.NewPrinter(language.LatinAmericanSpanish)
	}
	symbol := f.symbol
	if symbol == "" {
		symbol = "$"
	}
	whole := m.Round(0).IntPart()
	if whole < 0 {
		return "-" + symbol + p.Sprintf("%d", -whole)
	}
	return symbol + p.Sprintf("%d", whole)
}

// Must parses a decimal literal and panics on malformed input. Intended for constants
// and tests.
func Must(raw string) Money {
	return decimal.RequireFromString(raw)
}
