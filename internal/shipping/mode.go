package shipping

import "strings"

// Mode is how an order reaches the customer.
type Mode string

const (
	ModeDelivery Mode = "delivery"
	ModePickup   Mode = "pickup"
)

// LookupMode resolves a customer-supplied delivery mode label.
func LookupMode(raw string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "delivery", "despacho", "envio", "envío", "domicilio":
		return ModeDelivery, true
	case "pickup", "pick-up", "pick_up", "retiro", "local":
		return ModePickup, true
	}
	return "", false
}

// ParseMode reads a stored mode. Anything unrecognised is treated as delivery.
func ParseMode(raw string) Mode {
	if m, ok := LookupMode(raw); ok {
		return m
	}
	return ModeDelivery
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModeDelivery || m == ModePickup
}
