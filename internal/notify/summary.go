package notify

import (
	"fmt"
	"strings"

	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
)

// SummaryLine is one ordered product as printed in the summary.
type SummaryLine struct {
	Name     string
	Quantity int
	Total    pricing.Money
	Includes []string
	Removed  []string
	Added    []string
	// AddedCost is the surcharge for Added ingredients.
	AddedCost pricing.Money
}

// SummaryDiscount is one applied promotion.
type SummaryDiscount struct {
	Description string
	Amount      pricing.Money
}

// OrderSummary is everything the kitchen needs to read an order.
type OrderSummary struct {
	Number        string
	BusinessName  string
	CustomerName  string
	Phone         string
	Email         string
	Delivery      bool
	Address       string
	PickupAddress string
	PaymentMethod string
	Lines         []SummaryLine
	Subtotal      pricing.Money
	Discounts     []SummaryDiscount
	Shipping      pricing.Money
	Total         pricing.Money
	Notes         string
}

// Format renders the summary as a chat-friendly message.
func (s OrderSummary) Format(f pricing.Formatter) string {
	var b strings.Builder
	header := "Nuevo Pedido #" + s.Number
	if s.BusinessName != "" {
		header += " - " + s.BusinessName
	}
	fmt.Fprintf(&b, "🍕 *%s*\n\n", header)
	fmt.Fprintf(&b, "*Cliente:* %s\n", s.CustomerName)
	fmt.Fprintf(&b, "*Teléfono:* %s\n", s.Phone)
	fmt.Fprintf(&b, "*Email:* %s\n", s.Email)
	if s.Delivery {
		b.WriteString("*Método:* DELIVERY\n")
		fmt.Fprintf(&b, "*Dirección:* %s\n\n", s.Address)
	} else {
		b.WriteString("*Método:* RETIRO EN LOCAL\n")
		fmt.Fprintf(&b, "*Retiro en:* %s\n\n", s.PickupAddress)
	}
	payment := s.PaymentMethod
	if payment == "" {
		payment = "No especificado"
	}
	fmt.Fprintf(&b, "*Método de Pago:* %s\n\n", payment)

	b.WriteString("*Productos:*\n")
	for _, line := range s.Lines {
		fmt.Fprintf(&b, "• %s x%d - %s\n", line.Name, line.Quantity, f.Format(line.Total))
		if len(line.Includes) > 0 {
			b.WriteString("  _Incluye:_\n")
			for _, name := range line.Includes {
				fmt.Fprintf(&b, "    - %s\n", name)
			}
		}
		if len(line.Removed) > 0 {
			fmt.Fprintf(&b, "  ❌ Sin: %s\n", strings.Join(line.Removed, ", "))
		}
		if len(line.Added) > 0 {
			fmt.Fprintf(&b, "  ✅ Extra: %s (+%s)\n", strings.Join(line.Added, ", "), f.Format(line.AddedCost))
		}
	}

	fmt.Fprintf(&b, "\n*Subtotal:* %s\n", f.Format(s.Subtotal))
	for _, d := range s.Discounts {
		fmt.Fprintf(&b, "*Descuento (%s):* -%s\n", d.Description, f.Format(d.Amount))
	}
	if s.Shipping.IsPositive() {
		fmt.Fprintf(&b, "*Envío:* %s\n", f.Format(s.Shipping))
	}
	fmt.Fprintf(&b, "*Total:* %s\n\n", f.Format(s.Total))
	notes := strings.TrimSpace(s.Notes)
	if notes == "" {
		notes = "Sin notas"
	}
	fmt.Fprintf(&b, "*Notas:* %s", notes)
	return b.String()
}
