package woo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/noah-isme/pizzeria-storefront/internal/checkout"
	"github.com/noah-isme/pizzeria-storefront/internal/shipping"
)

const (
	defaultPaymentTitle = "Pago contra entrega"
	region              = "Santiago"
	country             = "CL"
)

// SubmitOrder creates the order and returns its number, or its id when the store
// does not expose order numbers. Submission is a single attempt.
func (c *Client) SubmitOrder(ctx context.Context, order checkout.Order) (string, error) {
	var created wireOrderCreated
	if err := c.postJSON(ctx, "create_order", c.restURL("/orders", nil), buildOrder(order), &created); err != nil {
		return "", err
	}
	if created.Number != "" {
		return string(created.Number), nil
	}
	if created.ID != "" {
		return string(created.ID), nil
	}
	return "", errors.New("woo: order created without id")
}

func buildOrder(order checkout.Order) wireOrder {
	customer := order.Customer
	mode := order.Totals.DeliveryMode
	business := order.Business
	if order.PaymentMethod == "" {
		order.PaymentMethod = "cod"
	}

	out := wireOrder{
		PaymentMethod:      order.PaymentMethod,
		PaymentMethodTitle: defaultPaymentTitle,
		Billing: wireAddress{
			FirstName: customer.Name,
			Email:     customer.Email,
			Phone:     customer.Phone,
			Address1:  "Retiro en local",
			City:      business.City,
			State:     region,
			Country:   country,
		},
		Shipping: wireAddress{
			FirstName: customer.Name,
			Address1:  business.Address,
			City:      business.City,
			State:     region,
			Country:   country,
		},
		CustomerNote: order.Notes,
		MetaData: []wireMeta{
			{Key: "_delivery_method", Value: string(mode)},
			{Key: "_order_sent_to_whatsapp", Value: "pending"},
		},
		LineItems:     []wireLineItem{},
		ShippingLines: []wireShippingLine{},
		FeeLines:      []wireFeeLine{},
	}
	if mode == shipping.ModeDelivery {
		out.Billing.Address1 = customer.Address
		out.Shipping.Address1 = customer.Address
	}
	for _, line := range order.Lines {
		item := wireLineItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Total:     line.Total().StringFixed(0),
			MetaData:  []wireMeta{},
		}
		if line.Modifications != nil {
			if encoded, err := json.Marshal(line.Modifications); err == nil {
				item.MetaData = append(item.MetaData, wireMeta{Key: "_personalization", Value: string(encoded)})
			}
		}
		if len(line.ComboSelections) > 0 {
			if encoded, err := json.Marshal(line.ComboSelections); err == nil {
				item.MetaData = append(item.MetaData, wireMeta{Key: "_combo_selections", Value: string(encoded)})
			}
		}
		out.LineItems = append(out.LineItems, item)
	}
	if mode == shipping.ModeDelivery && order.Totals.Shipping.IsPositive() {
		out.ShippingLines = append(out.ShippingLines, wireShippingLine{
			MethodID:    "flat_rate",
			MethodTitle: "Envío estándar",
			Total:       order.Totals.Shipping.StringFixed(0),
		})
	}
	for _, applied := range order.Totals.Discounts.Applied {
		out.FeeLines = append(out.FeeLines, wireFeeLine{
			Name:  applied.Description,
			Total: applied.Amount.Neg().StringFixed(0),
		})
	}
	return out
}
