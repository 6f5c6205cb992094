package woo

import (
	"context"
	"fmt"
	"net/url"

	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
	"github.com/noah-isme/pizzeria-storefront/internal/discount"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
	"github.com/noah-isme/pizzeria-storefront/internal/session"
)

// FetchCategories returns product categories in upstream order.
func (c *Client) FetchCategories(ctx context.Context) ([]catalog.Category, error) {
	var raw []CategoryPayload
	if err := c.getJSON(ctx, "categories", c.restURL("/products/categories", url.Values{"per_page": {pageSize}}), true, &raw); err != nil {
		return nil, err
	}
	out := make([]catalog.Category, 0, len(raw))
	for _, w := range raw {
		out = append(out, MapCategory(w))
	}
	return out, nil
}

// FetchProducts returns published products.
func (c *Client) FetchProducts(ctx context.Context) ([]catalog.Product, error) {
	var raw []ProductPayload
	query := url.Values{"per_page": {pageSize}, "status": {"publish"}}
	if err := c.getJSON(ctx, "products", c.restURL("/products", query), true, &raw); err != nil {
		return nil, err
	}
	out := make([]catalog.Product, 0, len(raw))
	for _, w := range raw {
		out = append(out, MapProduct(w))
	}
	return out, nil
}

// FetchMerchantConfig returns the plugin's happy hours, product schemas and settings.
func (c *Client) FetchMerchantConfig(ctx context.Context) (session.MerchantConfig, error) {
	var raw wireMerchantConfig
	if err := c.getJSON(ctx, "merchant_config", c.pluginURL("/config"), false, &raw); err != nil {
		return session.MerchantConfig{}, err
	}
	return mapMerchantConfig(raw), nil
}

// FetchDiscountRules returns the merchant's promotions in declaration order.
func (c *Client) FetchDiscountRules(ctx context.Context) ([]discount.Rule, error) {
	var raw []RulePayload
	if err := c.getJSON(ctx, "discount_rules", c.pluginURL("/discounts"), false, &raw); err != nil {
		return nil, err
	}
	out := make([]discount.Rule, 0, len(raw))
	for _, w := range raw {
		out = append(out, MapRule(w))
	}
	return out, nil
}

// FetchShippingInfo walks the shipping zones and reports the first enabled flat rate
// cost and free shipping minimum.
func (c *Client) FetchShippingInfo(ctx context.Context) (session.ShippingInfo, error) {
	var zones []wireZone
	if err := c.getJSON(ctx, "shipping_zones", c.restURL("/shipping/zones", nil), true, &zones); err != nil {
		return session.ShippingInfo{}, err
	}
	var info session.ShippingInfo
	for _, zone := range zones {
		var methods []wireShippingMethod
		path := fmt.Sprintf("/shipping/zones/%s/methods", url.PathEscape(string(zone.ID)))
		if err := c.getJSON(ctx, "shipping_methods", c.restURL(path, nil), true, &methods); err != nil {
			return session.ShippingInfo{}, err
		}
		for _, m := range methods {
			if !m.Enabled {
				continue
			}
			switch m.MethodID {
			case "flat_rate":
				if info.FlatFee == nil {
					info.FlatFee = settingAmount(m.Settings, "cost")
				}
			case "free_shipping":
				if info.FreeShippingThreshold == nil {
					info.FreeShippingThreshold = settingAmount(m.Settings, "min_amount")
				}
			}
		}
	}
	return info, nil
}

func settingAmount(settings map[string]wireSetting, key string) *pricing.Money {
	s, ok := settings[key]
	if !ok {
		return nil
	}
	v, ok := pricing.Parse(cleanNumber(s.Value))
	if !ok || !v.IsPositive() {
		return nil
	}
	return &v
}

// FetchPaymentMethods returns the enabled payment gateways.
func (c *Client) FetchPaymentMethods(ctx context.Context) ([]session.PaymentMethod, error) {
	var raw []wireGateway
	if err := c.getJSON(ctx, "payment_gateways", c.restURL("/payment_gateways", nil), true, &raw); err != nil {
		return nil, err
	}
	var out []session.PaymentMethod
	for _, g := range raw {
		if g.Enabled {
			out = append(out, session.PaymentMethod{ID: g.ID, Title: g.Title})
		}
	}
	return out, nil
}
