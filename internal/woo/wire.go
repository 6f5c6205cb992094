package woo

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// id accepts both numeric and string identifiers.
type id string

func (v *id) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = id(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = id(n.String())
	return nil
}

// ids accepts a list of numeric or string identifiers.
type ids []id

func (v ids) strings() []string {
	if len(v) == 0 {
		return nil
	}
	out := make([]string, 0, len(v))
	for _, s := range v {
		if s != "" {
			out = append(out, string(s))
		}
	}
	return out
}

// amount accepts numbers, numeric strings, empty strings and null.
type amount struct {
	value decimal.Decimal
	valid bool
}

func (a *amount) UnmarshalJSON(data []byte) error {
	*a = amount{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := decimal.NewFromString(cleanNumber(s)); err == nil {
			*a = amount{value: v, valid: true}
		}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	if v, err := decimal.NewFromString(n.String()); err == nil {
		*a = amount{value: v, valid: true}
	}
	return nil
}

func (a amount) ptr() *decimal.Decimal {
	if !a.valid {
		return nil
	}
	v := a.value
	return &v
}

// cleanNumber keeps digits, dots and minus signs, dropping currency symbols.
func cleanNumber(raw string) string {
	var b []byte
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if (ch >= '0' && ch <= '9') || ch == '.' || ch == '-' {
			b = append(b, ch)
		}
	}
	return string(b)
}

// flag accepts booleans as well as "yes"/"1"/"true" strings.
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, _ := strconv.ParseBool(s)
		*f = flag(parsed || s == "yes")
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flag(n.String() != "0")
	}
	return nil
}

// CategoryPayload is a WooCommerce product category.
type CategoryPayload struct {
	ID    id     `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type wireImage struct {
	Src string `json:"src"`
}

// ProductPayload is a WooCommerce product.
type ProductPayload struct {
	ID               id             `json:"id"`
	Name             string         `json:"name"`
	Price            string         `json:"price"`
	RegularPrice     string         `json:"regular_price"`
	SalePrice        string         `json:"sale_price"`
	Categories       []CategoryPayload `json:"categories"`
	Images           []wireImage    `json:"images"`
	ShortDescription string         `json:"short_description"`
	Description      string         `json:"description"`
	StockStatus      string         `json:"stock_status"`
	Featured         bool           `json:"featured"`
}

// HappyHourPayload is a per-category happy hour from the merchant plugin.
type HappyHourPayload struct {
	Enabled flag   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Type    string `json:"type"`
	Value   amount `json:"value"`
}

type wireCategoryConfig struct {
	HappyHour *HappyHourPayload `json:"happy_hour"`
}

type wireSize struct {
	Name          string `json:"name"`
	PriceModifier amount `json:"priceModifier"`
	Price         amount `json:"price"`
}

type wireIngredients struct {
	Base   []string `json:"base"`
	Extras []string `json:"extras"`
}

type wireComboSlot struct {
	Name         string `json:"name"`
	MinSelection int    `json:"minSelection"`
	MaxSelection int    `json:"maxSelection"`
}

type wireProductConfig struct {
	IsCombo          flag                     `json:"is_combo"`
	ComboConfig      map[string]wireComboSlot `json:"combo_config"`
	IsPersonalizable flag                     `json:"is_personalizable"`
	Sizes            []wireSize               `json:"sizes"`
	Ingredients      *wireIngredients         `json:"ingredients"`
}

type wireSettings struct {
	ExtraIngredientPrice amount `json:"extra_ingredient_price"`
	FreeShippingEnabled  *flag  `json:"free_shipping_enabled"`
	FreeShippingAmount   amount `json:"free_shipping_amount"`
}

type wireMerchantConfig struct {
	Categories map[string]wireCategoryConfig `json:"categories"`
	Products   map[string]wireProductConfig  `json:"products"`
	Settings   *wireSettings                 `json:"settings"`
}

type wireTier struct {
	MinAmount amount `json:"minAmount"`
	Type      string `json:"type"`
	Value     amount `json:"value"`
}

type wireConditions struct {
	Categories  ids        `json:"categories"`
	Products    ids        `json:"products"`
	MinQuantity int        `json:"minQuantity"`
	GetQuantity int        `json:"getQuantity"`
	MinAmount   amount     `json:"minAmount"`
	Tiers       []wireTier `json:"tiers"`
}

// RulePayload is a discount rule authored in the merchant plugin.
type RulePayload struct {
	ID         id             `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Enabled    flag           `json:"enabled"`
	Conditions wireConditions `json:"conditions"`
	Value      amount         `json:"value"`
}

type wireZone struct {
	ID   id     `json:"id"`
	Name string `json:"name"`
}

type wireSetting struct {
	Value string `json:"value"`
}

type wireShippingMethod struct {
	MethodID string                 `json:"method_id"`
	Enabled  flag                   `json:"enabled"`
	Settings map[string]wireSetting `json:"settings"`
}

type wireGateway struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Enabled flag   `json:"enabled"`
}

type wireMeta struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type wireAddress struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address1  string `json:"address_1"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
}

type wireLineItem struct {
	ProductID string     `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Total     string     `json:"total"`
	MetaData  []wireMeta `json:"meta_data"`
}

type wireShippingLine struct {
	MethodID    string `json:"method_id"`
	MethodTitle string `json:"method_title"`
	Total       string `json:"total"`
}

type wireFeeLine struct {
	Name  string `json:"name"`
	Total string `json:"total"`
}

type wireOrder struct {
	PaymentMethod      string             `json:"payment_method"`
	PaymentMethodTitle string             `json:"payment_method_title"`
	SetPaid            bool               `json:"set_paid"`
	Billing            wireAddress        `json:"billing"`
	Shipping           wireAddress        `json:"shipping"`
	LineItems          []wireLineItem     `json:"line_items"`
	ShippingLines      []wireShippingLine `json:"shipping_lines"`
	FeeLines           []wireFeeLine      `json:"fee_lines"`
	CustomerNote       string             `json:"customer_note"`
	MetaData           []wireMeta         `json:"meta_data"`
}

type wireOrderCreated struct {
	ID     id `json:"id"`
	Number id `json:"number"`
}
