package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
	"github.com/noah-isme/pizzeria-storefront/internal/checkout"
	"github.com/noah-isme/pizzeria-storefront/internal/discount"
	"github.com/noah-isme/pizzeria-storefront/internal/obs"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
	"github.com/noah-isme/pizzeria-storefront/internal/shipping"
)

const snapshotKey = "session:snapshot"

// MerchantConfig is the merchant plugin configuration after mapping.
type MerchantConfig struct {
	HappyHours           map[string]*pricing.HappyHour
	Personalization      map[string]*catalog.Personalization
	Combos               map[string]*catalog.Combo
	ExtraIngredientPrice *pricing.Money
	FreeShippingEnabled  *bool
	FreeShippingAmount   *pricing.Money
}

// ShippingInfo is what the commerce backend's shipping zones report.
type ShippingInfo struct {
	FlatFee               *pricing.Money
	FreeShippingThreshold *pricing.Money
}

// Upstream fetches the raw storefront configuration.
type Upstream interface {
	FetchCategories(ctx context.Context) ([]catalog.Category, error)
	FetchProducts(ctx context.Context) ([]catalog.Product, error)
	FetchMerchantConfig(ctx context.Context) (MerchantConfig, error)
	FetchDiscountRules(ctx context.Context) ([]discount.Rule, error)
	FetchShippingInfo(ctx context.Context) (ShippingInfo, error)
	FetchPaymentMethods(ctx context.Context) ([]PaymentMethod, error)
}

// ConfigurationError reports an optional configuration source that could not be used.
// The loader falls back to defaults for it.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Defaults apply when merchant configuration is missing.
type Defaults struct {
	Shipping             shipping.Policy
	ExtraIngredientPrice pricing.Money
	Business             checkout.Business
	Schedule             checkout.Schedule
}

// Loader builds configuration snapshots.
type Loader struct {
	Upstream Upstream
	Cache    *catalog.Cache
	Defaults Defaults
	Logger   zerolog.Logger
	Now      func() time.Time
}

func (l *Loader) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Load returns the cached snapshot when present, otherwise fetches a fresh one.
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	var snap Snapshot
	hit, err := l.Cache.GetJSON(ctx, snapshotKey, &snap)
	if err != nil {
		l.Logger.Warn().Err(err).Msg("session snapshot cache read failed")
	}
	if hit {
		obs.CountSnapshotLoad("cache")
		return NewConfig(snap), nil
	}
	return l.Refresh(ctx)
}

// Refresh fetches a fresh snapshot upstream and replaces the cached copy. Catalog
// failures are returned; merchant configuration, rules, shipping and payment failures
// fall back to defaults.
func (l *Loader) Refresh(ctx context.Context) (*Config, error) {
	if l == nil || l.Upstream == nil {
		return nil, errors.New("session loader not configured")
	}
	var (
		categories []catalog.Category
		products   []catalog.Product
		merchant   MerchantConfig
		rules      []discount.Rule
		ship       ShippingInfo
		payments   []PaymentMethod
		optional   = make([]error, 4)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = l.Upstream.FetchCategories(gctx)
		if err != nil {
			return fmt.Errorf("fetch categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = l.Upstream.FetchProducts(gctx)
		if err != nil {
			return fmt.Errorf("fetch products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if merchant, err = l.Upstream.FetchMerchantConfig(gctx); err != nil {
			optional[0] = &ConfigurationError{Source: "merchant", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if rules, err = l.Upstream.FetchDiscountRules(gctx); err != nil {
			optional[1] = &ConfigurationError{Source: "discounts", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if ship, err = l.Upstream.FetchShippingInfo(gctx); err != nil {
			optional[2] = &ConfigurationError{Source: "shipping", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if payments, err = l.Upstream.FetchPaymentMethods(gctx); err != nil {
			optional[3] = &ConfigurationError{Source: "payments", Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		obs.CountSnapshotLoad("error")
		return nil, err
	}
	for _, err := range optional {
		if err != nil {
			l.Logger.Warn().Err(err).Msg("using default configuration")
		}
	}

	snap := Snapshot{
		Categories:           mergeHappyHours(categories, merchant.HappyHours),
		Products:             mergeSchemas(products, merchant),
		Rules:                l.validRules(rules),
		Shipping:             l.shippingPolicy(merchant, ship),
		ExtraIngredientPrice: l.Defaults.ExtraIngredientPrice,
		Business:             l.Defaults.Business,
		Schedule:             l.Defaults.Schedule,
		PaymentMethods:       payments,
		LoadedAt:             l.now().UTC(),
	}
	if merchant.ExtraIngredientPrice != nil && merchant.ExtraIngredientPrice.IsPositive() {
		snap.ExtraIngredientPrice = *merchant.ExtraIngredientPrice
	}
	if len(snap.Schedule) == 0 {
		snap.Schedule = checkout.DefaultSchedule()
	}
	if err := l.Cache.SetJSON(ctx, snapshotKey, snap); err != nil {
		l.Logger.Warn().Err(err).Msg("session snapshot cache write failed")
	}
	obs.CountSnapshotLoad("upstream")
	return NewConfig(snap), nil
}

func (l *Loader) validRules(rules []discount.Rule) []discount.Rule {
	out := make([]discount.Rule, 0, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			l.Logger.Warn().Err(&ConfigurationError{Source: "discount rule", Err: err}).Str("rule_id", r.ID).Msg("discount rule dropped")
			continue
		}
		out = append(out, r)
	}
	return out
}

func (l *Loader) shippingPolicy(merchant MerchantConfig, info ShippingInfo) shipping.Policy {
	policy := l.Defaults.Shipping
	if merchant.FreeShippingEnabled != nil {
		policy.FreeShippingEnabled = *merchant.FreeShippingEnabled
	}
	if merchant.FreeShippingAmount != nil && merchant.FreeShippingAmount.IsPositive() {
		policy.FreeShippingThreshold = *merchant.FreeShippingAmount
	}
	if info.FlatFee != nil {
		policy.FlatFee = *info.FlatFee
	}
	if info.FreeShippingThreshold != nil && info.FreeShippingThreshold.IsPositive() {
		policy.FreeShippingThreshold = *info.FreeShippingThreshold
	}
	return policy
}

func mergeHappyHours(categories []catalog.Category, windows map[string]*pricing.HappyHour) []catalog.Category {
	out := make([]catalog.Category, 0, len(categories))
	for _, c := range categories {
		if hh, ok := windows[c.ID]; ok && hh != nil {
			copied := *hh
			c.HappyHour = &copied
		}
		out = append(out, c)
	}
	return out
}

func mergeSchemas(products []catalog.Product, merchant MerchantConfig) []catalog.Product {
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if schema, ok := merchant.Personalization[p.ID]; ok && schema != nil {
			p.Personalization = schema
		}
		if combo, ok := merchant.Combos[p.ID]; ok && combo != nil {
			p.Combo = combo
		}
		out = append(out, p)
	}
	return out
}
