package woo

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pizzeria-storefront/internal/resilience"
)

// Breaker groups. Each group trips independently.
const (
	GroupCatalog  = "catalog"
	GroupMerchant = "merchant"
	GroupOrders   = "orders"
)

// Upstream is the breaker and metric label for the commerce backend.
const Upstream = "woocommerce"

// group maps a client operation to the breaker guarding it. Catalog and shipping
// reads share one breaker; the merchant plugin and order creation get their own.
func group(op string) string {
	switch op {
	case "create_order":
		return GroupOrders
	case "merchant_config", "discount_rules":
		return GroupMerchant
	default:
		return GroupCatalog
	}
}

// NewBreakers returns the breakers for the commerce backend. Order creation trips
// after fewer failures and retries sooner than the snapshot reads, which the
// session loader can serve from cache or defaults meanwhile.
func NewBreakers(logger zerolog.Logger) *resilience.Breakers {
	return &resilience.Breakers{
		Upstream: Upstream,
		Default:  resilience.Policy{MinRequests: 5, FailureRatio: 0.5, OpenFor: 30 * time.Second},
		Policies: map[string]resilience.Policy{
			GroupMerchant: {MinRequests: 3, FailureRatio: 0.5, OpenFor: time.Minute},
			GroupOrders:   {MinRequests: 3, FailureRatio: 0.6, OpenFor: 10 * time.Second},
		},
		Logger: logger,
	}
}
