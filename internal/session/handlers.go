package session

import (
	"net/http"
	"time"

	"github.com/noah-isme/pizzeria-storefront/internal/checkout"
	"github.com/noah-isme/pizzeria-storefront/internal/common"
)

// Handler serves the store information derived from the current snapshot.
type Handler struct {
	Holder   *Holder
	Location *time.Location
	Now      func() time.Time
}

// Store returns business details, opening state, shipping policy and payment methods.
func (h *Handler) Store(w http.ResponseWriter, _ *http.Request) {
	var cfg *Config
	if h.Holder != nil {
		cfg = h.Holder.Current()
	}
	if cfg == nil {
		common.JSONError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "store configuration not loaded", nil)
		return
	}
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	if h.Location != nil {
		now = now.In(h.Location)
	}
	common.Data(w, http.StatusOK, map[string]any{
		"business":       cfg.Business(),
		"schedule":       cfg.Schedule(),
		"open":           checkout.StoreOpen(cfg.Schedule(), now),
		"shipping":       cfg.ShippingPolicy(),
		"paymentMethods": cfg.PaymentMethods(),
		"loadedAt":       cfg.LoadedAt(),
	})
}
