package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
	"github.com/noah-isme/pizzeria-storefront/internal/checkout"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
)

// Holder publishes the current configuration snapshot to request handlers.
type Holder struct {
	current atomic.Pointer[Config]
}

// NewHolder seeds a holder with an initial snapshot.
func NewHolder(cfg *Config) *Holder {
	h := &Holder{}
	h.current.Store(cfg)
	return h
}

// Current returns the active snapshot, nil before the first load.
func (h *Holder) Current() *Config {
	return h.current.Load()
}

// Loaded reports whether a snapshot has been installed.
func (h *Holder) Loaded() bool {
	return h.current.Load() != nil
}

// Swap installs a new snapshot.
func (h *Holder) Swap(cfg *Config) {
	if cfg != nil {
		h.current.Store(cfg)
	}
}

// Settings implements checkout.SettingsSource.
func (h *Holder) Settings() checkout.Settings {
	cfg := h.Current()
	if cfg == nil {
		return nil
	}
	return cfg
}

// Catalog implements cart.Source.
func (h *Holder) Catalog() *catalog.Catalog {
	if cfg := h.Current(); cfg != nil {
		return cfg.Catalog()
	}
	return nil
}

// ExtraIngredientPrice implements cart.Source.
func (h *Holder) ExtraIngredientPrice() pricing.Money {
	if cfg := h.Current(); cfg != nil {
		return cfg.ExtraIngredientPrice()
	}
	return pricing.Zero
}

// Run refreshes the snapshot every interval until ctx ends. A failed refresh keeps
// the previous snapshot.
func (h *Holder) Run(ctx context.Context, loader *Loader, interval time.Duration, logger zerolog.Logger) {
	if loader == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cfg, err := loader.Refresh(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("session snapshot refresh failed")
				continue
			}
			h.Swap(cfg)
			logger.Debug().Time("loaded_at", cfg.LoadedAt()).Msg("session snapshot refreshed")
		}
	}
}
