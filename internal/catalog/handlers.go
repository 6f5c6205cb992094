package catalog

import (
	"net/http"
	"time"

	"github.com/noah-isme/pizzeria-storefront/internal/common"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
)

// Source returns the catalog of the current configuration snapshot.
type Source interface {
	Catalog() *Catalog
}

// Handler serves the storefront catalog.
type Handler struct {
	Source Source
	Book   pricing.PriceBook
	Now    func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// List returns categories and products with effective prices at the current instant.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Source == nil || h.Source.Catalog() == nil {
		common.JSONError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "catalog not loaded", nil)
		return
	}
	cat := h.Source.Catalog()
	now := h.now()
	products := cat.Products()
	if categoryID := r.URL.Query().Get("category"); categoryID != "" {
		products = cat.InCategory(categoryID)
	}
	activeHappyHours := cat.ActiveHappyHours(h.Book, now)
	if activeHappyHours == nil {
		activeHappyHours = []string{}
	}
	common.Data(w, http.StatusOK, map[string]any{
		"categories":       cat.Categories(),
		"products":         cat.Annotate(h.Book, products, now),
		"activeHappyHours": activeHappyHours,
		"pricedAt":         now,
	})
}
