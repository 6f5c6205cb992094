package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
	"github.com/noah-isme/pizzeria-storefront/internal/shipping"
)

var (
	// ErrNotFound indicates the requested cart line does not exist.
	ErrNotFound = errors.New("cart line not found")
	// ErrProductNotFound indicates the product is not in the session catalog.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductUnavailable indicates the product is out of stock.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrInvalidInput is returned when the provided payload is invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// Source exposes the session catalog the cart prices against.
type Source interface {
	Catalog() *catalog.Catalog
	ExtraIngredientPrice() pricing.Money
}

// Locker serialises mutations of one session's cart.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// AddRequest describes a product to put in the cart.
type AddRequest struct {
	ProductID       string                `json:"productId" validate:"required"`
	Personalization *PersonalizationInput `json:"personalization,omitempty"`
	Combo           []ComboSelection      `json:"combo,omitempty"`
}

// Service loads a session's ledger, applies a mutation and persists the result.
type Service struct {
	Store   Store
	Source  Source
	Book    pricing.PriceBook
	Locker  Locker
	LockTTL time.Duration
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ready() error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	return nil
}

// Get returns the session's ledger and delivery mode.
func (s *Service) Get(ctx context.Context, sessionID string) (*Ledger, shipping.Mode, error) {
	if err := s.ready(); err != nil {
		return nil, shipping.ModeDelivery, err
	}
	lines, err := s.Store.Load(ctx, sessionID)
	if err != nil {
		return nil, shipping.ModeDelivery, err
	}
	mode, err := s.Store.DeliveryMode(ctx, sessionID)
	if err != nil {
		return nil, shipping.ModeDelivery, err
	}
	return NewLedger(lines), mode, nil
}

// Add prices the requested product at the current instant and adds it to the cart.
func (s *Service) Add(ctx context.Context, sessionID string, req AddRequest) (Line, error) {
	if err := s.ready(); err != nil {
		return Line{}, err
	}
	if s.Source == nil || s.Source.Catalog() == nil {
		return Line{}, errors.New("cart catalog not configured")
	}
	now := s.now()
	item, err := s.buildItem(req, now)
	if err != nil {
		return Line{}, err
	}
	var added Line
	err = s.mutate(ctx, sessionID, func(l *Ledger) error {
		added = l.Add(item, now)
		return nil
	})
	return added, err
}

func (s *Service) buildItem(req AddRequest, now time.Time) (Item, error) {
	cat := s.Source.Catalog()
	product, ok := cat.Product(strings.TrimSpace(req.ProductID))
	if !ok {
		return Item{}, fmt.Errorf("product %q: %w", req.ProductID, ErrProductNotFound)
	}
	if !product.Available() {
		return Item{}, fmt.Errorf("product %q: %w", product.ID, ErrProductUnavailable)
	}
	res := cat.EffectivePrice(s.Book, product, now)

	item := PlainItem(product, res)
	if product.Personalization != nil || req.Personalization != nil {
		var in PersonalizationInput
		if req.Personalization != nil {
			in = *req.Personalization
		}
		extra := s.Source.ExtraIngredientPrice()
		if !extra.IsPositive() {
			extra = DefaultExtraIngredientPrice
		}
		personalized, err := Personalize(product, res, in, extra)
		if err != nil {
			return Item{}, err
		}
		item = personalized
	}
	if product.Combo != nil || len(req.Combo) > 0 {
		combo, err := ComposeCombo(product, res, req.Combo, cat)
		if err != nil {
			return Item{}, err
		}
		item.ComboSelections = combo.ComboSelections
	}
	return item, nil
}

// SetQuantity replaces a line's quantity. Non-positive quantities remove the line.
func (s *Service) SetQuantity(ctx context.Context, sessionID, key string, qty int) error {
	return s.mutate(ctx, sessionID, func(l *Ledger) error {
		if !l.SetQuantity(key, qty) {
			return ErrNotFound
		}
		return nil
	})
}

// Remove deletes a line.
func (s *Service) Remove(ctx context.Context, sessionID, key string) error {
	return s.mutate(ctx, sessionID, func(l *Ledger) error {
		if !l.Remove(key) {
			return ErrNotFound
		}
		return nil
	})
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.Store.Clear(ctx, sessionID)
}

// SetDeliveryMode stores the session's delivery preference.
func (s *Service) SetDeliveryMode(ctx context.Context, sessionID string, mode shipping.Mode) error {
	if err := s.ready(); err != nil {
		return err
	}
	if !mode.Valid() {
		return fmt.Errorf("delivery mode %q: %w", mode, ErrInvalidInput)
	}
	return s.Store.SetDeliveryMode(ctx, sessionID, mode)
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*Ledger) error) error {
	if err := s.ready(); err != nil {
		return err
	}
	apply := func(ctx context.Context) error {
		lines, err := s.Store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		ledger := NewLedger(lines)
		if err := fn(ledger); err != nil {
			return err
		}
		return s.Store.Save(ctx, sessionID, ledger.Lines())
	}
	if s.Locker == nil {
		return apply(ctx)
	}
	ttl := s.LockTTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return s.Locker.WithLock(ctx, "lock:cart:"+sessionID, ttl, apply)
}
