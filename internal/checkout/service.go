package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pizzeria-storefront/internal/cart"
	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
	"github.com/noah-isme/pizzeria-storefront/internal/common"
	"github.com/noah-isme/pizzeria-storefront/internal/discount"
	"github.com/noah-isme/pizzeria-storefront/internal/events"
	"github.com/noah-isme/pizzeria-storefront/internal/notify"
	"github.com/noah-isme/pizzeria-storefront/internal/obs"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
	"github.com/noah-isme/pizzeria-storefront/internal/shipping"
)

var (
	// ErrEmptyCart is returned when checking out a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrSubmissionFailed marks orders the commerce backend did not accept.
	ErrSubmissionFailed = errors.New("order submission failed")
	// ErrNotConfigured indicates the service is missing a collaborator.
	ErrNotConfigured = errors.New("checkout service not configured")
)

// Business identifies the store on order summaries.
type Business struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	City          string `json:"city"`
	WhatsAppPhone string `json:"whatsappPhone,omitempty"`
}

// PickupAddress is where pickup orders are collected.
func (b Business) PickupAddress() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{b.Address, b.City} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// Settings is the merchant configuration a checkout prices against.
type Settings interface {
	Catalog() *catalog.Catalog
	ExtraIngredientPrice() pricing.Money
	Rules() []discount.Rule
	ShippingPolicy() shipping.Policy
	Business() Business
	Schedule() Schedule
}

// SettingsSource returns the current configuration snapshot.
type SettingsSource interface {
	Settings() Settings
}

// Customer holds the buyer's contact details.
type Customer struct {
	Name    string `json:"name" validate:"required,min=3"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,clphone"`
	Address string `json:"address"`
}

// Request is the checkout form.
type Request struct {
	Customer      Customer `json:"customer"`
	PaymentMethod string   `json:"paymentMethod"`
	Notes         string   `json:"notes"`
}

// Order is what gets submitted to the commerce backend.
type Order struct {
	Customer      Customer
	PaymentMethod string
	Notes         string
	Lines         []cart.Line
	Totals        Totals
	Business      Business
}

// Submitter creates the order upstream and returns its confirmation id.
type Submitter interface {
	SubmitOrder(ctx context.Context, order Order) (string, error)
}

// Receipt is the outcome of a checkout.
type Receipt struct {
	ConfirmationID string `json:"confirmationId"`
	Manual         bool   `json:"manual"`
	Totals         Totals `json:"totals"`
	Summary        string `json:"summary"`
	WhatsAppLink   string `json:"whatsappLink,omitempty"`
	StoreOpen      bool   `json:"storeOpen"`
}

// SubmissionFailure is returned when the backend rejected the order. The receipt carries
// the manual reference the merchant can fulfil the order under.
type SubmissionFailure struct {
	Receipt Receipt
	Err     error
}

func (e *SubmissionFailure) Error() string {
	return fmt.Sprintf("%s (manual reference %s): %v", ErrSubmissionFailed, e.Receipt.ConfirmationID, e.Err)
}

// Unwrap exposes both the sentinel and the upstream cause.
func (e *SubmissionFailure) Unwrap() []error {
	return []error{ErrSubmissionFailed, e.Err}
}

// Service runs quotes and order submission for a session.
type Service struct {
	Cart      *cart.Service
	Config    SettingsSource
	Submitter Submitter
	Events    *events.Bus
	Engine    discount.Engine
	Advisor   discount.Advisor
	Formatter pricing.Formatter
	Location  *time.Location
	Logger    zerolog.Logger
	// NotifyTimeout bounds the background summary dispatch.
	NotifyTimeout time.Duration
	Now           func() time.Time
	// Go runs fn in the background. Defaults to a goroutine.
	Go func(fn func())
}

func (s *Service) now() time.Time {
	var now time.Time
	if s.Now != nil {
		now = s.Now()
	} else {
		now = time.Now()
	}
	if s.Location != nil {
		now = now.In(s.Location)
	}
	return now
}

func (s *Service) settings() (Settings, error) {
	if s == nil || s.Cart == nil || s.Config == nil {
		return nil, ErrNotConfigured
	}
	settings := s.Config.Settings()
	if settings == nil {
		return nil, ErrNotConfigured
	}
	return settings, nil
}

func (s *Service) state(settings Settings, ledger *cart.Ledger, mode shipping.Mode, now time.Time) State {
	return State{
		Ledger:   ledger,
		Mode:     mode,
		Rules:    settings.Rules(),
		Shipping: settings.ShippingPolicy(),
		Engine:   s.Engine,
		Now:      now,
	}
}

// Quote returns the cart view for the session.
func (s *Service) Quote(ctx context.Context, sessionID string) (Quote, error) {
	settings, err := s.settings()
	if err != nil {
		return Quote{}, err
	}
	ledger, mode, err := s.Cart.Get(ctx, sessionID)
	if err != nil {
		return Quote{}, err
	}
	return BuildQuote(s.state(settings, ledger, mode, s.now()), s.Advisor, settings.Catalog().Products()), nil
}

// View implements the cart handler's read model.
func (s *Service) View(ctx context.Context, sessionID string) (any, error) {
	return s.Quote(ctx, sessionID)
}

// Submit validates the form, prices the cart and submits the order. When the backend
// refuses the order a manual reference is issued, the summary is still dispatched and
// the cart is kept so the customer can retry.
func (s *Service) Submit(ctx context.Context, sessionID string, req Request) (Receipt, error) {
	settings, err := s.settings()
	if err != nil {
		return Receipt{}, err
	}
	ledger, mode, err := s.Cart.Get(ctx, sessionID)
	if err != nil {
		return Receipt{}, err
	}
	if ledger.Empty() {
		return Receipt{}, ErrEmptyCart
	}
	req.Customer = normalizeCustomer(req.Customer)
	if err := common.Validate(req); err != nil {
		return Receipt{}, err
	}
	if mode == shipping.ModeDelivery && req.Customer.Address == "" {
		return Receipt{}, common.FieldError("address", "is required")
	}

	now := s.now()
	totals := Recompute(s.state(settings, ledger, mode, now))
	open := StoreOpen(settings.Schedule(), now)
	if !open {
		s.Logger.Warn().Str("session_id", sessionID).Msg("order placed outside opening hours")
	}
	order := Order{
		Customer:      req.Customer,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Lines:         ledger.Lines(),
		Totals:        totals,
		Business:      settings.Business(),
	}

	receipt := Receipt{Totals: totals, StoreOpen: open}
	var submitErr error
	if s.Submitter == nil {
		submitErr = ErrNotConfigured
	} else {
		receipt.ConfirmationID, submitErr = s.Submitter.SubmitOrder(ctx, order)
	}
	topic := events.TopicOrderSubmitted
	if submitErr != nil || strings.TrimSpace(receipt.ConfirmationID) == "" {
		if submitErr == nil {
			submitErr = errors.New("empty confirmation id")
		}
		receipt.ConfirmationID = fmt.Sprintf("MANUAL-%d", now.UnixMilli())
		receipt.Manual = true
		topic = events.TopicOrderManualFallback
	}

	receipt.Summary = s.summary(settings, order, receipt.ConfirmationID, mode).Format(s.Formatter)
	if phone := settings.Business().WhatsAppPhone; phone != "" {
		receipt.WhatsAppLink = notify.WhatsAppLink(phone, receipt.Summary)
	}
	s.publish(ctx, topic, receipt)

	if receipt.Manual {
		obs.CountOrderSubmission("manual")
		s.Logger.Error().Err(submitErr).Str("session_id", sessionID).Str("reference", receipt.ConfirmationID).Msg("order submission failed, manual fallback issued")
		return receipt, &SubmissionFailure{Receipt: receipt, Err: submitErr}
	}

	obs.CountOrderSubmission("submitted")
	for _, applied := range totals.Discounts.Applied {
		obs.CountDiscount(string(applied.Type))
	}
	if err := s.Cart.Clear(ctx, sessionID); err != nil {
		s.Logger.Warn().Err(err).Str("session_id", sessionID).Msg("clear cart after checkout")
	}
	return receipt, nil
}

func normalizeCustomer(c Customer) Customer {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.ReplaceAll(strings.TrimSpace(c.Phone), " ", "")
	c.Address = strings.TrimSpace(c.Address)
	return c
}

func (s *Service) summary(settings Settings, order Order, reference string, mode shipping.Mode) notify.OrderSummary {
	business := settings.Business()
	extra := settings.ExtraIngredientPrice()
	if !extra.IsPositive() {
		extra = cart.DefaultExtraIngredientPrice
	}
	out := notify.OrderSummary{
		Number:        reference,
		BusinessName:  business.Name,
		CustomerName:  order.Customer.Name,
		Phone:         order.Customer.Phone,
		Email:         order.Customer.Email,
		Delivery:      mode == shipping.ModeDelivery,
		Address:       order.Customer.Address,
		PickupAddress: business.PickupAddress(),
		PaymentMethod: order.PaymentMethod,
		Subtotal:      order.Totals.Subtotal,
		Shipping:      order.Totals.Shipping,
		Total:         order.Totals.GrandTotal,
		Notes:         order.Notes,
	}
	for _, line := range order.Lines {
		sl := notify.SummaryLine{Name: line.Name, Quantity: line.Quantity, Total: line.Total()}
		for _, pick := range line.ComboSelections {
			for _, item := range pick.Items {
				sl.Includes = append(sl.Includes, item.Name)
			}
		}
		if mods := line.Modifications; mods != nil {
			sl.Removed = append(sl.Removed, mods.Removed...)
			sl.Added = append(sl.Added, mods.Added...)
			sl.AddedCost = pricing.LineTotal(extra, len(mods.Added))
		}
		out.Lines = append(out.Lines, sl)
	}
	for _, applied := range order.Totals.Discounts.Applied {
		out.Discounts = append(out.Discounts, notify.SummaryDiscount{Description: applied.Description, Amount: applied.Amount})
	}
	return out
}

// publish emits the order event off the request path. Failures are logged only.
func (s *Service) publish(ctx context.Context, topic string, receipt Receipt) {
	if s.Events == nil {
		return
	}
	payload := notify.EventPayload{
		Reference: receipt.ConfirmationID,
		Manual:    receipt.Manual,
		Summary:   receipt.Summary,
		Link:      receipt.WhatsAppLink,
	}
	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	bg := context.WithoutCancel(ctx)
	run := func() {
		ctx, cancel := context.WithTimeout(bg, timeout)
		defer cancel()
		if _, err := s.Events.Emit(ctx, topic, receipt.ConfirmationID, payload); err != nil {
			s.Logger.Warn().Err(err).Str("topic", topic).Str("reference", receipt.ConfirmationID).Msg("order event dispatch failed")
		}
	}
	if s.Go != nil {
		s.Go(run)
		return
	}
	go run()
}
