package checkout_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pizzeria-storefront/internal/cart"
	"github.com/noah-isme/pizzeria-storefront/internal/catalog"
	"github.com/noah-isme/pizzeria-storefront/internal/checkout"
	"github.com/noah-isme/pizzeria-storefront/internal/common"
	"github.com/noah-isme/pizzeria-storefront/internal/discount"
	"github.com/noah-isme/pizzeria-storefront/internal/events"
	"github.com/noah-isme/pizzeria-storefront/internal/notify"
	"github.com/noah-isme/pizzeria-storefront/internal/pricing"
	"github.com/noah-isme/pizzeria-storefront/internal/shipping"
)

type stubSettings struct {
	cat   *catalog.Catalog
	rules []discount.Rule
}

func (s stubSettings) Catalog() *catalog.Catalog           { return s.cat }
func (s stubSettings) ExtraIngredientPrice() pricing.Money { return pricing.FromInt(1500) }
func (s stubSettings) Rules() []discount.Rule              { return s.rules }
func (s stubSettings) ShippingPolicy() shipping.Policy     { return shipping.DefaultPolicy() }
func (s stubSettings) Schedule() checkout.Schedule         { return checkout.DefaultSchedule() }
func (s stubSettings) Settings() checkout.Settings         { return s }

func (s stubSettings) Business() checkout.Business {
	return checkout.Business{Name: "Pizzería", Address: "Calle 1", City: "Santiago", WhatsAppPhone: "+56 9 4274 0261"}
}

type stubSubmitter struct {
	id     string
	err    error
	orders []checkout.Order
}

func (s *stubSubmitter) SubmitOrder(_ context.Context, order checkout.Order) (string, error) {
	s.orders = append(s.orders, order)
	return s.id, s.err
}

type recorder struct {
	texts []string
}

func (r *recorder) Notify(_ context.Context, text string) error {
	r.texts = append(r.texts, text)
	return nil
}

type fixture struct {
	svc       *checkout.Service
	cart      *cart.Service
	submitter *stubSubmitter
	notified  *recorder
	client    *redis.Client
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	products := []catalog.Product{
		{ID: "10", Name: "Pepperoni", Price: pricing.FromInt(8000), Categories: []catalog.CategoryRef{{ID: "5"}}, StockStatus: catalog.InStock},
		{ID: "20", Name: "Bebida", Price: pricing.FromInt(2000), Categories: []catalog.CategoryRef{{ID: "6"}}, StockStatus: catalog.InStock},
	}
	settings := stubSettings{
		cat: catalog.New([]catalog.Category{{ID: "5", Name: "Pizzas", Count: 1}, {ID: "6", Name: "Bebidas", Count: 1}}, products),
		rules: []discount.Rule{{
			ID: "2x1", Name: "2x1 Pizzas", Enabled: true, Type: discount.TypeBuyXGetY, Value: pricing.FromInt(100),
			Conditions: discount.Conditions{Categories: []string{"5"}, MinQuantity: 2, GetQuantity: 1},
		}},
	}
	// Friday 19:00, within opening hours.
	now := time.Date(2024, 5, 10, 19, 0, 0, 0, time.UTC)
	cartSvc := &cart.Service{
		Store:  cart.RedisStore{Client: client, TTL: time.Hour},
		Source: settings,
		Book:   pricing.PriceBook{Location: time.UTC},
		Now:    func() time.Time { return now },
	}
	submitter := &stubSubmitter{id: "1042"}
	notified := &recorder{}
	svc := &checkout.Service{
		Cart:      cartSvc,
		Config:    settings,
		Submitter: submitter,
		Events: &events.Bus{
			Store:     events.RedisStreamStore{Client: client, Stream: "events:test"},
			Notifiers: []events.Notifier{&notify.EventRelay{Target: notified, Topics: events.OrderTopics()}},
		},
		Formatter: pricing.NewFormatter("en", "$"),
		Logger:    zerolog.Nop(),
		Now:       func() time.Time { return now },
		Go:        func(fn func()) { fn() },
	}
	return &fixture{svc: svc, cart: cartSvc, submitter: submitter, notified: notified, client: client, now: now}
}

func validRequest() checkout.Request {
	return checkout.Request{
		Customer:      checkout.Customer{Name: "Ana Pérez", Email: "ana@example.com", Phone: "+56 9 1234 5678", Address: "Av. Siempre Viva 742"},
		PaymentMethod: "Efectivo",
	}
}

func TestSubmitSuccessClearsCartAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cart.Add(ctx, "s1", cart.AddRequest{ProductID: "10"})
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, "s1", cart.AddRequest{ProductID: "10"})
	require.NoError(t, err)

	receipt, err := f.svc.Submit(ctx, "s1", validRequest())
	require.NoError(t, err)
	require.Equal(t, "1042", receipt.ConfirmationID)
	require.False(t, receipt.Manual)
	require.True(t, receipt.StoreOpen)
	require.True(t, receipt.Totals.Subtotal.Equal(pricing.FromInt(16000)))
	require.True(t, receipt.Totals.DiscountedSubtotal.Equal(pricing.FromInt(8000)))
	require.True(t, receipt.Totals.GrandTotal.Equal(pricing.FromInt(10500)))
	require.True(t, strings.HasPrefix(receipt.WhatsAppLink, "https://wa.me/56942740261?text="))

	require.Len(t, f.submitter.orders, 1)
	require.Equal(t, "+56912345678", f.submitter.orders[0].Customer.Phone)
	require.Equal(t, "Santiago", f.submitter.orders[0].Business.City)

	require.Len(t, f.notified.texts, 1)
	require.Contains(t, f.notified.texts[0], "#1042")
	require.Contains(t, f.notified.texts[0], "2x1 Pizzas")

	ledger, _, err := f.cart.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ledger.Empty())

	entries, err := f.client.XRange(ctx, "events:test", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, events.TopicOrderSubmitted, entries[0].Values["topic"])
}

func TestSubmitFailureIssuesManualReference(t *testing.T) {
	f := newFixture(t)
	f.submitter.err = errors.New("woo down")
	ctx := context.Background()
	_, err := f.cart.Add(ctx, "s1", cart.AddRequest{ProductID: "20"})
	require.NoError(t, err)
	require.NoError(t, f.cart.SetDeliveryMode(ctx, "s1", shipping.ModePickup))

	req := validRequest()
	req.Customer.Address = ""
	receipt, err := f.svc.Submit(ctx, "s1", req)
	require.Error(t, err)
	require.ErrorIs(t, err, checkout.ErrSubmissionFailed)

	var failure *checkout.SubmissionFailure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, receipt, failure.Receipt)
	require.True(t, receipt.Manual)
	require.Equal(t, "MANUAL-1715367600000", receipt.ConfirmationID)
	require.True(t, receipt.Totals.Shipping.IsZero())

	require.Len(t, f.notified.texts, 1)
	require.Contains(t, f.notified.texts[0], "RETIRO EN LOCAL")
	require.Contains(t, f.notified.texts[0], "Calle 1, Santiago")

	ledger, _, err := f.cart.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 1, ledger.ItemCount())

	entries, err := f.client.XRange(ctx, "events:test", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, events.TopicOrderManualFallback, entries[0].Values["topic"])
}

func TestSubmitRejectsEmptyCartAndInvalidCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, "s1", validRequest())
	require.ErrorIs(t, err, checkout.ErrEmptyCart)

	_, err = f.cart.Add(ctx, "s1", cart.AddRequest{ProductID: "10"})
	require.NoError(t, err)

	bad := validRequest()
	bad.Customer.Phone = "12345"
	_, err = f.svc.Submit(ctx, "s1", bad)
	require.ErrorIs(t, err, common.ErrValidation)

	noAddress := validRequest()
	noAddress.Customer.Address = "  "
	_, err = f.svc.Submit(ctx, "s1", noAddress)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, map[string]string{"address": "is required"}, appErr.Details)

	require.Empty(t, f.submitter.orders)
	require.Empty(t, f.notified.texts)
}

func TestQuoteReflectsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.svc.Quote(ctx, "s1")
	require.NoError(t, err)
	require.Empty(t, empty.Lines)
	require.True(t, empty.Totals.GrandTotal.Equal(pricing.FromInt(2500)))

	_, err = f.cart.Add(ctx, "s1", cart.AddRequest{ProductID: "10"})
	require.NoError(t, err)
	q, err := f.svc.Quote(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, q.Lines, 1)
	require.Len(t, q.Pending, 1)
	require.Equal(t, "Agrega 1 producto más para 2x1 Pizzas", q.Pending[0].Description)
	require.NotNil(t, q.FreeShippingRemaining)
	require.True(t, q.FreeShippingRemaining.Equal(pricing.FromInt(12000)))
}

type downStream struct{}

func (downStream) Append(context.Context, events.Event) (events.Event, error) {
	return events.Event{}, errors.New("redis: connection refused")
}

func TestManualFallbackSummarySentWhenStreamDown(t *testing.T) {
	f := newFixture(t)
	f.svc.Events.Store = downStream{}
	f.submitter.err = errors.New("woo down")
	ctx := context.Background()
	_, err := f.cart.Add(ctx, "s1", cart.AddRequest{ProductID: "10"})
	require.NoError(t, err)

	receipt, err := f.svc.Submit(ctx, "s1", validRequest())
	require.ErrorIs(t, err, checkout.ErrSubmissionFailed)
	require.True(t, receipt.Manual)

	require.Len(t, f.notified.texts, 1)
	require.Contains(t, f.notified.texts[0], receipt.ConfirmationID)
	require.Zero(t, f.client.Exists(ctx, "events:test").Val())
}
