package checkout_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pizzeria-storefront/internal/cart"
	"github.com/noah-isme/pizzeria-storefront/internal/checkout"
	"github.com/noah-isme/pizzeria-storefront/internal/common"
)

type checkoutResponse struct {
	Data struct {
		ConfirmationID string `json:"confirmationId"`
		Manual         bool   `json:"manual"`
		Summary        string `json:"summary"`
		WhatsAppLink   string `json:"whatsappLink"`
		Totals         struct {
			GrandTotal string `json:"grandTotal"`
		} `json:"totals"`
	} `json:"data"`
	Error *common.ErrorBody `json:"error"`
}

const checkoutForm = `{"customer":{"name":"Ana Pérez","email":"ana@example.com","phone":"+56 9 1234 5678","address":"Av. Siempre Viva 742"},"paymentMethod":"Efectivo"}`

func postCheckout(t *testing.T, svc *checkout.Service, session, body string) (int, checkoutResponse) {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/api/v1/sessions/{session}/checkout", (&checkout.Handler{Svc: svc}).Checkout)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+session+"/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp checkoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func TestCheckoutHandlerCreatesOrder(t *testing.T) {
	f := newFixture(t)
	session := uuid.NewString()
	_, err := f.cart.Add(context.Background(), session, cart.AddRequest{ProductID: "10"})
	require.NoError(t, err)

	status, resp := postCheckout(t, f.svc, session, checkoutForm)
	require.Equal(t, http.StatusCreated, status)
	require.Nil(t, resp.Error)
	require.Equal(t, "1042", resp.Data.ConfirmationID)
	require.False(t, resp.Data.Manual)
	require.Equal(t, "10500", resp.Data.Totals.GrandTotal)
	require.Contains(t, resp.Data.Summary, "#1042")
	require.Len(t, f.notified.texts, 1)
}

func TestCheckoutHandlerManualFallbackAccepted(t *testing.T) {
	f := newFixture(t)
	f.submitter.err = errors.New("woo down")
	session := uuid.NewString()
	_, err := f.cart.Add(context.Background(), session, cart.AddRequest{ProductID: "10"})
	require.NoError(t, err)

	status, resp := postCheckout(t, f.svc, session, checkoutForm)
	require.Equal(t, http.StatusAccepted, status)
	require.True(t, resp.Data.Manual)
	require.True(t, strings.HasPrefix(resp.Data.ConfirmationID, "MANUAL-"))
	require.NotEmpty(t, resp.Data.WhatsAppLink)

	ledger, _, err := f.cart.Get(context.Background(), session)
	require.NoError(t, err)
	require.False(t, ledger.Empty())
}

func TestCheckoutHandlerErrors(t *testing.T) {
	f := newFixture(t)
	session := uuid.NewString()

	status, resp := postCheckout(t, f.svc, session, checkoutForm)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Equal(t, "EMPTY_CART", resp.Error.Code)

	status, resp = postCheckout(t, f.svc, "s1", checkoutForm)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "INVALID_SESSION", resp.Error.Code)

	_, err := f.cart.Add(context.Background(), session, cart.AddRequest{ProductID: "10"})
	require.NoError(t, err)
	badPhone := strings.Replace(checkoutForm, "+56 9 1234 5678", "12345", 1)
	status, resp = postCheckout(t, f.svc, session, badPhone)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "VALIDATION", resp.Error.Code)
	require.Contains(t, resp.Error.Details, "phone")

	status, resp = postCheckout(t, f.svc, session, `{"customer":`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "INVALID_BODY", resp.Error.Code)

	status, resp = postCheckout(t, &checkout.Service{}, session, checkoutForm)
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "UNAVAILABLE", resp.Error.Code)

	require.Empty(t, f.submitter.orders)
}
