package session_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pizzeria-storefront/internal/checkout"
	"github.com/noah-isme/pizzeria-storefront/internal/session"
)

type storeResponse struct {
	Data struct {
		Business       checkout.Business       `json:"business"`
		Open           bool                    `json:"open"`
		PaymentMethods []session.PaymentMethod `json:"paymentMethods"`
	} `json:"data"`
}

func TestStoreHandler(t *testing.T) {
	santiago := time.FixedZone("CLT", -4*60*60)
	holder := session.NewHolder(session.NewConfig(session.Snapshot{
		Business:       checkout.Business{Name: "Pizzería", City: "Isla de Maipo"},
		Schedule:       checkout.DefaultSchedule(),
		PaymentMethods: []session.PaymentMethod{{ID: "cod", Title: "Efectivo"}},
	}))
	// Friday 23:30 UTC is 19:30 in the store's zone.
	now := time.Date(2024, 5, 10, 23, 30, 0, 0, time.UTC)
	handler := &session.Handler{Holder: holder, Location: santiago, Now: func() time.Time { return now }}

	rec := httptest.NewRecorder()
	handler.Store(rec, httptest.NewRequest(http.MethodGet, "/api/v1/store", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp storeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Pizzería", resp.Data.Business.Name)
	require.True(t, resp.Data.Open)
	require.Equal(t, []session.PaymentMethod{{ID: "cod", Title: "Efectivo"}}, resp.Data.PaymentMethods)

	// 15:00 store time on Friday is before opening.
	now = time.Date(2024, 5, 10, 19, 0, 0, 0, time.UTC)
	rec = httptest.NewRecorder()
	handler.Store(rec, httptest.NewRequest(http.MethodGet, "/api/v1/store", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Data.Open)
}

func TestStoreHandlerNotLoaded(t *testing.T) {
	handler := &session.Handler{Holder: session.NewHolder(nil)}
	rec := httptest.NewRecorder()
	handler.Store(rec, httptest.NewRequest(http.MethodGet, "/api/v1/store", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
