package obs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pizzeria-storefront/internal/obs"
)

func storefrontRouter(metrics *obs.HTTPMetrics) http.Handler {
	r := chi.NewRouter()
	r.Use(obs.HTTPObs{Metrics: metrics}.Middleware)
	ok := func(status int) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"data":{}}`))
		}
	}
	r.Get("/health/ready", ok(http.StatusOK))
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", ok(http.StatusOK))
		r.Post("/sessions", ok(http.StatusCreated))
		r.Route("/sessions/{session}", func(r chi.Router) {
			r.Post("/cart/items", ok(http.StatusCreated))
			r.Put("/delivery", ok(http.StatusOK))
			r.Post("/checkout", ok(http.StatusUnprocessableEntity))
		})
	})
	return r
}

func TestHTTPMetricsLabelRoutesBySurface(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("pizzeria", []float64{1, 10}, registry)
	handler := storefrontRouter(metrics)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodPost, "/api/v1/sessions/s-1/cart/items"},
		{http.MethodPost, "/api/v1/sessions/s-2/cart/items"},
		{http.MethodPost, "/api/v1/sessions/s-1/checkout"},
		{http.MethodGet, "/api/v1/catalog"},
		{http.MethodGet, "/nope"},
	} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.path, nil))
	}

	cart := metrics.ReqTotal.WithLabelValues(obs.SurfaceCart, http.MethodPost, "/api/v1/sessions/{session}/cart/items", "201")
	require.Equal(t, 2.0, testutil.ToFloat64(cart))
	checkout := metrics.ReqTotal.WithLabelValues(obs.SurfaceCheckout, http.MethodPost, "/api/v1/sessions/{session}/checkout", "422")
	require.Equal(t, 1.0, testutil.ToFloat64(checkout))
	catalog := metrics.ReqTotal.WithLabelValues(obs.SurfaceCatalog, http.MethodGet, "/api/v1/catalog", "200")
	require.Equal(t, 1.0, testutil.ToFloat64(catalog))
	unmatched := metrics.ReqTotal.WithLabelValues(obs.SurfaceOther, http.MethodGet, "unmatched", "404")
	require.Equal(t, 1.0, testutil.ToFloat64(unmatched))

	require.Equal(t, 4, testutil.CollectAndCount(metrics.ReqTotal), "session ids must not create series")
	require.Positive(t, testutil.CollectAndCount(metrics.ReqDur))
	require.Positive(t, testutil.CollectAndCount(metrics.RespSize))
	require.Equal(t, 0.0, testutil.ToFloat64(metrics.InFlight))
}

func TestHTTPMetricsReuseRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := obs.NewHTTPMetrics("pizzeria", nil, registry)
	second := obs.NewHTTPMetrics("pizzeria", nil, registry)
	require.Same(t, first.ReqTotal, second.ReqTotal)
}

func TestSurfaceFor(t *testing.T) {
	cases := map[string]string{
		"/api/v1/catalog":                             obs.SurfaceCatalog,
		"/api/v1/store":                               obs.SurfaceStore,
		"/api/v1/sessions":                            obs.SurfaceSession,
		"/api/v1/sessions/{session}/cart":             obs.SurfaceCart,
		"/api/v1/sessions/{session}/cart/items/{key}": obs.SurfaceCart,
		"/api/v1/sessions/{session}/delivery":         obs.SurfaceCart,
		"/api/v1/sessions/{session}/checkout":         obs.SurfaceCheckout,
		"/health/live":                                obs.SurfaceHealth,
		"/metrics":                                    obs.SurfaceOps,
		"":                                            obs.SurfaceOther,
	}
	for pattern, want := range cases {
		require.Equal(t, want, obs.SurfaceFor(pattern), pattern)
	}
}

func TestParseBucketsCSV(t *testing.T) {
	require.Nil(t, obs.ParseBucketsCSV(" "))
	require.Equal(t, []float64{5, 50, 250}, obs.ParseBucketsCSV("250, 5,x,-1,50,5"))
}
