package health_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pizzeria-storefront/internal/health"
)

type noopChecker struct{}

func (noopChecker) PingRedis(context.Context, time.Duration) error { return nil }

func readyStatus(t *testing.T, handler health.Handler) (int, map[string]string) {
	t.Helper()
	rr := httptest.NewRecorder()
	handler.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	var status map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	return rr.Code, status
}

func TestReadinessDrainsDuringShutdown(t *testing.T) {
	t.Cleanup(func() { health.SetReady(true) })
	handler := health.Handler{Checker: noopChecker{}, Config: stubSnapshot(true)}

	health.SetReady(true)
	code, status := readyStatus(t, handler)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, map[string]string{"redis": "ok", "config": "ok"}, status)

	health.SetReady(false)
	code, status = readyStatus(t, handler)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, map[string]string{"server": "draining"}, status)

	health.SetReady(true)
	code, _ = readyStatus(t, handler)
	require.Equal(t, http.StatusOK, code)
}

func TestReadinessWithoutChecker(t *testing.T) {
	rr := httptest.NewRecorder()
	health.Handler{Config: stubSnapshot(true)}.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Contains(t, rr.Body.String(), "dependencies unavailable")
}
