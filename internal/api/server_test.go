package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veigaco/biomarket-cas/internal/engine"
	"github.com/veigaco/biomarket-cas/internal/metrics"
	"github.com/veigaco/biomarket-cas/internal/randgen"
	"github.com/veigaco/biomarket-cas/internal/scheduler"
)

func newTestServer(t *testing.T, cfg Config) (*Server, *engine.Engine) {
	t.Helper()
	eng := engine.New(engine.DefaultConfig(), nil, randgen.New(1), nil)
	sched := scheduler.New(eng, nil, time.Hour, 1) // never actually ticks in these tests
	met := metrics.New(prometheus.NewRegistry())
	return New(eng, sched, met, nil, cfg), eng
}

func TestHealthzReturnsOK(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListStocksReturnsSeedPopulation(t *testing.T) {
	srv, eng := newTestServer(t, Config{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stocks", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Stocks []map[string]any `json:"stocks"`
		Total  int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, len(eng.Snapshot().Stocks), body.Total)
	assert.LessOrEqual(t, len(body.Stocks), 50) // default perPage
}

func TestGetStockUnknownTickerReturns404(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stocks/NOPE", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetStockKnownTickerReturns200(t *testing.T) {
	srv, eng := newTestServer(t, Config{})
	ticker := eng.Snapshot().Stocks[0].Ticker

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stocks/"+ticker, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Ticker string `json:"ticker"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ticker, body.Ticker)
}

func TestAuthMiddlewareRejectsMissingKeyWhenConfigured(t *testing.T) {
	srv, _ := newTestServer(t, Config{APIKeys: []string{"secret"}})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/market", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareAcceptsValidBearerKey(t *testing.T) {
	srv, _ := newTestServer(t, Config{APIKeys: []string{"secret"}})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/market", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitExceededReturns429(t *testing.T) {
	srv, _ := newTestServer(t, Config{RateLimitPerSec: 1, RateLimitBurst: 1})

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/market", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		return rec.Code
	}

	first := do()
	second := do()

	assert.Equal(t, http.StatusOK, first)
	assert.Equal(t, http.StatusTooManyRequests, second)
}

func TestAnalyticsEndpointReturnsSummary(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Summary struct {
			TotalCompletedCycles int `json:"totalCompletedCycles"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Summary.TotalCompletedCycles)
}
