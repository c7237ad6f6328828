package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-lab/internal/config"
	apperrors "options-lab/internal/errors"
	"options-lab/internal/health"
	"options-lab/internal/models"
	"options-lab/internal/service"
	"options-lab/internal/store"
)

func newTestServer(t *testing.T, withHistory bool) http.Handler {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Mode = "test"

	var history store.HistoryStore
	if withHistory {
		st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		history = st
	}

	svc := service.NewOptionsService(cfg, history, zerolog.Nop())
	t.Cleanup(svc.Close)
	return New(cfg.Server, svc, zerolog.Nop()).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(t, true), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Status  string              `json:"status"`
		History bool                `json:"history"`
		Health  health.SystemHealth `json:"health"`
	}
	decode(t, w, &body)
	assert.Equal(t, "HEALTHY", body.Status)
	assert.True(t, body.History)

	for _, name := range []string{"batch", "goroutines", "history", "memory"} {
		c, ok := body.Health.Component(name)
		require.True(t, ok, name)
		assert.Equal(t, health.StatusHealthy, c.Status, name)
	}
}

func TestListStrategies(t *testing.T) {
	w := do(t, newTestServer(t, false), http.MethodGet, "/api/v1/strategies", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Supported []string `json:"supported"`
		Tiers     []struct {
			Tier       string `json:"tier"`
			Strategies []struct {
				Name      string `json:"name"`
				Supported bool   `json:"supported"`
			} `json:"strategies"`
		} `json:"tiers"`
	}
	decode(t, w, &body)
	assert.Len(t, body.Supported, 8)
	require.Len(t, body.Tiers, 4)
	assert.Equal(t, "novice", body.Tiers[0].Tier)
}

func TestPrice(t *testing.T) {
	h := newTestServer(t, false)

	w := do(t, h, http.MethodPost, "/api/v1/options/price", map[string]interface{}{
		"type": "call", "spot": 100, "strike": 100, "days_to_expiry": 365, "risk_free_rate": 0.05, "volatility": 0.2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var quote models.PriceQuote
	decode(t, w, &quote)
	assert.Equal(t, models.Call, quote.Type)
	assert.InDelta(t, 10.4506, quote.Price, 1e-3)
	assert.InDelta(t, 0.6368, quote.Greeks.Delta, 1e-3)
}

func TestPrice_Errors(t *testing.T) {
	h := newTestServer(t, false)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"malformed json", `{"spot":`, http.StatusBadRequest},
		{"bad type", map[string]interface{}{"type": "future", "spot": 100, "strike": 100}, http.StatusBadRequest},
		{"negative strike", map[string]interface{}{"type": "put", "spot": 100, "strike": -1}, http.StatusBadRequest},
		{"zero volatility", map[string]interface{}{"type": "put", "spot": 100, "strike": 100, "volatility": 0}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/options/price", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestAnalyze_SavesAndServesHistory(t *testing.T) {
	h := newTestServer(t, true)

	w := do(t, h, http.MethodPost, "/api/v1/strategies/analyze", map[string]interface{}{
		"underlying_symbol": "SPY",
		"underlying_price":  450,
		"strategy_name":     "Bull Call Spread",
		"parameters":        map[string]float64{"long_strike": 445, "short_strike": 455},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result models.AnalysisResult
	decode(t, w, &result)
	require.NotEmpty(t, result.ID)
	assert.Equal(t, "Bull Call Spread", result.Strategy.Name)
	assert.Len(t, result.Analysis.PriceGrid, 100)
	assert.Equal(t, 445.0, result.Strategy.Legs[0].Strike)

	w = do(t, h, http.MethodGet, "/api/v1/analyses?symbol=SPY&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count    int                     `json:"count"`
		Analyses []store.AnalysisSummary `json:"analyses"`
	}
	decode(t, w, &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, result.ID, list.Analyses[0].ID)

	w = do(t, h, http.MethodGet, "/api/v1/analyses/"+result.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var record store.AnalysisRecord
	decode(t, w, &record)
	assert.Equal(t, result.Analysis.MaxProfit, record.Analysis.MaxProfit)

	w = do(t, h, http.MethodDelete, "/api/v1/analyses/"+result.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, http.MethodGet, "/api/v1/analyses/"+result.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyze_SaveFalse(t *testing.T) {
	h := newTestServer(t, true)

	w := do(t, h, http.MethodPost, "/api/v1/strategies/analyze?save=false", map[string]interface{}{
		"underlying_symbol": "AAPL", "underlying_price": 190, "strategy_name": "Long Put",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"id"`)
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	h := newTestServer(t, false)

	w := do(t, h, http.MethodPost, "/api/v1/strategies/analyze", map[string]interface{}{
		"underlying_price": 100, "strategy_name": "Jade Lizard",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/strategies/analyze", map[string]interface{}{
		"underlying_price": 0, "strategy_name": "Long Call",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompare(t *testing.T) {
	h := newTestServer(t, false)

	w := do(t, h, http.MethodPost, "/api/v1/strategies/compare", map[string]interface{}{
		"underlying_symbol": "QQQ",
		"underlying_price":  400,
		"strategies":        []string{"Long Straddle", "Butterfly", "Iron Condor"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Count   int `json:"count"`
		Results []struct {
			Name     string                   `json:"name"`
			Analysis *models.StrategyAnalysis `json:"analysis"`
			Error    string                   `json:"error"`
		} `json:"results"`
	}
	decode(t, w, &body)
	require.Equal(t, 3, body.Count)
	assert.Equal(t, "Long Straddle", body.Results[0].Name)
	assert.NotNil(t, body.Results[0].Analysis)
	assert.NotEmpty(t, body.Results[1].Error)
	assert.Nil(t, body.Results[1].Analysis)
	assert.Equal(t, "Iron Condor", body.Results[2].Name)
}

func TestListAnalyses_BadQuery(t *testing.T) {
	h := newTestServer(t, true)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/analyses?limit=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/analyses?since=yesterday", nil).Code)
}

func TestHistoryDisabled(t *testing.T) {
	w := do(t, newTestServer(t, false), http.MethodGet, "/api/v1/analyses", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.NewValidationError("spot", -1, "must be positive"), http.StatusBadRequest},
		{apperrors.NewPricingError("price", "zero volatility", apperrors.ErrDegenerateInput), http.StatusBadRequest},
		{apperrors.NewStrategyError("Butterfly", "unknown", apperrors.ErrStrategyNotImplemented), http.StatusUnprocessableEntity},
		{fmt.Errorf("analysis x: %w", apperrors.ErrDataNotFound), http.StatusNotFound},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Mode = "test"
	cfg.Server.Addr = "127.0.0.1:0"

	svc := service.NewOptionsService(cfg, nil, zerolog.Nop())
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, New(cfg.Server, svc, zerolog.Nop()).Run(ctx))
}
