package mexc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"sigbridge/internal/config"
	"sigbridge/internal/gateway/exchange"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.MexcConfig {
	return config.MexcConfig{
		APIKey:         "test-key",
		APISecret:      "test-secret",
		BaseURL:        baseURL,
		TimeoutSeconds: 5,
		RatePerSecond:  1000,
		RateBurst:      10,
	}
}

func newTestGateway(t *testing.T, handler http.Handler) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g, err := New(testConfig(srv.URL))
	require.NoError(t, err)
	return g, srv
}

func contractDetailHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/private/position/position_mode/change":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "code": 0})
		case "/api/v1/contract/detail":
			assert.Equal(t, "FLOW_USDT", r.URL.Query().Get("symbol"))
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"code":    0,
				"data": map[string]any{
					"symbol":       "FLOW_USDT",
					"priceUnit":    0.0001,
					"volUnit":      1,
					"minVol":       1,
					"contractSize": 10,
					"maxLeverage":  200,
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}
}

func TestResolveSymbolIdempotent(t *testing.T) {
	g, _ := newTestGateway(t, contractDetailHandler(t))

	sym := g.ResolveSymbol("FLOW/USDT")
	assert.Equal(t, "FLOW/USDT:USDT", sym)
	assert.Equal(t, sym, g.ResolveSymbol(sym))
}

func TestLoadMarketAndRounding(t *testing.T) {
	g, _ := newTestGateway(t, contractDetailHandler(t))

	info, err := g.LoadMarket(context.Background(), "FLOW/USDT:USDT")
	require.NoError(t, err)
	assert.Equal(t, 10.0, info.AmountStep) // volUnit(1) * contractSize(10)
	assert.Equal(t, 10.0, info.MinAmount)
	assert.Equal(t, 0.0001, info.PriceStep)

	assert.Equal(t, 450.0, g.RoundAmount("FLOW/USDT:USDT", 454.545454))
	assert.Equal(t, 0.5545, g.RoundPrice("FLOW/USDT:USDT", 0.55459))
}

func TestRoundingWithoutMarketIsPassthrough(t *testing.T) {
	g, _ := newTestGateway(t, contractDetailHandler(t))

	assert.Equal(t, 454.5, g.RoundAmount("SOL/USDT:USDT", 454.5))
	assert.Equal(t, 0.5545, g.RoundPrice("SOL/USDT:USDT", 0.5545))
}

func TestLoadMarketCached(t *testing.T) {
	var calls int64
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/contract/detail" {
			atomic.AddInt64(&calls, 1)
		}
		contractDetailHandler(t)(w, r)
	}))

	for i := 0; i < 3; i++ {
		_, err := g.LoadMarket(context.Background(), "FLOW/USDT:USDT")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
}

func TestLoadMarketUnknownContract(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "code": 0, "data": map[string]any{}})
	}))

	_, err := g.LoadMarket(context.Background(), "NOPE/USDT:USDT")
	assert.Error(t, err)
}

func TestSubmitMarketOrder(t *testing.T) {
	var captured submitOrderRequest
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/private/order/submit":
			assert.NotEmpty(t, r.Header.Get("ApiKey"))
			assert.NotEmpty(t, r.Header.Get("Request-Time"))
			assert.NotEmpty(t, r.Header.Get("Signature"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(map[string]any{"success": true, "code": 0, "data": "102015012431820000"})
		default:
			contractDetailHandler(t)(w, r)
		}
	}))

	_, err := g.LoadMarket(context.Background(), "FLOW/USDT:USDT")
	require.NoError(t, err)

	record, err := g.SubmitOrder(context.Background(), "FLOW/USDT:USDT", exchange.OrderTypeMarket, exchange.SideBuy, 450, exchange.OrderParams{
		MarginMode: "isolated",
		Leverage:   25,
	})
	require.NoError(t, err)
	assert.Equal(t, "102015012431820000", record.ID)
	assert.NotEmpty(t, record.ClientOrderID)
	assert.Equal(t, exchange.SideBuy, record.Side)
	assert.Equal(t, 450.0, record.Amount)

	assert.Equal(t, "FLOW_USDT", captured.Symbol)
	assert.Equal(t, 45.0, captured.Vol) // 450 / contractSize(10)
	assert.Equal(t, sideOpenLong, captured.Side)
	assert.Equal(t, openTypeIsolated, captured.OpenType)
	assert.Equal(t, 25, captured.Leverage)
	assert.False(t, captured.ReduceOnly)
}

func TestSubmitTriggerOrder(t *testing.T) {
	var captured planOrderRequest
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/private/planorder/place":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(map[string]any{"success": true, "code": 0, "data": "7788"})
		default:
			contractDetailHandler(t)(w, r)
		}
	}))

	_, err := g.LoadMarket(context.Background(), "FLOW/USDT:USDT")
	require.NoError(t, err)

	record, err := g.SubmitOrder(context.Background(), "FLOW/USDT:USDT", exchange.OrderTypeTakeProfit, exchange.SideSell, 450, exchange.OrderParams{
		MarginMode:   "isolated",
		ReduceOnly:   true,
		TriggerPrice: 0.70,
	})
	require.NoError(t, err)
	assert.Equal(t, "7788", record.ID)

	assert.Equal(t, sideCloseLong, captured.Side)
	assert.Equal(t, 0.70, captured.TriggerPrice)
	assert.Equal(t, triggerGTE, captured.TriggerType)
	assert.True(t, captured.ReduceOnly)
}

func TestSubmitTriggerOrderRequiresPrice(t *testing.T) {
	g, _ := newTestGateway(t, contractDetailHandler(t))
	_, err := g.LoadMarket(context.Background(), "FLOW/USDT:USDT")
	require.NoError(t, err)

	_, err = g.SubmitOrder(context.Background(), "FLOW/USDT:USDT", exchange.OrderTypeStopLoss, exchange.SideSell, 450, exchange.OrderParams{ReduceOnly: true})
	assert.Error(t, err)
}

func TestSubmitOrderExchangeRejection(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/private/order/submit":
			json.NewEncoder(w).Encode(map[string]any{"success": false, "code": 2005, "message": "insufficient balance"})
		default:
			contractDetailHandler(t)(w, r)
		}
	}))
	_, err := g.LoadMarket(context.Background(), "FLOW/USDT:USDT")
	require.NoError(t, err)

	_, err = g.SubmitOrder(context.Background(), "FLOW/USDT:USDT", exchange.OrderTypeMarket, exchange.SideBuy, 450, exchange.OrderParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient balance")
}

func TestTriggerTypeOrientation(t *testing.T) {
	// 多头：止盈在上方触发，止损在下方触发；空头相反。
	assert.Equal(t, triggerGTE, triggerTypeFor(exchange.OrderTypeTakeProfit, exchange.SideSell))
	assert.Equal(t, triggerLTE, triggerTypeFor(exchange.OrderTypeStopLoss, exchange.SideSell))
	assert.Equal(t, triggerLTE, triggerTypeFor(exchange.OrderTypeTakeProfit, exchange.SideBuy))
	assert.Equal(t, triggerGTE, triggerTypeFor(exchange.OrderTypeStopLoss, exchange.SideBuy))
}
