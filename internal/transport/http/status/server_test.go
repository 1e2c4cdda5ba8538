package statushttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sigbridge/internal/config/loader"
	"sigbridge/internal/executor/bracket"
	"sigbridge/internal/gateway/exchange"
	"sigbridge/internal/signal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okResult() *bracket.BracketResult {
	return &bracket.BracketResult{
		Signal: signal.Signal{Pair: "FLOW/USDT", Direction: signal.Long, Entry: 0.55},
		Intent: bracket.TradeIntent{Symbol: "FLOW/USDT:USDT", Side: "buy", Amount: 450},
		Opened: bracket.OrderOutcome{Order: &exchange.OrderRecord{ID: "1001"}},
		TP:     &bracket.OrderOutcome{Order: &exchange.OrderRecord{ID: "1002"}},
		SL:     &bracket.OrderOutcome{Order: &exchange.OrderRecord{ID: "1003"}},
	}
}

func TestTrackerCounters(t *testing.T) {
	tr := NewTracker()
	tr.Record(okResult(), nil)

	partial := okResult()
	partial.TP = &bracket.OrderOutcome{Err: "rejected"}
	tr.Record(partial, nil)

	dry := okResult()
	dry.DryRun = true
	tr.Record(dry, nil)

	tr.Record(nil, errors.New("insufficient balance"))

	counters, recent, _ := tr.Snapshot()
	assert.Equal(t, int64(4), counters.Total)
	assert.Equal(t, int64(1), counters.Filled)
	assert.Equal(t, int64(1), counters.Partial)
	assert.Equal(t, int64(1), counters.DryRun)
	assert.Equal(t, int64(1), counters.Failed)

	require.Len(t, recent, 4)
	// 最新在前
	assert.Equal(t, "insufficient balance", recent[0].Error)
	assert.Equal(t, "FLOW/USDT", recent[3].Pair)
}

func TestTrackerRecentBounded(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < recentCapacity+10; i++ {
		tr.Record(okResult(), nil)
	}
	_, recent, _ := tr.Snapshot()
	assert.Len(t, recent, recentCapacity)
}

func TestStatusEndpoint(t *testing.T) {
	tr := NewTracker()
	tr.Record(okResult(), nil)

	srv, err := NewServer(ServerConfig{
		Exchange: "mexc",
		Tracker:  tr,
		Params:   loader.StaticParams{MarginUSDT: 10, Leverage: 25, DryRun: true},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "mexc", body["exchange"])
	params, ok := body["params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, params["dry_run"])
	assert.Equal(t, float64(25), params["leverage"])
}

func TestHealthz(t *testing.T) {
	srv, err := NewServer(ServerConfig{Tracker: NewTracker()})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
