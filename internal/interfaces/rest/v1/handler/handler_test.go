package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skadri1601/TradeSignal-sub001/internal/application/feed"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/hub"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/logger"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/stream"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStreamClient struct {
	mu      sync.Mutex
	enabled bool
	status  stream.Status
}

func (f *fakeStreamClient) Status() stream.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeStreamClient) Endpoint() string { return "wss://api.example.com" + stream.StreamPath }

func (f *fakeStreamClient) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *fakeStreamClient) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
	if enabled {
		f.status = stream.StatusConnecting
	} else {
		f.status = stream.StatusIdle
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func newStreamRouter(client StreamClient, f *feed.Feed) *gin.Engine {
	router := gin.New()
	InitStreamRouter(logger.NewDiscardLogger(), client, f, router.Group(""))
	return router
}

func TestStreamHandler_StatusAndToggle(t *testing.T) {
	client := &fakeStreamClient{enabled: true, status: stream.StatusOpen}
	f := feed.New(feed.NewCache(), logger.NewDiscardLogger())
	router := newStreamRouter(client, f)

	w, body := doJSON(t, router, http.MethodGet, "/stream/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "open", body["status"])
	assert.Equal(t, true, body["enabled"])
	assert.Equal(t, "wss://api.example.com/api/v1/trades/stream", body["endpoint"])

	w, body = doJSON(t, router, http.MethodPut, "/stream/enabled", map[string]bool{"enabled": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["enabled"])
	assert.Equal(t, "idle", body["status"])

	w, _ = doJSON(t, router, http.MethodPut, "/stream/enabled", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStreamHandler_RecentTradesAndCache(t *testing.T) {
	client := &fakeStreamClient{enabled: true, status: stream.StatusOpen}
	f := feed.New(feed.NewCache(), logger.NewDiscardLogger())
	f.Cache().Touch(feed.KeyTrades)
	router := newStreamRouter(client, f)

	for _, frame := range []string{
		`{"type":"trade_created","trade":{"id":1,"ticker":"msft"}}`,
		`{"type":"trade_created","trade":{"id":2,"ticker":"nvda"}}`,
	} {
		msg, err := stream.DecodeMessage([]byte(frame))
		require.NoError(t, err)
		f.Handle(msg)
	}

	w, body := doJSON(t, router, http.MethodGet, "/trades/recent?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])
	trades := body["trades"].([]any)
	assert.Equal(t, "NVDA", trades[0].(map[string]any)["ticker"])

	w, _ = doJSON(t, router, http.MethodGet, "/trades/recent?limit=-3", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = doJSON(t, router, http.MethodGet, "/cache", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := body["entries"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, true, entries[0].(map[string]any)["stale"])
}

func newTradeRouter(t *testing.T) (*gin.Engine, *hub.Hub) {
	t.Helper()

	h := hub.New(logger.NewDiscardLogger())
	require.NoError(t, h.Start(context.Background()))
	t.Cleanup(func() { h.Stop(context.Background()) })

	router := gin.New()
	InitTradeRouter(logger.NewDiscardLogger(), h, router.Group(""))
	return router, h
}

func TestTradeHandler_CreateAndUpdate(t *testing.T) {
	router, h := newTradeRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/api/v1/trades", map[string]any{
		"ticker":           "aapl",
		"insider_name":     "Jane Doe",
		"transaction_type": "buy",
		"shares":           1000,
		"price_per_share":  187.5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "trade_created", body["type"])
	created := body["trade"].(map[string]any)
	assert.EqualValues(t, 1, created["id"])
	assert.Equal(t, "AAPL", created["ticker"])

	w, body = doJSON(t, router, http.MethodPut, "/api/v1/trades/1", map[string]any{
		"ticker":           "AAPL",
		"insider_name":     "Jane Doe",
		"transaction_type": "SELL",
		"shares":           500,
		"filed_at":         "2026-10-01T12:00:00Z",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "trade_updated", body["type"])
	updated := body["trade"].(map[string]any)
	assert.Equal(t, "sell", updated["transaction_type"])
	assert.Equal(t, "2026-10-01T12:00:00Z", updated["filed_at"])

	assert.EqualValues(t, 2, h.Published())
}

func TestTradeHandler_RejectsBadInput(t *testing.T) {
	router, h := newTradeRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/trades", map[string]any{
		"ticker": "AAPL",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/trades", map[string]any{
		"ticker":           "AAPL",
		"insider_name":     "Jane Doe",
		"transaction_type": "gift",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, router, http.MethodPut, "/api/v1/trades/abc", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Zero(t, h.Published())
}
