package feed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skadri1601/TradeSignal-sub001/internal/domain/trade"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/logger"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/stream"
)

func decode(t *testing.T, frame string) stream.Message {
	t.Helper()
	msg, err := stream.DecodeMessage([]byte(frame))
	require.NoError(t, err)
	return msg
}

func newTestFeed() *Feed {
	return New(NewCache(), logger.NewDiscardLogger())
}

func TestCache_InvalidateCoversDescendants(t *testing.T) {
	c := NewCache()
	c.Touch(KeyTrades)
	c.Touch(TradeKey(7))
	c.Touch("tradesmen")
	c.Touch(KeyDashboard)

	assert.Equal(t, 2, c.Invalidate(KeyTrades))
	assert.True(t, c.IsStale(KeyTrades))
	assert.True(t, c.IsStale("trades/7"))
	assert.False(t, c.IsStale("tradesmen"))
	assert.False(t, c.IsStale(KeyDashboard))

	// already stale entries are not counted twice
	assert.Equal(t, 0, c.Invalidate(KeyTrades))

	c.Touch(KeyTrades)
	assert.False(t, c.IsStale(KeyTrades))
	assert.True(t, c.IsStale("never-fetched"))

	snap := c.Snapshot()
	require.Len(t, snap, 4)
	assert.Equal(t, "dashboard", snap[0].Key)
	assert.EqualValues(t, 2, snap[1].Version)
}

func TestFeed_TradeCreatedInvalidatesAndRecords(t *testing.T) {
	f := newTestFeed()
	f.Cache().Touch(KeyTrades)
	f.Cache().Touch(KeyDashboard)

	require.NoError(t, f.Apply(decode(t, `{"type":"trade_created","trade":{"id":1,"ticker":"aapl","transaction_type":"BUY"}}`)))

	assert.True(t, f.Cache().IsStale(KeyTrades))
	assert.True(t, f.Cache().IsStale(KeyDashboard))

	recent := f.Recent(0)
	require.Len(t, recent, 1)
	assert.Equal(t, "AAPL", recent[0].Ticker)
	assert.Equal(t, trade.TransactionBuy, recent[0].TransactionType)

	stats := f.Stats()
	assert.EqualValues(t, 1, stats.Events[trade.EventCreated])
	assert.EqualValues(t, 2, stats.Invalidated)
	assert.False(t, stats.LastEventAt.IsZero())
}

func TestFeed_TradeUpdatedReplacesInPlace(t *testing.T) {
	f := newTestFeed()

	require.NoError(t, f.Apply(decode(t, `{"type":"trade_created","trade":{"id":1,"shares":10}}`)))
	require.NoError(t, f.Apply(decode(t, `{"type":"trade_created","trade":{"id":2,"shares":20}}`)))
	require.NoError(t, f.Apply(decode(t, `{"type":"trade_updated","trade":{"id":1,"shares":15}}`)))
	require.NoError(t, f.Apply(decode(t, `{"type":"trade_updated","trade":{"id":99,"shares":1}}`)))

	recent := f.Recent(0)
	require.Len(t, recent, 2)
	assert.EqualValues(t, 2, recent[0].ID)
	assert.EqualValues(t, 1, recent[1].ID)
	assert.InDelta(t, 15.0, recent[1].Shares, 1e-9)
	assert.EqualValues(t, 2, f.Stats().Events[trade.EventUpdated])
}

func TestFeed_RecentIsBoundedAndDeduplicated(t *testing.T) {
	f := newTestFeed()

	for i := 1; i <= RecentCapacity+10; i++ {
		require.NoError(t, f.Apply(decode(t, fmt.Sprintf(`{"type":"trade_created","trade":{"id":%d}}`, i))))
	}
	require.NoError(t, f.Apply(decode(t, `{"type":"trade_created","trade":{"id":30}}`)))

	recent := f.Recent(0)
	require.Len(t, recent, RecentCapacity)
	assert.EqualValues(t, 30, recent[0].ID)
	assert.EqualValues(t, RecentCapacity+10, recent[1].ID)

	seen := make(map[int64]bool)
	for _, tr := range recent {
		assert.False(t, seen[tr.ID], "trade %d listed twice", tr.ID)
		seen[tr.ID] = true
	}

	assert.Len(t, f.Recent(5), 5)
}

func TestFeed_RejectsBadPayloads(t *testing.T) {
	f := newTestFeed()

	assert.ErrorIs(t, f.Apply(decode(t, `{"type":"heartbeat"}`)), ErrUnknownEvent)
	assert.Error(t, f.Apply(decode(t, `{"type":"trade_created"}`)))
	assert.Error(t, f.Apply(decode(t, `{"type":"trade_created","trade":"oops"}`)))
	assert.ErrorIs(t, f.Apply(decode(t, `{"type":"trade_created","trade":{"id":0}}`)), trade.ErrMissingID)

	assert.Empty(t, f.Recent(0))
	assert.EqualValues(t, 3, f.Stats().Rejected)

	// Handle never panics or propagates
	f.Handle(decode(t, `{"type":"trade_updated","trade":{"id":-1}}`))
	assert.EqualValues(t, 4, f.Stats().Rejected)
}

func TestFeed_NormalizesBeforeValidating(t *testing.T) {
	f := newTestFeed()

	require.NoError(t, f.Apply(decode(t, `{"type":"trade_created","trade":{"id":3,"ticker":"msft","transaction_type":"BUY"}}`)))
	require.NoError(t, f.Apply(decode(t, `{"type":"trade_updated","trade":{"id":3,"ticker":"msft","transaction_type":" Sell "}}`)))

	recent := f.Recent(0)
	require.Len(t, recent, 1)
	assert.Equal(t, trade.TransactionSell, recent[0].TransactionType)
	assert.Zero(t, f.Stats().Rejected)
}
