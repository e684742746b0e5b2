package hub

import (
	"context"

	"github.com/skadri1601/TradeSignal-sub001/internal/domain/trade"
)

// Connection is a subscriber attached to the hub.
type Connection interface {
	ID() string
	Send(ctx context.Context, event *Event) error
	Close() error
	IsClosed() bool
	Context() context.Context
}

// Event is one push frame: {"type": ..., "trade": {...}}.
type Event struct {
	Type  string       `json:"type"`
	Trade *trade.Trade `json:"trade,omitempty"`
}
