package hub

import (
	"fmt"

	"github.com/skadri1601/TradeSignal-sub001/internal/domain/trade"
)

// TradeCreatedEvent announces a newly filed trade.
func TradeCreatedEvent(t *trade.Trade) *Event {
	return &Event{Type: trade.EventCreated, Trade: t}
}

// TradeUpdatedEvent announces a change to an existing trade.
func TradeUpdatedEvent(t *trade.Trade) *Event {
	return &Event{Type: trade.EventUpdated, Trade: t}
}

// IsValidEventType checks if an event type is one the hub publishes.
func IsValidEventType(eventType string) bool {
	switch eventType {
	case trade.EventCreated, trade.EventUpdated:
		return true
	}
	return false
}

// ValidateEvent validates an event before it is broadcast.
func ValidateEvent(event *Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if !IsValidEventType(event.Type) {
		return fmt.Errorf("unsupported event type %q", event.Type)
	}
	if event.Trade == nil {
		return fmt.Errorf("%s event carries no trade", event.Type)
	}
	if err := event.Trade.Validate(); err != nil {
		return fmt.Errorf("invalid trade in %s event: %w", event.Type, err)
	}
	return nil
}
