package feed

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/skadri1601/TradeSignal-sub001/internal/domain/trade"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/logger"
	"github.com/skadri1601/TradeSignal-sub001/internal/infrastructure/stream"
)

// RecentCapacity bounds the recent-trades list.
const RecentCapacity = 50

var ErrUnknownEvent = errors.New("unknown stream event type")

type Stats struct {
	Events      map[string]int64 `json:"events"`
	Invalidated int64            `json:"invalidated"`
	Rejected    int64            `json:"rejected"`
	LastEventAt time.Time        `json:"last_event_at,omitzero"`
}

// Feed turns trade announcements from the push channel into cache
// invalidations and a bounded list of recent trades, newest first.
type Feed struct {
	cache  *Cache
	logger logger.Logger
	now    func() time.Time

	mu     sync.RWMutex
	recent []trade.Trade
	stats  Stats
}

func New(cache *Cache, logger logger.Logger) *Feed {
	return &Feed{
		cache:  cache,
		logger: logger.WithField("component", "feed"),
		now:    time.Now,
		stats:  Stats{Events: make(map[string]int64)},
	}
}

// Handle is the stream.HandlerFunc for the feed. Failures are logged.
func (f *Feed) Handle(msg stream.Message) {
	if err := f.Apply(msg); err != nil {
		if errors.Is(err, ErrUnknownEvent) {
			f.logger.Debugf("ignoring %q stream event", msg.Type)
			return
		}
		f.logger.Warnf("rejected %q stream event: %v", msg.Type, err)
	}
}

// Apply processes one stream message.
func (f *Feed) Apply(msg stream.Message) error {
	switch msg.Type {
	case trade.EventCreated, trade.EventUpdated:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, msg.Type)
	}

	var payload struct {
		Trade *trade.Trade `json:"trade"`
	}
	if err := msg.Decode(&payload); err != nil {
		f.reject()
		return fmt.Errorf("failed to decode trade payload: %w", err)
	}
	if payload.Trade == nil {
		f.reject()
		return fmt.Errorf("%s event carries no trade", msg.Type)
	}
	t := *payload.Trade
	t.Normalize()
	if err := t.Validate(); err != nil {
		f.reject()
		return err
	}

	f.mu.Lock()
	if msg.Type == trade.EventCreated {
		f.upsertFront(t)
	} else {
		f.replace(t)
	}
	f.stats.Events[msg.Type]++
	f.stats.LastEventAt = f.now()
	f.mu.Unlock()

	flipped := f.cache.Invalidate(KeyTrades) + f.cache.Invalidate(KeyDashboard)

	f.mu.Lock()
	f.stats.Invalidated += int64(flipped)
	f.mu.Unlock()

	f.logger.Debugf("%s for trade %d invalidated %d cache entries", msg.Type, t.ID, flipped)
	return nil
}

func (f *Feed) reject() {
	f.mu.Lock()
	f.stats.Rejected++
	f.mu.Unlock()
}

// upsertFront moves t to the head of the list, dropping any older copy.
func (f *Feed) upsertFront(t trade.Trade) {
	next := make([]trade.Trade, 0, min(len(f.recent)+1, RecentCapacity))
	next = append(next, t)
	for _, existing := range f.recent {
		if existing.ID == t.ID {
			continue
		}
		if len(next) == RecentCapacity {
			break
		}
		next = append(next, existing)
	}
	f.recent = next
}

// replace swaps an existing copy of t in place; unseen trades are ignored
// because their list position is unknown.
func (f *Feed) replace(t trade.Trade) {
	for i := range f.recent {
		if f.recent[i].ID == t.ID {
			f.recent[i] = t
			return
		}
	}
}

// Recent returns up to limit trades, newest first. limit <= 0 means all.
func (f *Feed) Recent(limit int) []trade.Trade {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if limit <= 0 || limit > len(f.recent) {
		limit = len(f.recent)
	}
	out := make([]trade.Trade, limit)
	copy(out, f.recent[:limit])
	return out
}

func (f *Feed) Stats() Stats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	events := make(map[string]int64, len(f.stats.Events))
	for k, v := range f.stats.Events {
		events[k] = v
	}
	s := f.stats
	s.Events = events
	return s
}

// Cache exposes the cache the feed invalidates.
func (f *Feed) Cache() *Cache {
	return f.cache
}
