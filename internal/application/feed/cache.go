package feed

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Query keys the dashboard and trade screens read through.
const (
	KeyTrades    = "trades"
	KeyDashboard = "dashboard"
)

// TradeKey is the detail key of one trade.
func TradeKey(id int64) string {
	return KeyTrades + "/" + strconv.FormatInt(id, 10)
}

type Entry struct {
	Key       string    `json:"key"`
	Version   uint64    `json:"version"`
	Stale     bool      `json:"stale"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Cache tracks freshness of query keys. Keys are slash separated and
// invalidating a key also invalidates everything below it.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

// Touch records a fresh fetch of key.
func (c *Cache) Touch(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &Entry{Key: key}
		c.entries[key] = e
	}
	e.Version++
	e.Stale = false
	e.UpdatedAt = c.now()
}

// Invalidate marks key and its descendants stale and returns how many
// fresh entries it flipped.
func (c *Cache) Invalidate(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	flipped := 0
	for k, e := range c.entries {
		if k != key && !strings.HasPrefix(k, key+"/") {
			continue
		}
		if !e.Stale {
			e.Stale = true
			e.UpdatedAt = c.now()
			flipped++
		}
	}
	return flipped
}

// IsStale reports whether key must be refetched. Unknown keys are stale.
func (c *Cache) IsStale(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return !ok || e.Stale
}

// Snapshot returns a copy of every entry ordered by key.
func (c *Cache) Snapshot() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
