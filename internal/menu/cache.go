package menu

import (
	"sync"
	"time"

	"github.com/wcrave/wellesley-crave/internal/model"
)

// ttlCache memoizes fetched menus per (date, locationID, mealID) key.
//
// Menus change at most a few times a day, and the favorites matcher alone
// makes 12 vendor calls per check; an hour of staleness is invisible to
// users and cuts the fan-out to zero on warm paths. This is purely a
// performance shortcut — expiry or a cold start behaves identically to
// never having cached.
//
// The keyspace is tiny (combos × days), so entries are only evicted lazily
// on read; there is no sweeper goroutine to manage.
type ttlCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	items     []model.MenuItem
	expiresAt time.Time
}

func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *ttlCache) get(key string) ([]model.MenuItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.items, true
}

func (c *ttlCache) put(key string, items []model.MenuItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		items:     items,
		expiresAt: time.Now().Add(c.ttl),
	}
}
