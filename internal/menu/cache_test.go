package menu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wcrave/wellesley-crave/internal/model"
)

func TestTTLCache_HitAndMiss(t *testing.T) {
	cache := newTTLCache(time.Hour)

	_, ok := cache.get("cold")
	assert.False(t, ok)

	items := []model.MenuItem{{Name: "Pizza"}}
	cache.put("warm", items)

	got, ok := cache.get("warm")
	assert.True(t, ok)
	assert.Equal(t, items, got)
}

func TestTTLCache_Expiry(t *testing.T) {
	// A negative TTL makes every entry born expired, so the expiry branch
	// runs without sleeping in the test.
	cache := newTTLCache(-time.Second)
	cache.put("k", []model.MenuItem{{Name: "Pizza"}})

	_, ok := cache.get("k")
	assert.False(t, ok)

	// The expired entry is evicted, not just hidden.
	cache.mu.Lock()
	_, stillThere := cache.entries["k"]
	cache.mu.Unlock()
	assert.False(t, stillThere)
}

func TestTTLCache_EmptySliceIsCacheable(t *testing.T) {
	cache := newTTLCache(time.Hour)
	cache.put("empty-day", []model.MenuItem{})

	got, ok := cache.get("empty-day")
	assert.True(t, ok, "a published-but-empty day should hit the cache")
	assert.Empty(t, got)
}
