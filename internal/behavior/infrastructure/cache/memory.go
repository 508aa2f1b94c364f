package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
)

type entry struct {
	stamp   string
	data    []byte
	expires time.Time
}

// InMemoryCache is the local-mode AggregateCache. Values are stored encoded
// so callers never share state with the cache.
type InMemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryCache creates a cache. A zero ttl never expires entries.
func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (c *InMemoryCache) GetAggregate(_ context.Context, userID uuid.UUID, day, stamp string) (*domain.DailyAggregate, bool, error) {
	var agg domain.DailyAggregate
	ok, err := c.get(dayKey(userID, day, kindAggregate), stamp, &agg)
	if !ok || err != nil {
		return nil, false, err
	}
	return &agg, true, nil
}

func (c *InMemoryCache) SetAggregate(_ context.Context, agg *domain.DailyAggregate, day, stamp string) error {
	return c.set(dayKey(agg.UserID, day, kindAggregate), stamp, agg)
}

func (c *InMemoryCache) GetAdvice(_ context.Context, userID uuid.UUID, day, stamp string) ([]domain.AdviceCard, bool, error) {
	var cards []domain.AdviceCard
	ok, err := c.get(dayKey(userID, day, kindAdvice), stamp, &cards)
	if !ok || err != nil {
		return nil, false, err
	}
	if cards == nil {
		cards = []domain.AdviceCard{}
	}
	return cards, true, nil
}

func (c *InMemoryCache) SetAdvice(_ context.Context, userID uuid.UUID, day, stamp string, cards []domain.AdviceCard) error {
	return c.set(dayKey(userID, day, kindAdvice), stamp, cards)
}

func (c *InMemoryCache) Invalidate(_ context.Context, userID uuid.UUID, day string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if day != "" {
		delete(c.entries, dayKey(userID, day, kindAggregate))
		delete(c.entries, dayKey(userID, day, kindAdvice))
		return nil
	}
	prefix := userPrefix(userID)
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

// Len returns the number of live entries.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		if !c.expired(e) {
			n++
		}
	}
	return n
}

func (c *InMemoryCache) expired(e entry) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}

func (c *InMemoryCache) get(key, stamp string, v any) (bool, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && (c.expired(e) || e.stamp != stamp) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(e.data, v)
}

func (c *InMemoryCache) set(key, stamp string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{stamp: stamp, data: data}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.entries[key] = e
	return nil
}
