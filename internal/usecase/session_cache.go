package usecase

import (
	"sync"
	"time"
)

// sessionCache holds per-user session state. Entries untouched for longer than ttl are
// evicted on a later access; a zero ttl keeps entries until they are released.
type sessionCache[V any] struct {
	ttl  time.Duration
	now  func() time.Time
	busy func(V) bool

	mu        sync.Mutex
	entries   map[string]*sessionEntry[V]
	lastSweep time.Time
}

type sessionEntry[V any] struct {
	value    V
	lastSeen time.Time
}

func newSessionCache[V any](ttl time.Duration, now func() time.Time, busy func(V) bool) *sessionCache[V] {
	return &sessionCache[V]{
		ttl:     ttl,
		now:     now,
		busy:    busy,
		entries: make(map[string]*sessionEntry[V]),
	}
}

// get returns the user's entry, creating it with create on first use or after eviction.
func (c *sessionCache[V]) get(userID string, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweepLocked(now)

	e, ok := c.entries[userID]
	if !ok {
		e = &sessionEntry[V]{value: create()}
		c.entries[userID] = e
	}
	e.lastSeen = now
	return e.value
}

func (c *sessionCache[V]) release(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// sweepLocked scans at most once per half ttl.
func (c *sessionCache[V]) sweepLocked(now time.Time) {
	if c.ttl <= 0 || now.Sub(c.lastSweep) < c.ttl/2 {
		return
	}
	c.lastSweep = now
	for userID, e := range c.entries {
		if now.Sub(e.lastSeen) < c.ttl {
			continue
		}
		if c.busy != nil && c.busy(e.value) {
			continue
		}
		delete(c.entries, userID)
	}
}
