// Package dedup implements the recent-event cache that absorbs at-least-once
// delivery duplicates before they reach the event processor. The cache is a
// capacity-bounded FIFO of event ids with an atomic test-and-insert: the
// first admission of an id wins, later admissions of the same id are
// rejected until the id ages out of the window.
//
// The cache is process-lifetime, in-memory state. A duplicate arriving after
// its id has been evicted is a known, accepted false negative; the durable
// store's event-id idempotency query covers that case once a receipt for the
// event has been committed.
package dedup

import "sync"

// DefaultCapacity is the bound used when no explicit capacity is configured.
const DefaultCapacity = 100

// Cache is a mutex-guarded bounded FIFO of recently admitted event ids.
// It is safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	cap   int
	order []string
	seen  map[string]struct{}
}

// NewCache returns a Cache bounded to capacity entries. Capacities <= 0 are
// coerced to DefaultCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		cap:  capacity,
		seen: make(map[string]struct{}, capacity),
	}
}

// Admit atomically tests and inserts eventID. It returns false and leaves
// the cache unchanged when the id is already present; otherwise it records
// the id, evicts the oldest entry if the bound is exceeded, and returns true.
// Exactly one Admit succeeds for a given id per cache residency.
func (c *Cache) Admit(eventID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, dup := c.seen[eventID]; dup {
		return false
	}
	c.seen[eventID] = struct{}{}
	c.order = append(c.order, eventID)
	if len(c.order) > c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.seen, oldest)
	}
	return true
}

// Len returns the number of ids currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}
