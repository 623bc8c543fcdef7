// Package msgcache remembers recently seen message ids so a node handles
// each message once.
package msgcache

import (
	"sync"

	"github.com/irfansharif/cfilter"

	"github.com/danmuck/dps_messaging/src/api/messaging"
)

const DefaultCapacity = 4096

// historyFactor is how many windows of ids the filter remembers.
const historyFactor = 16

// Cache is a bounded FIFO set of message ids. Duplicates are decided by the
// exact window only. A cuckoo filter keeps a longer, approximate history of
// ids that have already left the window, so late copies can be counted
// without being dropped.
type Cache struct {
	mu       sync.Mutex
	capacity int
	seen     map[messaging.MessageID]struct{}
	order    []messaging.MessageID
	head     int

	history      *cfilter.CFilter
	historyLimit uint
	stale        uint64
}

// New returns a cache holding at most capacity ids. A capacity below one
// uses DefaultCapacity.
func New(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	c := &Cache{
		capacity:     capacity,
		seen:         make(map[messaging.MessageID]struct{}, capacity),
		order:        make([]messaging.MessageID, 0, capacity),
		historyLimit: uint(capacity * historyFactor),
	}
	c.history = c.newHistory()
	return c
}

// Observe records id and reports whether it is still in the window.
func (c *Cache) Observe(id messaging.MessageID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[id]; ok {
		return true
	}
	if c.history.Lookup(id[:]) {
		c.stale++
	} else {
		c.remember(id)
	}

	c.seen[id] = struct{}{}
	if len(c.order) < c.capacity {
		c.order = append(c.order, id)
		return false
	}
	delete(c.seen, c.order[c.head])
	c.order[c.head] = id
	c.head = (c.head + 1) % c.capacity
	return false
}

func (c *Cache) Contains(id messaging.MessageID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[id]
	return ok
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// Stale counts ids observed again after they had left the window. The
// count is approximate: a filter false positive also counts.
func (c *Cache) Stale() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale
}

// remember adds id to the history, starting a fresh history seeded with
// the current window once the old one is full.
func (c *Cache) remember(id messaging.MessageID) {
	if c.history.Count() < c.historyLimit && c.history.Insert(id[:]) {
		return
	}
	c.history = c.newHistory()
	for _, old := range c.order {
		c.history.Insert(old[:])
	}
	c.history.Insert(id[:])
}

func (c *Cache) newHistory() *cfilter.CFilter {
	// four slots per bucket and at least twice the limit in slots; the
	// filter's alternate bucket index needs a power of two bucket count
	buckets := uint(1)
	for buckets*2 < c.historyLimit {
		buckets <<= 1
	}
	return cfilter.New(cfilter.Size(buckets))
}
