// Package cache keeps rendered matches so that repeated requests for the
// same match skip decoding and drawing.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry struct {
	key     string
	value   interface{}
	size    int64
	expires time.Time // zero means never
}

// LRU is a thread-safe least-recently-used cache bounded by item count
// and total size. Entries may carry an expiry time.
type LRU struct {
	mu           sync.Mutex
	maxItems     int
	maxSizeBytes int64
	ttl          time.Duration
	now          func() time.Time
	currentSize  int64
	items        map[string]*list.Element
	order        *list.List

	hits      int64
	misses    int64
	evictions int64
	expired   int64
}

// NewLRU creates a cache. Zero limits mean unlimited; a zero ttl keeps
// entries until they are evicted.
func NewLRU(maxItems int, maxSizeBytes int64, ttl time.Duration) *LRU {
	return &LRU{
		maxItems:     maxItems,
		maxSizeBytes: maxSizeBytes,
		ttl:          ttl,
		now:          time.Now,
		items:        make(map[string]*list.Element),
		order:        list.New(),
	}
}

// Get returns the value for key and marks it as recently used. Expired
// entries are dropped and count as misses.
func (c *LRU) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	e := elem.Value.(*entry)
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.remove(elem)
		c.expired++
		c.misses++
		return nil, false
	}

	c.order.MoveToFront(elem)
	c.hits++
	return e.value, true
}

// Put adds or replaces the value for key. size is the approximate size
// of the value in bytes.
func (c *LRU) Put(key string, value interface{}, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry)
		c.currentSize += size - e.size
		e.value = value
		e.size = size
		e.expires = expires
		c.order.MoveToFront(elem)
	} else {
		elem := c.order.PushFront(&entry{key: key, value: value, size: size, expires: expires})
		c.items[key] = elem
		c.currentSize += size
	}

	c.evict()
}

// evict drops least recently used entries until the limits hold. The
// newest entry is always kept, even when it alone exceeds the size limit.
func (c *LRU) evict() {
	for c.order.Len() > 1 {
		overCount := c.maxItems > 0 && c.order.Len() > c.maxItems
		overSize := c.maxSizeBytes > 0 && c.currentSize > c.maxSizeBytes
		if !overCount && !overSize {
			return
		}
		c.remove(c.order.Back())
		c.evictions++
	}
}

func (c *LRU) remove(elem *list.Element) {
	c.order.Remove(elem)
	e := elem.Value.(*entry)
	delete(c.items, e.key)
	c.currentSize -= e.size
}

// Delete removes key and reports whether it was present.
func (c *LRU) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
		return true
	}
	return false
}

// Clear removes all entries. Counters are kept.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.currentSize = 0
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentSize
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Items     int     `json:"items"`
	Size      int64   `json:"size_bytes"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Expired   int64   `json:"expired"`
	HitRate   float64 `json:"hit_rate"`
}

func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	hitRate := 0.0
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Stats{
		Items:     c.order.Len(),
		Size:      c.currentSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Expired:   c.expired,
		HitRate:   hitRate,
	}
}

// ResetStats zeroes the counters but keeps the entries.
func (c *LRU) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits, c.misses, c.evictions, c.expired = 0, 0, 0, 0
}
