package webserver

import (
	"container/list"
	"sync"

	"github.com/gooslab/oslab/internal/bufpool"
)

// CacheEntry is a cached file plus its in-use (pin) count and LRU linkage.
// A pinned entry (InUse > 0) is never chosen for eviction; it is unpinned
// by the worker that is done streaming it, via Cache.Release.
type CacheEntry struct {
	Name  string
	Data  *FileData
	InUse int

	elem *list.Element
}

// Cache is a byte-capacity-bounded file cache with LRU eviction. The
// mutex is held only for a lookup-and-pin or an insert-and-maybe-evict —
// never across the I/O a caller performs with a pinned entry's data.
type Cache struct {
	mu       sync.Mutex
	capacity int64
	used     int64
	entries  map[string]*CacheEntry
	order    *list.List // front = most recently used, back = least
}

// newCache allocates an empty cache with the given byte capacity.
func newCache(capacity int64) *Cache {
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*CacheEntry),
		order:    list.New(),
	}
}

// Get looks up name, pins it (increments InUse) and moves it to the front
// of the LRU order if found. The caller must call Release exactly once for
// every successful Get.
func (c *Cache) Get(name string) (*FileData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[name]
	if !ok {
		return nil, false
	}
	e.InUse++
	c.order.MoveToFront(e.elem)
	return e.Data, true
}

// Release unpins name, making it eligible for eviction again once its
// in-use count returns to zero.
func (c *Cache) Release(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[name]
	if !ok {
		return
	}
	if e.InUse > 0 {
		e.InUse--
	}
}

// Insert adds data under name, evicting least-recently-used unpinned
// entries until there is room. If name is already cached, Insert refuses
// and returns false, keeping the existing entry. If even evicting every unpinned entry
// cannot make room (because pinned entries hold too much, or data itself
// exceeds capacity), Insert silently refuses and returns false — the
// caller still has its own copy of data to serve from.
func (c *Cache) Insert(name string, data *FileData) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[name]; exists {
		return false
	}
	size := int64(len(data.Buf))
	if size > c.capacity {
		return false
	}

	for c.used+size > c.capacity {
		victim := c.evictOneLocked()
		if victim == nil {
			return false
		}
	}

	e := &CacheEntry{Name: name, Data: data}
	e.elem = c.order.PushFront(e)
	c.entries[name] = e
	c.used += size
	return true
}

// evictOneLocked removes the least-recently-used unpinned entry, walking
// from the back of the order list (which is least-recently-used) toward
// the front, skipping any entry currently in use. An evicted entry's buffer
// is returned to bufpool if it came from there, so the pool actually gets
// reuse rather than just allocating on every miss. Caller holds c.mu.
func (c *Cache) evictOneLocked() *CacheEntry {
	for e := c.order.Back(); e != nil; e = e.Prev() {
		entry := e.Value.(*CacheEntry)
		if entry.InUse > 0 {
			continue
		}
		c.order.Remove(e)
		delete(c.entries, entry.Name)
		c.used -= int64(len(entry.Data.Buf))
		if entry.Data.pooled {
			bufpool.Put(entry.Data.Buf)
		}
		return entry
	}
	return nil
}
