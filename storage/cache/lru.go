package cache

import (
	"container/list"

	"github.com/viant/quickkv/storage"
	"github.com/viant/quickkv/storage/page"
)

// DefaultPages is the default cache capacity in pages.
const DefaultPages = 32

// LRU is a capacity-bounded page cache keyed by page offset.
// It is not safe for concurrent use.
type LRU struct {
	maxEntries int
	cache      map[uint64]*list.Element
	order      *list.List
}

// NewLRU creates a cache holding at most maxEntries pages.
func NewLRU(maxEntries int) *LRU {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &LRU{
		maxEntries: maxEntries,
		cache:      make(map[uint64]*list.Element),
		order:      list.New(),
	}
}

// Capacity returns the maximum number of cached pages.
func (c *LRU) Capacity() int { return c.maxEntries }

// Len returns the number of cached pages.
func (c *LRU) Len() int { return c.order.Len() }

// Get returns the page at offset and marks it most recently used.
func (c *LRU) Get(offset uint64) (*page.Page, bool) {
	elem, ok := c.cache[offset]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*page.Page), true
}

// Put caches p, evicting the least recently used page when full.
// It returns the evicted page, if any.
func (c *LRU) Put(p *page.Page) *page.Page {
	if elem, ok := c.cache[p.Offset]; ok {
		elem.Value = p
		c.order.MoveToFront(elem)
		return nil
	}
	var evicted *page.Page
	if c.order.Len() >= c.maxEntries {
		if oldest := c.order.Back(); oldest != nil {
			evicted = c.order.Remove(oldest).(*page.Page)
			delete(c.cache, evicted.Offset)
		}
	}
	c.cache[p.Offset] = c.order.PushFront(p)
	return evicted
}

// Invalidate drops the page at offset; it reports whether a page was cached.
func (c *LRU) Invalidate(offset uint64) bool {
	elem, ok := c.cache[offset]
	if !ok {
		return false
	}
	c.order.Remove(elem)
	delete(c.cache, offset)
	return true
}

// Oldest returns the least recently used page.
func (c *LRU) Oldest() (*page.Page, error) {
	elem := c.order.Back()
	if elem == nil {
		return nil, storage.ErrCacheEmpty
	}
	return elem.Value.(*page.Page), nil
}

// Offsets returns cached page offsets, most recently used first.
func (c *LRU) Offsets() []uint64 {
	offsets := make([]uint64, 0, c.order.Len())
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		offsets = append(offsets, elem.Value.(*page.Page).Offset)
	}
	return offsets
}

// Clear empties the cache.
func (c *LRU) Clear() {
	c.cache = make(map[uint64]*list.Element)
	c.order.Init()
}
