package render

import (
	"container/list"
	"sync"
)

// Cache is an LRU cache of rendered blocks keyed by their markdown.
// It keeps memory bounded while avoiding re-rendering repeated blocks.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*list.Element
	lruList *list.List
}

// cacheEntry holds a cache key-value pair for the LRU list.
type cacheEntry struct {
	key      string
	rendered string
}

// NewCache creates a cache holding at most maxSize blocks.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &Cache{
		maxSize: maxSize,
		entries: make(map[string]*list.Element),
		lruList: list.New(),
	}
}

// Get retrieves a rendered block. Accessing a block moves it to the front of
// the LRU list.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.lruList.MoveToFront(elem)
		return elem.Value.(*cacheEntry).rendered, true
	}
	return "", false
}

// Put adds a rendered block, evicting the least recently used block if the
// cache is full.
func (c *Cache) Put(key, rendered string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.lruList.MoveToFront(elem)
		elem.Value.(*cacheEntry).rendered = rendered
		return
	}

	if c.lruList.Len() >= c.maxSize {
		c.evictOldest()
	}

	elem := c.lruList.PushFront(&cacheEntry{key: key, rendered: rendered})
	c.entries[key] = elem
}

// evictOldest removes the least recently used entry.
// Must be called with lock held.
func (c *Cache) evictOldest() {
	oldest := c.lruList.Back()
	if oldest != nil {
		entry := oldest.Value.(*cacheEntry)
		delete(c.entries, entry.key)
		c.lruList.Remove(oldest)
	}
}

// InvalidateAll clears the entire cache.
// Call this on terminal resize when all cached renders are invalid.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.lruList.Init()
}

// Size returns the current number of cached blocks.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Resizer is implemented by renderers whose output depends on a width.
type Resizer interface {
	Resize(width int)
}

// Cached wraps a renderer with a Cache.
type Cached struct {
	r     BlockRenderer
	cache *Cache
}

// WithCache returns r with rendered blocks cached in c.
func WithCache(r BlockRenderer, c *Cache) *Cached {
	return &Cached{r: r, cache: c}
}

func (c *Cached) RenderBlock(index int, markdown string) (string, error) {
	if out, ok := c.cache.Get(markdown); ok {
		return out, nil
	}
	out, err := c.r.RenderBlock(index, markdown)
	if err != nil {
		return "", err
	}
	c.cache.Put(markdown, out)
	return out, nil
}

// Separator forwards to the wrapped renderer.
func (c *Cached) Separator() string {
	return SeparatorFor(c.r)
}

// Resize forwards to the wrapped renderer and drops every cached block.
func (c *Cached) Resize(width int) {
	if r, ok := c.r.(Resizer); ok {
		r.Resize(width)
	}
	c.cache.InvalidateAll()
}
