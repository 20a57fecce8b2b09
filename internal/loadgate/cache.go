package loadgate

import (
	"container/list"
	"image"
	"sync"
)

// Image is a decoded image and its metadata.
type Image struct {
	// Src is the source string the image was loaded from.
	Src string

	// Original is the decoded image, already auto-oriented.
	Original image.Image

	// Format is the detected format, e.g. "png", "jpg", "webp".
	Format string

	// Width and Height are the decoded dimensions in pixels.
	Width  int
	Height int

	// Size is the number of encoded bytes read.
	Size int64
}

// NewImage wraps a decoded image.
func NewImage(src, format string, img image.Image, size int64) *Image {
	b := img.Bounds()
	return &Image{
		Src:      src,
		Original: img,
		Format:   format,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Size:     size,
	}
}

// Cache holds loaded images keyed by source string.
//
// With capacity 0 the cache never evicts, so membership is monotonic. With a
// positive capacity the least recently used entry is evicted when full.
//
// Cache is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	onEvict  func(src string)
}

// NewCache creates a cache. A capacity <= 0 means unbounded.
func NewCache(capacity int) *Cache {
	if capacity < 0 {
		capacity = 0
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Capacity returns the configured capacity; 0 means unbounded.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Get returns the image for src and marks it recently used.
func (c *Cache) Get(src string) (*Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[src]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*Image), true
}

// Has reports whether src is cached without touching recency.
func (c *Cache) Has(src string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[src]
	return ok
}

// Put stores img under img.Src, evicting the oldest entry if the cache is full.
func (c *Cache) Put(img *Image) {
	if img == nil {
		return
	}
	var evicted []string

	c.mu.Lock()
	if el, ok := c.entries[img.Src]; ok {
		el.Value = img
		c.order.MoveToFront(el)
		c.mu.Unlock()
		return
	}
	c.entries[img.Src] = c.order.PushFront(img)
	for c.capacity > 0 && c.order.Len() > c.capacity {
		oldest := c.order.Back()
		src := oldest.Value.(*Image).Src
		c.order.Remove(oldest)
		delete(c.entries, src)
		evicted = append(evicted, src)
	}
	onEvict := c.onEvict
	c.mu.Unlock()

	if onEvict != nil {
		for _, src := range evicted {
			onEvict(src)
		}
	}
}

// Remove deletes src from the cache.
func (c *Cache) Remove(src string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[src]
	if !ok {
		return false
	}
	c.order.Remove(el)
	delete(c.entries, src)
	return true
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Sources returns the cached sources, most recently used first.
func (c *Cache) Sources() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*Image).Src)
	}
	return out
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.mu.Unlock()
}

// setEvictHook installs a callback invoked outside the lock for each eviction.
func (c *Cache) setEvictHook(fn func(src string)) {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
}
