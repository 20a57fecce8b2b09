package loadgate

import (
	"image"
	"testing"
)

func testImage(src string) *Image {
	return NewImage(src, "png", image.NewRGBA(image.Rect(0, 0, 2, 2)), 10)
}

func TestCacheUnboundedIsMonotonic(t *testing.T) {
	c := NewCache(0)
	for _, src := range []string{"a", "b", "c", "d", "e"} {
		c.Put(testImage(src))
	}
	if c.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", c.Len())
	}
	for _, src := range []string{"a", "b", "c", "d", "e"} {
		if !c.Has(src) {
			t.Errorf("%q was evicted from an unbounded cache", src)
		}
	}
}

func TestCacheLRUEviction(t *testing.T) {
	c := NewCache(2)
	var evicted []string
	c.setEvictHook(func(src string) { evicted = append(evicted, src) })

	c.Put(testImage("a"))
	c.Put(testImage("b"))
	c.Get("a") // b is now least recently used
	c.Put(testImage("c"))

	if c.Has("b") {
		t.Error("b should have been evicted")
	}
	if !c.Has("a") || !c.Has("c") {
		t.Errorf("sources = %v, want a and c", c.Sources())
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("evicted = %v, want [b]", evicted)
	}
	if got := c.Sources(); got[0] != "c" || got[1] != "a" {
		t.Errorf("Sources() = %v, want [c a]", got)
	}
}

func TestCachePutReplaces(t *testing.T) {
	c := NewCache(1)
	first := testImage("a")
	second := testImage("a")
	c.Put(first)
	c.Put(second)

	got, ok := c.Get("a")
	if !ok || got != second {
		t.Error("Put should replace the existing entry")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheRemoveAndClear(t *testing.T) {
	c := NewCache(-5)
	if c.Capacity() != 0 {
		t.Errorf("negative capacity should mean unbounded, got %d", c.Capacity())
	}
	c.Put(testImage("a"))
	c.Put(testImage("b"))
	c.Put(nil)

	if !c.Remove("a") {
		t.Error("Remove(a) = false")
	}
	if c.Remove("a") {
		t.Error("second Remove(a) = true")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Get after Clear found an entry")
	}
}
