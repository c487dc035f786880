package render

import (
	"testing"
)

func TestCache_PutAndGet(t *testing.T) {
	cache := NewCache(3)

	cache.Put("key1", "block1")
	cache.Put("key2", "block2")

	if got, ok := cache.Get("key1"); !ok || got != "block1" {
		t.Errorf("Get(key1) = %q, %v, want block1", got, ok)
	}
	if got, ok := cache.Get("key2"); !ok || got != "block2" {
		t.Errorf("Get(key2) = %q, %v, want block2", got, ok)
	}
	if _, ok := cache.Get("key3"); ok {
		t.Error("Get(key3) should miss")
	}
}

func TestCache_LRUEviction(t *testing.T) {
	cache := NewCache(3)

	cache.Put("a", "1")
	cache.Put("b", "2")
	cache.Put("c", "3")

	// Access "a" to make it recently used
	cache.Get("a")

	// Add a new item, should evict "b" (least recently used)
	cache.Put("d", "4")

	for _, key := range []string{"a", "c", "d"} {
		if _, ok := cache.Get(key); !ok {
			t.Errorf("%q should not have been evicted", key)
		}
	}
	if _, ok := cache.Get("b"); ok {
		t.Error("'b' should have been evicted")
	}
}

func TestCache_Update(t *testing.T) {
	cache := NewCache(3)
	cache.Put("key", "original")
	cache.Put("key", "updated")

	if got, _ := cache.Get("key"); got != "updated" {
		t.Errorf("Get(key) = %q, want updated", got)
	}
	if cache.Size() != 1 {
		t.Errorf("Size() = %d, want 1", cache.Size())
	}
}

func TestCache_DefaultSize(t *testing.T) {
	cache := NewCache(0)
	for i := 0; i < 150; i++ {
		cache.Put(string(rune('a'+i%26))+string(rune('A'+i/26)), "x")
	}
	if cache.Size() != 100 {
		t.Errorf("Size() = %d, want 100", cache.Size())
	}
}

type countingRenderer struct {
	calls int
	width int
}

func (c *countingRenderer) RenderBlock(_ int, markdown string) (string, error) {
	c.calls++
	return markdown, nil
}

func (c *countingRenderer) Resize(width int) { c.width = width }

func TestCached(t *testing.T) {
	inner := &countingRenderer{}
	r := WithCache(inner, NewCache(10))

	for i := 0; i < 3; i++ {
		if out, err := r.RenderBlock(i, "same"); err != nil || out != "same" {
			t.Fatalf("RenderBlock = %q, %v", out, err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner renderer called %d times, want 1", inner.calls)
	}

	r.Resize(42)
	if inner.width != 42 {
		t.Errorf("Resize not forwarded, width = %d", inner.width)
	}
	r.RenderBlock(0, "same")
	if inner.calls != 2 {
		t.Errorf("cache not invalidated on resize, calls = %d", inner.calls)
	}

	if sep := r.Separator(); sep != "\n\n" {
		t.Errorf("Separator() = %q", sep)
	}
}
