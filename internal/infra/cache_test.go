package infra

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time forward without sleeping
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache[V any](t *testing.T, maxEntries int) (*Cache[V], *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	c := NewCache[V](maxEntries)
	c.now = clock.Now
	t.Cleanup(c.Close)
	return c, clock
}

func TestNewCache_DefaultMaxEntries(t *testing.T) {
	for _, n := range []int{0, -1} {
		c := NewCache[string](n)
		if c.maxEntries != DefaultMaxCacheEntries {
			t.Errorf("NewCache(%d).maxEntries = %d, want %d", n, c.maxEntries, DefaultMaxCacheEntries)
		}
		c.Close()
	}
}

func TestCache_SetAndGet(t *testing.T) {
	c, _ := newTestCache[string](t, 10)

	c.Set("session:https://dev.azure.com/contoso", "handle", time.Minute)

	got, ok := c.Get("session:https://dev.azure.com/contoso")
	if !ok {
		t.Fatal("expected cached value")
	}
	if got != "handle" {
		t.Errorf("Get() = %q, want %q", got, "handle")
	}
}

func TestCache_Get_NotFound(t *testing.T) {
	c, _ := newTestCache[int](t, 10)

	got, ok := c.Get("missing")
	if ok {
		t.Error("expected ok=false for missing key")
	}
	if got != 0 {
		t.Errorf("expected zero value, got %d", got)
	}
}

func TestCache_Get_Expired(t *testing.T) {
	c, clock := newTestCache[string](t, 10)

	c.Set("project:Fabrikam", "id", time.Minute)
	clock.Advance(59 * time.Second)
	if _, ok := c.Get("project:Fabrikam"); !ok {
		t.Fatal("expected value before expiry")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("project:Fabrikam"); ok {
		t.Error("expected value to expire at TTL")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry should be removed on read, size = %d", c.Size())
	}
}

func TestCache_Set_ZeroTTLDisablesCaching(t *testing.T) {
	c, _ := newTestCache[string](t, 10)

	c.Set("k", "v", 0)
	if _, ok := c.Get("k"); ok {
		t.Error("zero TTL must not store the value")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestCache_Set_Update(t *testing.T) {
	c, _ := newTestCache[string](t, 10)

	c.Set("k", "v1", time.Minute)
	c.Set("k", "v2", time.Minute)

	got, _ := c.Get("k")
	if got != "v2" {
		t.Errorf("Get() = %q, want v2", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestCache_DeleteAndDeletePrefix(t *testing.T) {
	c, _ := newTestCache[string](t, 10)

	c.Set("session:a", "1", time.Minute)
	c.Set("project:a", "2", time.Minute)
	c.Set("project:b", "3", time.Minute)

	c.Delete("session:a")
	if _, ok := c.Get("session:a"); ok {
		t.Error("session:a should be deleted")
	}

	c.DeletePrefix("project:")
	if c.Size() != 0 {
		t.Errorf("Size() after DeletePrefix = %d, want 0", c.Size())
	}

	// Deleting a missing key is a no-op
	c.Delete("never-set")
}

func TestCache_LRUEviction(t *testing.T) {
	c, clock := newTestCache[int](t, 3)

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i, time.Hour)
		clock.Advance(time.Second)
	}

	// Touch k0 so k1 becomes the least recently used
	if _, ok := c.Get("k0"); !ok {
		t.Fatal("k0 should be present")
	}
	clock.Advance(time.Second)

	c.Set("k3", 3, time.Hour)

	if c.Size() != 3 {
		t.Errorf("Size() = %d, want 3", c.Size())
	}
	if _, ok := c.Get("k1"); ok {
		t.Error("k1 should have been evicted")
	}
	for _, key := range []string{"k0", "k2", "k3"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("%s should still be cached", key)
		}
	}
}

func TestCache_Cleanup(t *testing.T) {
	c, clock := newTestCache[string](t, 10)

	c.Set("short", "v", time.Second)
	c.Set("long", "v", time.Hour)
	clock.Advance(2 * time.Second)

	c.cleanup()

	if c.Size() != 1 {
		t.Errorf("Size() after cleanup = %d, want 1", c.Size())
	}
}

func TestCache_Close(t *testing.T) {
	c := NewCache[string](10)
	c.Close()
	c.Close()
}

func TestCache_ConcurrencySafety(t *testing.T) {
	c := NewCache[int](50)
	defer c.Close()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k%d", (g*100+i)%75)
				c.Set(key, i, time.Minute)
				c.Get(key)
				if i%10 == 0 {
					c.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Size() > 50 {
		t.Errorf("Size() = %d, exceeds max entries", c.Size())
	}
}
