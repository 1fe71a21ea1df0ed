package cache

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestCache(t *testing.T) *RistrettoCache {
	t.Helper()

	c, err := NewRistrettoCache(&RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}

	rc := c.(*RistrettoCache)
	t.Cleanup(rc.Close)

	return rc
}

func TestRistrettoCache_SetGet(t *testing.T) {
	c := newTestCache(t)

	if !c.Set("key", "value", time.Minute) {
		t.Fatal("expected set to succeed")
	}
	c.Wait()

	got, found := c.Get("key")
	if !found {
		t.Fatal("expected key to be present")
	}

	if got != "value" {
		t.Errorf("expected value, got %v", got)
	}
}

func TestRistrettoCache_Miss(t *testing.T) {
	c := newTestCache(t)

	if _, found := c.Get("absent"); found {
		t.Error("expected miss for absent key")
	}
}

func TestRistrettoCache_Delete(t *testing.T) {
	c := newTestCache(t)

	c.Set("key", "value", time.Minute)
	c.Wait()

	c.Delete("key")

	if _, found := c.Get("key"); found {
		t.Error("expected key to be gone after delete")
	}
}

func TestRistrettoCache_TTLExpiry(t *testing.T) {
	c := newTestCache(t)

	c.Set("key", "value", 50*time.Millisecond)
	c.Wait()

	time.Sleep(100 * time.Millisecond)

	if _, found := c.Get("key"); found {
		t.Error("expected key to expire")
	}
}

func TestRistrettoCache_Clear(t *testing.T) {
	c := newTestCache(t)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Wait()

	c.Clear()

	if _, found := c.Get("a"); found {
		t.Error("expected cache to be empty after clear")
	}
}
