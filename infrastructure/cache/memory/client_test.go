package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/richochetclementine1315/Quill/core/interfaces"
)

func TestNewMemoryCache(t *testing.T) {
	cache := NewMemoryCache()

	if cache == nil {
		t.Fatal("NewMemoryCache returned nil")
	}
	if cache.Count() != 0 {
		t.Errorf("new cache has %d items", cache.Count())
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	key := "quill:stale:http://backend/api/allpost?page=1"
	value := []byte(`{"data":[]}`)
	if err := cache.Set(ctx, key, value, time.Hour); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(got) != string(value) {
		t.Errorf("Get returned %s, want %s", got, value)
	}
}

func TestMemoryCache_Get_NonExistentKey(t *testing.T) {
	cache := NewMemoryCache()

	got, err := cache.Get(context.Background(), "non-existent")
	if !errors.Is(err, interfaces.ErrCacheMiss) {
		t.Errorf("Get error = %v, want ErrCacheMiss", err)
	}
	if got != nil {
		t.Error("Get should return nil value for non-existent key")
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "short", []byte("v"), 20*time.Millisecond); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := cache.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	if _, err := cache.Get(ctx, "short"); !errors.Is(err, interfaces.ErrCacheMiss) {
		t.Errorf("expired key should miss, got %v", err)
	}
	if _, err := cache.Get(ctx, "forever"); err != nil {
		t.Errorf("zero TTL should never expire, got %v", err)
	}
}

func TestMemoryCache_ValueIsCopied(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	value := []byte("original")
	_ = cache.Set(ctx, "k", value, time.Hour)
	value[0] = 'X'

	got, _ := cache.Get(ctx, "k")
	got[1] = 'Y'

	again, _ := cache.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("stored value was mutated: %s", again)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("v"), time.Hour)
	if err := cache.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := cache.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key returned error: %v", err)
	}
	if _, err := cache.Get(ctx, "k"); err == nil {
		t.Error("deleted key should miss")
	}
}

func TestMemoryCache_CancelledContext(t *testing.T) {
	cache := NewMemoryCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := cache.Set(ctx, "k", []byte("v"), time.Hour); err != context.Canceled {
		t.Errorf("Set error = %v, want context.Canceled", err)
	}
	if _, err := cache.Get(ctx, "k"); err != context.Canceled {
		t.Errorf("Get error = %v, want context.Canceled", err)
	}
	if err := cache.Delete(ctx, "k"); err != context.Canceled {
		t.Errorf("Delete error = %v, want context.Canceled", err)
	}
}
