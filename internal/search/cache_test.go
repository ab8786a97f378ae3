package search

import (
	"testing"
	"time"

	"snax.fit/snax/internal/globaltime"
	"snax.fit/snax/internal/snack"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	t.Parallel()

	cache, err := NewMemoryCache(8, time.Hour)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}

	stored := []snack.Snack{{Name: "Popcorn", Tags: []string{"salty"}}}
	if err := cache.Put("shipt", "popcorn", stored); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, hit, err := cache.Get("shipt", "popcorn")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].Name != "Popcorn" {
		t.Fatalf("unexpected cached value: %+v", got)
	}

	// The cached copy must not alias caller-owned slices.
	got[0].Tags[0] = "mutated"
	fresh, _, _ := cache.Get("shipt", "popcorn")
	if fresh[0].Tags[0] != "salty" {
		t.Fatal("cache returned an aliased snack value")
	}
}

func TestMemoryCacheKeyIsPerEngineAndQuery(t *testing.T) {
	t.Parallel()

	cache, err := NewMemoryCache(8, time.Hour)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	if err := cache.Put("shipt", "popcorn", []snack.Snack{{Name: "Popcorn"}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, hit, _ := cache.Get("boxed", "popcorn"); hit {
		t.Fatal("unexpected hit for different engine")
	}
	if _, hit, _ := cache.Get("shipt", "chips"); hit {
		t.Fatal("unexpected hit for different query")
	}
	if _, hit, _ := cache.Get(" SHIPT ", "  Popcorn "); !hit {
		t.Fatal("expected hit for normalized engine and query")
	}
}

func TestMemoryCacheExpiresEntries(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	globaltime.SetMockTime(base)
	defer globaltime.ResetTime()

	cache, err := NewMemoryCache(8, 10*time.Hour)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	if err := cache.Put("shipt", "popcorn", []snack.Snack{{Name: "Popcorn"}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	globaltime.SetMockTime(base.Add(9 * time.Hour))
	if _, hit, _ := cache.Get("shipt", "popcorn"); !hit {
		t.Fatal("expected hit before TTL")
	}

	globaltime.SetMockTime(base.Add(10*time.Hour + time.Minute))
	if _, hit, _ := cache.Get("shipt", "popcorn"); hit {
		t.Fatal("expected miss after TTL")
	}
}

func TestNewMemoryCacheValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewMemoryCache(0, time.Hour); err == nil {
		t.Fatal("expected error for zero size")
	}
	if _, err := NewMemoryCache(8, 0); err == nil {
		t.Fatal("expected error for zero TTL")
	}
}
