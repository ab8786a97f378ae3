package search

import (
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"snax.fit/snax/internal/globaltime"
	"snax.fit/snax/internal/snack"
)

// Cache stores raw engine results per (engine, query) with a fixed expiry.
// Both operations may fail with a CacheError that callers must treat as
// non-fatal.
type Cache interface {
	Get(engineName, queryText string) ([]snack.Snack, bool, error)
	Put(engineName, queryText string, snacks []snack.Snack) error
}

type cacheEntry struct {
	snacks    []snack.Snack
	expiresAt time.Time
}

// MemoryCache is an in-process LRU Cache implementation. Entries expire
// after the configured TTL; lookups past the expiry behave as misses and
// evict the stale entry.
type MemoryCache struct {
	entries *lru.Cache[string, cacheEntry]
	ttl     time.Duration
}

func NewMemoryCache(maxEntries int, ttl time.Duration) (*MemoryCache, error) {
	if maxEntries < 1 {
		return nil, fmt.Errorf("cache size must be >= 1")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache TTL must be positive")
	}

	entries, err := lru.New[string, cacheEntry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &MemoryCache{
		entries: entries,
		ttl:     ttl,
	}, nil
}

func (c *MemoryCache) Get(engineName, queryText string) ([]snack.Snack, bool, error) {
	if c == nil || c.entries == nil {
		return nil, false, &CacheError{Op: "get", Err: fmt.Errorf("cache is not initialized")}
	}

	key := cacheKey(engineName, queryText)
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if globaltime.UTC().After(entry.expiresAt) {
		c.entries.Remove(key)
		return nil, false, nil
	}

	out := make([]snack.Snack, len(entry.snacks))
	for i, s := range entry.snacks {
		out[i] = s.Clone()
	}
	return out, true, nil
}

func (c *MemoryCache) Put(engineName, queryText string, snacks []snack.Snack) error {
	if c == nil || c.entries == nil {
		return &CacheError{Op: "put", Err: fmt.Errorf("cache is not initialized")}
	}

	stored := make([]snack.Snack, len(snacks))
	for i, s := range snacks {
		stored[i] = s.Clone()
	}
	c.entries.Add(cacheKey(engineName, queryText), cacheEntry{
		snacks:    stored,
		expiresAt: globaltime.UTC().Add(c.ttl),
	})
	return nil
}

func cacheKey(engineName, queryText string) string {
	return normalizeEngineName(engineName) + "\x00" + strings.ToLower(strings.TrimSpace(queryText))
}
