package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"snax.fit/snax/internal/snack"
)

type stubEngine struct {
	name    string
	results []snack.Snack
	err     error
	calls   int
}

func (e *stubEngine) Search(_ context.Context, _ string) ([]snack.Snack, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([]snack.Snack, len(e.results))
	copy(out, e.results)
	return out, nil
}

func (e *stubEngine) Name() string { return e.name }

type stubCache struct {
	entries map[string][]snack.Snack
	getErr  error
	putErr  error
	puts    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string][]snack.Snack)}
}

func (c *stubCache) Get(engineName, queryText string) ([]snack.Snack, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	cached, ok := c.entries[engineName+"/"+queryText]
	return cached, ok, nil
}

func (c *stubCache) Put(engineName, queryText string, snacks []snack.Snack) error {
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	c.entries[engineName+"/"+queryText] = snacks
	return nil
}

func newTestAggregator(t *testing.T, cache Cache, engines ...Engine) *Aggregator {
	t.Helper()

	registry := NewRegistry()
	for _, engine := range engines {
		if err := registry.Register(engine); err != nil {
			t.Fatalf("register engine: %v", err)
		}
	}
	return NewAggregator(registry, cache, zerolog.Nop(), AggregatorOptions{NearDuplicateThreshold: 0.8})
}

func TestSearchSuppressesNearDuplicateAcrossEngines(t *testing.T) {
	t.Parallel()

	engineA := &stubEngine{name: "a", results: []snack.Snack{{Name: "Cheddar Popcorn"}}}
	engineB := &stubEngine{name: "b", results: []snack.Snack{{Name: "Chedder Popcorn"}}}
	aggregator := newTestAggregator(t, nil, engineA, engineB)

	results, err := aggregator.Search(context.Background(), "popcorn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly one survivor, got %d: %+v", len(results), results)
	}
	if results[0].Name != "Cheddar Popcorn" {
		t.Fatalf("expected first engine's candidate to survive the tie, got %q", results[0].Name)
	}
}

func TestSearchKeepsExactEqualNamesFromMultipleSources(t *testing.T) {
	t.Parallel()

	engineA := &stubEngine{name: "a", results: []snack.Snack{{Name: "Oreo Minis"}}}
	engineB := &stubEngine{name: "b", results: []snack.Snack{{Name: "Oreo Minis"}}}
	aggregator := newTestAggregator(t, nil, engineA, engineB)

	results, err := aggregator.Search(context.Background(), "oreo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected both same-name listings to surface, got %d", len(results))
	}
	if results[0].SourceEngine != "a" || results[1].SourceEngine != "b" {
		t.Fatalf("expected engine order as tie-break, got %q then %q", results[0].SourceEngine, results[1].SourceEngine)
	}
}

func TestSearchSurvivesFailingEngine(t *testing.T) {
	t.Parallel()

	broken := &stubEngine{name: "broken", err: fmt.Errorf("connection refused")}
	healthy := &stubEngine{name: "healthy", results: []snack.Snack{{Name: "Granola Bar"}, {Name: "Spicy Chips"}}}
	aggregator := newTestAggregator(t, nil, broken, healthy)

	results, err := aggregator.Search(context.Background(), "snacks")
	if err != nil {
		t.Fatalf("one failing engine must not fail the search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected the healthy engine's candidates, got %d", len(results))
	}
}

func TestSearchAllEnginesDownReturnsEmptyList(t *testing.T) {
	t.Parallel()

	aggregator := newTestAggregator(t, nil,
		&stubEngine{name: "a", err: fmt.Errorf("down")},
		&stubEngine{name: "b", err: fmt.Errorf("down")},
	)

	results, err := aggregator.Search(context.Background(), "popcorn")
	if err != nil {
		t.Fatalf("all engines down is not an error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty list, got %d", len(results))
	}
}

func TestSearchRanksByRelevanceToQuery(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{name: "a", results: []snack.Snack{
		{Name: "Chocolate Bar"},
		{Name: "Popcorn"},
	}}
	aggregator := newTestAggregator(t, nil, engine)

	results, err := aggregator.Search(context.Background(), "popcorn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected two results, got %d", len(results))
	}
	if results[0].Name != "Popcorn" {
		t.Fatalf("expected best match first, got %q", results[0].Name)
	}
}

func TestSearchUsesCacheBeforeEngine(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{name: "a", results: []snack.Snack{{Name: "Popcorn"}}}
	cache := newStubCache()
	aggregator := newTestAggregator(t, cache, engine)

	if _, err := aggregator.Search(context.Background(), "popcorn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if engine.calls != 1 {
		t.Fatalf("expected one engine call on cold cache, got %d", engine.calls)
	}

	if _, err := aggregator.Search(context.Background(), "popcorn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if engine.calls != 1 {
		t.Fatalf("expected cache hit to skip the engine, got %d calls", engine.calls)
	}
}

func TestSearchSwallowsCacheFailures(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{name: "a", results: []snack.Snack{{Name: "Popcorn"}}}
	cache := newStubCache()
	cache.getErr = &CacheError{Op: "get", Err: fmt.Errorf("cache down")}
	cache.putErr = &CacheError{Op: "put", Err: fmt.Errorf("cache down")}
	aggregator := newTestAggregator(t, cache, engine)

	results, err := aggregator.Search(context.Background(), "popcorn")
	if err != nil {
		t.Fatalf("cache failure must never fail the search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected engine results despite cache failure, got %d", len(results))
	}
}

func TestSearchRejectsBlankQuery(t *testing.T) {
	t.Parallel()

	aggregator := newTestAggregator(t, nil, &stubEngine{name: "a"})
	if _, err := aggregator.Search(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank query")
	}
}
