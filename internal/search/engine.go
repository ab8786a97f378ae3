// Package search queries external snack catalogs and merges their results
// into one ranked candidate list.
package search

import (
	"context"
	"fmt"

	"snax.fit/snax/internal/snack"
)

// Engine is one external catalog search source. Implementations are
// read-only and safe for concurrent use.
type Engine interface {
	// Search returns raw candidates for a free-text query. A nil slice and
	// nil error is a valid empty result.
	Search(ctx context.Context, queryText string) ([]snack.Snack, error)
	Name() string
}

// EngineError marks a failure of a single engine. The aggregator absorbs
// these; one engine being down never fails the whole search.
type EngineError struct {
	Engine string
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s: %v", e.Engine, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// CacheError marks a cache read or write failure. Callers must treat it as
// non-fatal; the search degrades to always-miss behavior.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("search cache %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
