package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"snax.fit/snax/internal/similarity"
	"snax.fit/snax/internal/snack"
)

const defaultFanOutLimit = 4

// AggregatorOptions tunes merge behavior.
type AggregatorOptions struct {
	// NearDuplicateThreshold is the name similarity above which two
	// differently named candidates are treated as the same product.
	NearDuplicateThreshold float64
	// FanOutLimit bounds concurrent engine calls. Zero means the default.
	FanOutLimit int
}

// Aggregator queries every registered engine (through the cache), merges
// the results, suppresses near-duplicate listings, and ranks by similarity
// to the query.
type Aggregator struct {
	registry *Registry
	cache    Cache
	logger   zerolog.Logger
	opts     AggregatorOptions
}

func NewAggregator(registry *Registry, cache Cache, logger zerolog.Logger, opts AggregatorOptions) *Aggregator {
	if opts.NearDuplicateThreshold <= 0 || opts.NearDuplicateThreshold > 1 {
		opts.NearDuplicateThreshold = 0.8
	}
	if opts.FanOutLimit <= 0 {
		opts.FanOutLimit = defaultFanOutLimit
	}
	return &Aggregator{
		registry: registry,
		cache:    cache,
		logger:   logger,
		opts:     opts,
	}
}

type rankedSnack struct {
	snack     snack.Snack
	relevance float64
}

// Search returns the merged, deduplicated, relevance-ranked candidate list
// for queryText. An empty list is a valid non-error outcome, including when
// every engine fails; only a blank query is an error.
func (a *Aggregator) Search(ctx context.Context, queryText string) ([]snack.Snack, error) {
	if a == nil || a.registry == nil {
		return nil, fmt.Errorf("aggregator is not initialized")
	}

	query := strings.TrimSpace(queryText)
	if query == "" {
		return nil, fmt.Errorf("query text is required")
	}

	engines := a.registry.Engines()
	results := make([][]snack.Snack, len(engines))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(a.opts.FanOutLimit)
	for i, engine := range engines {
		group.Go(func() error {
			// Engine and cache failures are absorbed here: the slot stays
			// empty and the remaining engines still contribute.
			results[i] = a.fetchCandidates(groupCtx, engine, query)
			return nil
		})
	}
	_ = group.Wait()

	merged := make([]rankedSnack, 0, 32)
	for _, engineResults := range results {
		for _, candidate := range engineResults {
			merged = append(merged, rankedSnack{
				snack:     candidate,
				relevance: similarity.Score(candidate.Name, query),
			})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].relevance > merged[j].relevance
	})

	return a.suppressNearDuplicates(merged), nil
}

func (a *Aggregator) fetchCandidates(ctx context.Context, engine Engine, query string) []snack.Snack {
	name := engine.Name()

	if a.cache != nil {
		cached, hit, err := a.cache.Get(name, query)
		if err != nil {
			a.logger.Warn().Err(err).Str("engine", name).Str("query", query).Msg("search cache read failed")
		} else if hit {
			a.logger.Debug().Str("engine", name).Str("query", query).Int("count", len(cached)).Msg("search cache hit")
			return tagSource(cached, name)
		}
	}

	candidates, err := engine.Search(ctx, query)
	if err != nil {
		engineErr := &EngineError{Engine: name, Err: err}
		a.logger.Warn().Err(engineErr).Str("query", query).Msg("search engine failed")
		return nil
	}

	if a.cache != nil {
		if err := a.cache.Put(name, query, candidates); err != nil {
			a.logger.Warn().Err(err).Str("engine", name).Str("query", query).Msg("search cache write failed")
		}
	}

	return tagSource(candidates, name)
}

// suppressNearDuplicates drops a candidate when an earlier kept candidate
// with a different name scores above the threshold. Equal names are never a
// duplicate pair: several sources listing the same product should all
// surface with their own attribution. Each unordered pair is compared at
// most once, and the first candidate in ranked order is the one retained.
func (a *Aggregator) suppressNearDuplicates(ranked []rankedSnack) []snack.Snack {
	kept := make([]snack.Snack, 0, len(ranked))
	for _, candidate := range ranked {
		duplicate := false
		for _, existing := range kept {
			if existing.Name == candidate.snack.Name {
				continue
			}
			if similarity.Score(existing.Name, candidate.snack.Name) > a.opts.NearDuplicateThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, candidate.snack)
		}
	}
	return kept
}

func tagSource(candidates []snack.Snack, engineName string) []snack.Snack {
	for i := range candidates {
		if candidates[i].SourceEngine == "" {
			candidates[i].SourceEngine = engineName
		}
	}
	return candidates
}
