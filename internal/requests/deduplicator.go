package requests

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"snax.fit/snax/internal/similarity"
	"snax.fit/snax/internal/snack"
)

// Outcome is the result of one request decision.
type Outcome string

const (
	// OutcomeCreatedNew means no open request matched and a new one exists.
	OutcomeCreatedNew Outcome = "created_new"
	// OutcomeVoteAdded means the requester was appended to an existing request.
	OutcomeVoteAdded Outcome = "vote_added"
	// OutcomeAlreadyVoted means the requester was already on the matching
	// request; nothing was written.
	OutcomeAlreadyVoted Outcome = "already_voted"
	// OutcomeSimilarPendingConfirmation means a fuzzy match needs user
	// confirmation before merging; nothing was written.
	OutcomeSimilarPendingConfirmation Outcome = "similar_pending_confirmation"
)

// Thresholds are the tunable matching parameters. Zero values fall back to
// the documented defaults.
type Thresholds struct {
	MinNameSimilarity        float64
	MinDescriptionSimilarity float64
	BrandBoostMultiplier     float64
}

func (t Thresholds) withDefaults() Thresholds {
	if t.MinNameSimilarity <= 0 {
		t.MinNameSimilarity = 0.65
	}
	if t.MinDescriptionSimilarity <= 0 {
		t.MinDescriptionSimilarity = 0.2
	}
	if t.BrandBoostMultiplier < 1 {
		t.BrandBoostMultiplier = 1.25
	}
	return t
}

// Intent is one incoming request decision: who wants which snack where.
type Intent struct {
	Requester    snack.Requester
	Snack        snack.Snack
	Location     snack.Location
	OriginalText string
	// MergeConfirmed marks that the user already approved merging into a
	// similar request, so a fuzzy match behaves like an exact one.
	MergeConfirmed bool
	// ForceNew skips matching entirely; the user rejected a proposed merge.
	ForceNew bool
}

// Result carries the outcome and the request it refers to. For
// OutcomeSimilarPendingConfirmation the request is the existing similar one,
// returned read-only for user disambiguation.
type Result struct {
	Outcome Outcome       `json:"outcome"`
	Request *SnackRequest `json:"request,omitempty"`
}

// Similarity is the composite score between a candidate and an existing
// snapshot, after brand boost.
type Similarity struct {
	Name        float64
	Description float64
}

// Deduplicator decides whether a request-intent matches an already-open
// request closely enough to merge votes instead of creating a new entry.
type Deduplicator struct {
	store      Store
	logger     zerolog.Logger
	thresholds Thresholds
}

func NewDeduplicator(store Store, logger zerolog.Logger, thresholds Thresholds) *Deduplicator {
	return &Deduplicator{
		store:      store,
		logger:     logger,
		thresholds: thresholds.withDefaults(),
	}
}

// SnackSimilarity computes the composite similarity between an existing
// snapshot and a candidate. Matching UPCs short-circuit to a full score.
// When both snacks carry the same brand, both components are multiplied by
// the brand boost.
func (d *Deduplicator) SnackSimilarity(existing, candidate snack.Snack) Similarity {
	if existing.UPC != "" && existing.UPC == candidate.UPC {
		return Similarity{Name: 1, Description: 1}
	}

	result := Similarity{
		Name:        similarity.Score(existing.Name, candidate.Name),
		Description: similarity.Score(existing.Description, candidate.Description),
	}
	if existing.SameBrand(candidate) {
		result.Name *= d.thresholds.BrandBoostMultiplier
		result.Description *= d.thresholds.BrandBoostMultiplier
	}
	return result
}

// Request runs one decision. Only OutcomeCreatedNew and OutcomeVoteAdded
// write to the store. Store read errors fail the whole decision; write
// errors surface without retry (at-most-once).
//
// Two users racing on the same unseen product can both observe no match
// and both create a request; the store does not serialize find-or-create.
// The duplicate pair is user-visible and resolved by voting, never merged
// automatically.
func (d *Deduplicator) Request(ctx context.Context, intent Intent) (Result, error) {
	if d == nil || d.store == nil {
		return Result{}, fmt.Errorf("deduplicator is not initialized")
	}
	if err := validateIntent(intent); err != nil {
		return Result{}, err
	}

	if intent.ForceNew {
		return d.createNew(ctx, intent)
	}

	existing, exact, fuzzy, err := d.findExistingRequest(ctx, intent)
	if err != nil {
		return Result{}, err
	}

	switch {
	case existing == nil || (!exact && !fuzzy):
		return d.createNew(ctx, intent)

	case exact || intent.MergeConfirmed:
		if len(existing.Requesters) == 0 {
			return Result{}, fmt.Errorf("request %s: %w", existing.ID, ErrCorruptRequest)
		}
		if existing.HasRequester(intent.Requester.UserID, intent.Requester.TeamID) {
			d.logger.Debug().Str("request_id", existing.ID).Str("user_id", intent.Requester.UserID).Msg("requester already voted")
			return Result{Outcome: OutcomeAlreadyVoted, Request: existing}, nil
		}
		updated, err := d.store.AppendRequester(ctx, existing, intent.Requester)
		if err != nil {
			return Result{}, fmt.Errorf("add vote to request %s: %w", existing.ID, err)
		}
		d.logger.Info().Str("request_id", updated.ID).Int("requesters", len(updated.Requesters)).Msg("vote added to existing request")
		return Result{Outcome: OutcomeVoteAdded, Request: updated}, nil

	default:
		d.logger.Debug().Str("request_id", existing.ID).Msg("similar request needs confirmation")
		return Result{Outcome: OutcomeSimilarPendingConfirmation, Request: existing}, nil
	}
}

// findExistingRequest looks for an open request matching the intent. A UPC
// hit or a shared product URL pair is exact; a composite similarity above
// the thresholds is fuzzy.
func (d *Deduplicator) findExistingRequest(ctx context.Context, intent Intent) (existing *SnackRequest, exact, fuzzy bool, err error) {
	teamID := intent.Requester.TeamID

	if intent.Snack.UPC != "" {
		existing, err = d.store.FindByUPC(ctx, teamID, intent.Location, intent.Snack.UPC)
		if err != nil {
			return nil, false, false, fmt.Errorf("lookup request by upc: %w", err)
		}
		if existing != nil {
			return existing, true, false, nil
		}
	}

	existing, err = d.store.FindByText(ctx, teamID, intent.Location, intent.OriginalText)
	if err != nil {
		return nil, false, false, fmt.Errorf("lookup request by text: %w", err)
	}
	if existing == nil {
		return nil, false, false, nil
	}

	if existing.Snack.SharesProductURL(intent.Snack) {
		return existing, true, false, nil
	}

	score := d.SnackSimilarity(existing.Snack, intent.Snack)
	fuzzy = score.Name > d.thresholds.MinNameSimilarity &&
		score.Description > d.thresholds.MinDescriptionSimilarity
	d.logger.Debug().
		Str("request_id", existing.ID).
		Float64("name_similarity", score.Name).
		Float64("description_similarity", score.Description).
		Bool("fuzzy_match", fuzzy).
		Msg("compared candidate against existing request")
	return existing, false, fuzzy, nil
}

func (d *Deduplicator) createNew(ctx context.Context, intent Intent) (Result, error) {
	created, err := d.store.Create(ctx, intent.Snack, intent.Requester, intent.Location, intent.OriginalText)
	if err != nil {
		return Result{}, fmt.Errorf("create snack request: %w", err)
	}
	d.logger.Info().Str("request_id", created.ID).Str("snack", created.Snack.Name).Msg("created new snack request")
	return Result{Outcome: OutcomeCreatedNew, Request: created}, nil
}

func validateIntent(intent Intent) error {
	if strings.TrimSpace(intent.Requester.UserID) == "" || strings.TrimSpace(intent.Requester.TeamID) == "" {
		return fmt.Errorf("requester user and team ids are required")
	}
	if strings.TrimSpace(intent.Location.ID) == "" {
		return fmt.Errorf("location is required")
	}
	if strings.TrimSpace(intent.Snack.Name) == "" {
		return fmt.Errorf("snack name is required")
	}
	return nil
}
