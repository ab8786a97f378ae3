package requests

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"snax.fit/snax/internal/snack"
)

type stubStore struct {
	byUPC  *SnackRequest
	byText *SnackRequest

	upcCalls    int
	textCalls   int
	createCalls int
	appendCalls int
}

func (s *stubStore) FindByUPC(_ context.Context, _ string, _ snack.Location, _ string) (*SnackRequest, error) {
	s.upcCalls++
	return s.byUPC, nil
}

func (s *stubStore) FindByText(_ context.Context, _ string, _ snack.Location, _ string) (*SnackRequest, error) {
	s.textCalls++
	return s.byText, nil
}

func (s *stubStore) Create(_ context.Context, item snack.Snack, requester snack.Requester, location snack.Location, originalText string) (*SnackRequest, error) {
	s.createCalls++
	return &SnackRequest{
		ID:                    "created-1",
		TeamID:                requester.TeamID,
		Location:              location,
		Snack:                 item.Clone(),
		Requesters:            []snack.Requester{requester},
		OriginalRequestString: originalText,
	}, nil
}

func (s *stubStore) AppendRequester(_ context.Context, request *SnackRequest, requester snack.Requester) (*SnackRequest, error) {
	s.appendCalls++
	updated := *request
	updated.Requesters = append(append([]snack.Requester{}, request.Requesters...), requester)
	return &updated, nil
}

func testIntent() Intent {
	return Intent{
		Requester:    snack.Requester{Name: "Dana", UserID: "U2", TeamID: "T1"},
		Location:     snack.Location{ID: "loc-1", Name: "HQ"},
		Snack:        snack.Snack{Name: "Cheddar Popcorn"},
		OriginalText: "cheddar popcorn",
	}
}

func existingRequest(item snack.Snack) *SnackRequest {
	return &SnackRequest{
		ID:                    "existing-1",
		TeamID:                "T1",
		Location:              snack.Location{ID: "loc-1", Name: "HQ"},
		Snack:                 item,
		Requesters:            []snack.Requester{{Name: "Sam", UserID: "U1", TeamID: "T1"}},
		OriginalRequestString: "popcorn",
	}
}

func TestRequestAddsVoteOnMatchingUPC(t *testing.T) {
	t.Parallel()

	store := &stubStore{byUPC: existingRequest(snack.Snack{
		Name: "Cheddar Cheese Popcorn Bag",
		UPC:  "111222333",
	})}
	dedup := NewDeduplicator(store, zerolog.Nop(), Thresholds{})

	intent := testIntent()
	intent.Snack.UPC = "111222333"

	result, err := dedup.Request(context.Background(), intent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeVoteAdded {
		t.Fatalf("expected vote added, got %q", result.Outcome)
	}
	if len(result.Request.Requesters) != 2 {
		t.Fatalf("expected two requesters, got %d", len(result.Request.Requesters))
	}
	if store.createCalls != 0 {
		t.Fatalf("expected no create, got %d", store.createCalls)
	}
}

func TestRequestSimilarNameNeedsConfirmation(t *testing.T) {
	t.Parallel()

	store := &stubStore{byText: existingRequest(snack.Snack{
		Name:        "Original Oreos",
		Description: "Chocolate sandwich cookies",
	})}
	dedup := NewDeduplicator(store, zerolog.Nop(), Thresholds{})

	intent := testIntent()
	intent.Snack = snack.Snack{
		Name:        "Oreo Original",
		Description: "Chocolate sandwich cookies",
	}
	intent.OriginalText = "oreo original"

	result, err := dedup.Request(context.Background(), intent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeSimilarPendingConfirmation {
		t.Fatalf("expected pending confirmation, got %q", result.Outcome)
	}
	if result.Request.ID != "existing-1" {
		t.Fatalf("expected existing request returned, got %q", result.Request.ID)
	}
	if store.appendCalls != 0 || store.createCalls != 0 {
		t.Fatal("pending confirmation must not write")
	}
}

func TestRequestMergeConfirmedTreatsFuzzyAsExact(t *testing.T) {
	t.Parallel()

	store := &stubStore{byText: existingRequest(snack.Snack{
		Name:        "Original Oreos",
		Description: "Chocolate sandwich cookies",
	})}
	dedup := NewDeduplicator(store, zerolog.Nop(), Thresholds{})

	intent := testIntent()
	intent.Snack = snack.Snack{
		Name:        "Oreo Original",
		Description: "Chocolate sandwich cookies",
	}
	intent.MergeConfirmed = true

	result, err := dedup.Request(context.Background(), intent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeVoteAdded {
		t.Fatalf("expected vote added, got %q", result.Outcome)
	}
}

func TestRequestSharedProductURLMatchesDespiteDifferentNames(t *testing.T) {
	t.Parallel()

	store := &stubStore{byText: existingRequest(snack.Snack{
		Name:        "Popcorn, Cheddar Cheese Flavored, Family Size",
		ProductURLs: map[string]string{"shiptId": "prod-9"},
	})}
	dedup := NewDeduplicator(store, zerolog.Nop(), Thresholds{})

	intent := testIntent()
	intent.Snack = snack.Snack{
		Name:        "Smartfood White Cheddar",
		ProductURLs: map[string]string{"shiptId": "prod-9"},
	}

	result, err := dedup.Request(context.Background(), intent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeVoteAdded {
		t.Fatalf("expected shared product id to merge, got %q", result.Outcome)
	}
}

func TestRequestUnrelatedSnackCreatesNew(t *testing.T) {
	t.Parallel()

	store := &stubStore{byText: existingRequest(snack.Snack{
		Name:        "Granola Bar",
		Description: "Oats and honey",
	})}
	dedup := NewDeduplicator(store, zerolog.Nop(), Thresholds{})

	intent := testIntent()
	intent.Snack = snack.Snack{
		Name:        "Spicy Chips",
		Description: "Very hot corn chips",
	}

	result, err := dedup.Request(context.Background(), intent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeCreatedNew {
		t.Fatalf("expected new request, got %q", result.Outcome)
	}
	if store.createCalls != 1 {
		t.Fatalf("expected one create, got %d", store.createCalls)
	}
	if len(result.Request.Requesters) != 1 {
		t.Fatalf("expected single requester on new request, got %d", len(result.Request.Requesters))
	}
}

func TestRequestAlreadyVotedDoesNotWrite(t *testing.T) {
	t.Parallel()

	existing := existingRequest(snack.Snack{Name: "Cheddar Popcorn", UPC: "111"})
	existing.Requesters = append(existing.Requesters, snack.Requester{Name: "Dana", UserID: "U2", TeamID: "T1"})
	store := &stubStore{byUPC: existing}
	dedup := NewDeduplicator(store, zerolog.Nop(), Thresholds{})

	intent := testIntent()
	intent.Snack.UPC = "111"

	result, err := dedup.Request(context.Background(), intent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeAlreadyVoted {
		t.Fatalf("expected already voted, got %q", result.Outcome)
	}
	if store.appendCalls != 0 {
		t.Fatalf("expected no append, got %d", store.appendCalls)
	}
}

func TestRequestForceNewSkipsMatching(t *testing.T) {
	t.Parallel()

	store := &stubStore{byUPC: existingRequest(snack.Snack{Name: "Cheddar Popcorn", UPC: "111"})}
	dedup := NewDeduplicator(store, zerolog.Nop(), Thresholds{})

	intent := testIntent()
	intent.Snack.UPC = "111"
	intent.ForceNew = true

	result, err := dedup.Request(context.Background(), intent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeCreatedNew {
		t.Fatalf("expected forced creation, got %q", result.Outcome)
	}
	if store.upcCalls != 0 || store.textCalls != 0 {
		t.Fatal("forced creation must not run matching lookups")
	}
}

func TestRequestSurfacesCorruptRequest(t *testing.T) {
	t.Parallel()

	corrupt := existingRequest(snack.Snack{Name: "Cheddar Popcorn", UPC: "111"})
	corrupt.Requesters = nil
	store := &stubStore{byUPC: corrupt}
	dedup := NewDeduplicator(store, zerolog.Nop(), Thresholds{})

	intent := testIntent()
	intent.Snack.UPC = "111"

	if _, err := dedup.Request(context.Background(), intent); !errors.Is(err, ErrCorruptRequest) {
		t.Fatalf("expected corrupt request error, got %v", err)
	}
}

func TestRequestValidatesIntent(t *testing.T) {
	t.Parallel()

	dedup := NewDeduplicator(&stubStore{}, zerolog.Nop(), Thresholds{})

	intent := testIntent()
	intent.Snack.Name = "  "
	if _, err := dedup.Request(context.Background(), intent); err == nil {
		t.Fatal("expected error for blank snack name")
	}

	intent = testIntent()
	intent.Location = snack.Location{}
	if _, err := dedup.Request(context.Background(), intent); err == nil {
		t.Fatal("expected error for missing location")
	}
}

func TestSnackSimilarityBrandBoost(t *testing.T) {
	t.Parallel()

	dedup := NewDeduplicator(&stubStore{}, zerolog.Nop(), Thresholds{})

	plain := dedup.SnackSimilarity(
		snack.Snack{Name: "Cheese Crackers"},
		snack.Snack{Name: "Cheesy Crackers"},
	)
	boosted := dedup.SnackSimilarity(
		snack.Snack{Name: "Cheese Crackers", Brand: "Cheez-It"},
		snack.Snack{Name: "Cheesy Crackers", Brand: "cheez-it"},
	)
	if boosted.Name <= plain.Name {
		t.Fatalf("expected brand boost to raise name score: plain %f boosted %f", plain.Name, boosted.Name)
	}
}
