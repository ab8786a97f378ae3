package slack

import (
	"fmt"
	"strings"
	"testing"

	"snax.fit/snax/internal/requests"
	"snax.fit/snax/internal/snack"
)

func TestSearchResultsMessageCapsResults(t *testing.T) {
	t.Parallel()

	snacks := make([]snack.Snack, 0, 15)
	for i := 0; i < 15; i++ {
		snacks = append(snacks, snack.Snack{Name: fmt.Sprintf("Snack %d", i)})
	}

	message, err := SearchResultsMessage("snacks", snacks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buttons := 0
	for _, block := range message.Blocks {
		if block.Type == "actions" {
			buttons += len(block.Elements)
		}
	}
	if buttons != maxSearchResults {
		t.Fatalf("expected %d request buttons, got %d", maxSearchResults, buttons)
	}
}

func TestSearchResultsMessageEmpty(t *testing.T) {
	t.Parallel()

	message, err := SearchResultsMessage("unobtainium", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if message.ResponseType != ResponseEphemeral || !strings.Contains(message.Text, "No snacks found") {
		t.Fatalf("unexpected empty-results message: %+v", message)
	}
}

func TestSimilarPromptMessageCarriesBothChoices(t *testing.T) {
	t.Parallel()

	existing := &requests.SnackRequest{
		ID:         "req-1",
		Snack:      snack.Snack{Name: "Original Oreos"},
		Requesters: []snack.Requester{{Name: "Sam", UserID: "U1", TeamID: "T1"}},
	}

	message, err := SimilarPromptMessage(existing, snack.Snack{Name: "Oreo Original"}, "oreo original")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var actionIDs []string
	for _, block := range message.Blocks {
		for _, element := range block.Elements {
			actionIDs = append(actionIDs, element.ActionID)
		}
	}
	if len(actionIDs) != 2 || actionIDs[0] != ActionConfirmMerge || actionIDs[1] != ActionForceNew {
		t.Fatalf("expected merge and force-new buttons, got %v", actionIDs)
	}
}

func TestOutcomeMessages(t *testing.T) {
	t.Parallel()

	request := &requests.SnackRequest{
		Snack: snack.Snack{Name: "Cheddar Popcorn"},
		Requesters: []snack.Requester{
			{Name: "Sam", UserID: "U1", TeamID: "T1"},
			{Name: "Dana", UserID: "U2", TeamID: "T1"},
		},
	}

	created := OutcomeMessage(requests.Result{Outcome: requests.OutcomeCreatedNew, Request: request})
	if created.ResponseType != ResponseInChannel {
		t.Fatalf("expected new requests announced in channel, got %q", created.ResponseType)
	}

	voted := OutcomeMessage(requests.Result{Outcome: requests.OutcomeVoteAdded, Request: request})
	if !strings.Contains(voted.Text, "2 vote(s)") {
		t.Fatalf("expected vote count in message, got %q", voted.Text)
	}

	already := OutcomeMessage(requests.Result{Outcome: requests.OutcomeAlreadyVoted, Request: request})
	if already.ResponseType != ResponseEphemeral {
		t.Fatalf("expected already-voted reply to stay private, got %q", already.ResponseType)
	}
}

func TestRequestListMessage(t *testing.T) {
	t.Parallel()

	location := snack.Location{ID: "loc-1", Name: "HQ"}

	empty := RequestListMessage(location, nil)
	if !strings.Contains(empty.Text, "No open snack requests") {
		t.Fatalf("unexpected empty-list message %q", empty.Text)
	}

	listed := RequestListMessage(location, []requests.SnackRequest{{
		Snack:      snack.Snack{Name: "Cheddar Popcorn", Brand: "Snacktown"},
		Requesters: []snack.Requester{{UserID: "U1", TeamID: "T1"}},
	}})
	if !strings.Contains(listed.Text, "Cheddar Popcorn") || !strings.Contains(listed.Text, "1 vote(s)") {
		t.Fatalf("unexpected list message %q", listed.Text)
	}
}
