package slack

import (
	"encoding/json"
	"net/url"
	"testing"

	"snax.fit/snax/internal/snack"
)

func TestParseSlashCommand(t *testing.T) {
	t.Parallel()

	values := url.Values{}
	values.Set("command", "/snax")
	values.Set("text", "  cheddar popcorn ")
	values.Set("user_id", "U1")
	values.Set("user_name", "sam")
	values.Set("team_id", "T1")
	values.Set("response_url", "https://hooks.example/respond")

	cmd, err := ParseSlashCommand(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Text != "cheddar popcorn" {
		t.Fatalf("expected trimmed text, got %q", cmd.Text)
	}

	requester := cmd.Requester()
	if requester.Name != "sam" || requester.UserID != "U1" || requester.TeamID != "T1" {
		t.Fatalf("unexpected requester: %+v", requester)
	}
}

func TestParseSlashCommandRequiresIdentity(t *testing.T) {
	t.Parallel()

	values := url.Values{}
	values.Set("command", "/snax")
	if _, err := ParseSlashCommand(values); err == nil {
		t.Fatal("expected error without user and team ids")
	}
}

func TestParseInteraction(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{
		"type": "block_actions",
		"user": {"id": "U1", "username": "sam"},
		"team": {"id": "T1"},
		"response_url": "https://hooks.example/respond",
		"actions": [{"action_id": "request_snack", "type": "button", "value": "{}"}]
	}`)

	interaction, err := ParseInteraction(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if interaction.Actions[0].ActionID != ActionRequestSnack {
		t.Fatalf("unexpected action id %q", interaction.Actions[0].ActionID)
	}
	if requester := interaction.Requester(); requester.TeamID != "T1" || requester.Name != "sam" {
		t.Fatalf("unexpected requester: %+v", requester)
	}
}

func TestParseInteractionRejectsInvalidPayload(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"wrong type":      `{"type": "view_submission", "user": {"id": "U1"}, "team": {"id": "T1"}, "actions": [{"action_id": "x"}]}`,
		"no actions":      `{"type": "block_actions", "user": {"id": "U1"}, "team": {"id": "T1"}, "actions": []}`,
		"missing user":    `{"type": "block_actions", "team": {"id": "T1"}, "actions": [{"action_id": "x"}]}`,
		"trailing data":   `{"type": "block_actions", "user": {"id": "U1"}, "team": {"id": "T1"}, "actions": [{"action_id": "x"}]} {}`,
		"not even object": `"block_actions"`,
	}

	for name, raw := range cases {
		if _, err := ParseInteraction(json.RawMessage(raw)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestActionValueRoundTrip(t *testing.T) {
	t.Parallel()

	encoded, err := EncodeActionValue(ActionValue{
		Snack:        &snack.Snack{Name: "Cheddar Popcorn", UPC: "111", Tags: []string{"popcorn"}},
		OriginalText: "cheddar popcorn",
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeActionValue(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Snack == nil || decoded.Snack.Name != "Cheddar Popcorn" || decoded.Snack.UPC != "111" {
		t.Fatalf("unexpected snack: %+v", decoded.Snack)
	}
	if decoded.OriginalText != "cheddar popcorn" {
		t.Fatalf("unexpected original text %q", decoded.OriginalText)
	}
	if decoded.Snack.Tags != nil {
		t.Fatalf("expected tags dropped from button value, got %v", decoded.Snack.Tags)
	}
}

func TestDecodeActionValueRejectsEmpty(t *testing.T) {
	t.Parallel()

	if _, err := DecodeActionValue("  "); err == nil {
		t.Fatal("expected error for empty value")
	}
}
