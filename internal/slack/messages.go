package slack

import (
	"fmt"
	"strings"

	"snax.fit/snax/internal/reader"
	"snax.fit/snax/internal/requests"
	"snax.fit/snax/internal/snack"
)

const (
	// ResponseEphemeral is visible only to the acting user.
	ResponseEphemeral = "ephemeral"
	// ResponseInChannel is visible to the whole channel.
	ResponseInChannel = "in_channel"

	maxSearchResults   = 10
	maxDescriptionRune = 150
)

// Message is an outgoing chat message in Block Kit form.
type Message struct {
	ResponseType string  `json:"response_type,omitempty"`
	Text         string  `json:"text,omitempty"`
	Blocks       []Block `json:"blocks,omitempty"`
}

// Block is one Block Kit layout block. Only the fields for the block's type
// are populated.
type Block struct {
	Type      string     `json:"type"`
	Text      *Text      `json:"text,omitempty"`
	Elements  []Element  `json:"elements,omitempty"`
	Accessory *Accessory `json:"accessory,omitempty"`
	ImageURL  string     `json:"image_url,omitempty"`
	AltText   string     `json:"alt_text,omitempty"`
}

type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Element struct {
	Type     string `json:"type"`
	Text     *Text  `json:"text,omitempty"`
	ActionID string `json:"action_id,omitempty"`
	Value    string `json:"value,omitempty"`
	Style    string `json:"style,omitempty"`
}

type Accessory struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url,omitempty"`
	AltText  string `json:"alt_text,omitempty"`
}

func markdown(text string) *Text  { return &Text{Type: "mrkdwn", Text: text} }
func plainText(text string) *Text { return &Text{Type: "plain_text", Text: text} }

func ephemeralText(text string) Message {
	return Message{ResponseType: ResponseEphemeral, Text: text}
}

// SearchResultsMessage lists ranked results with one request button each.
// Only the top results fit a chat message.
func SearchResultsMessage(queryText string, snacks []snack.Snack) (Message, error) {
	if len(snacks) == 0 {
		return ephemeralText(fmt.Sprintf("No snacks found for %q. Try a different search.", queryText)), nil
	}
	if len(snacks) > maxSearchResults {
		snacks = snacks[:maxSearchResults]
	}

	blocks := make([]Block, 0, 2*len(snacks)+1)
	blocks = append(blocks, Block{
		Type: "section",
		Text: markdown(fmt.Sprintf("Results for *%s*:", queryText)),
	})

	for _, item := range snacks {
		value, err := EncodeActionValue(ActionValue{Snack: &item, OriginalText: queryText})
		if err != nil {
			return Message{}, err
		}

		section := Block{
			Type: "section",
			Text: markdown(snackSummary(item)),
		}
		if item.ImageURL != "" {
			section.Accessory = &Accessory{Type: "image", ImageURL: item.ImageURL, AltText: item.Name}
		}
		blocks = append(blocks, section, Block{
			Type: "actions",
			Elements: []Element{{
				Type:     "button",
				Text:     plainText("Request this"),
				ActionID: ActionRequestSnack,
				Value:    value,
			}},
		})
	}

	return Message{ResponseType: ResponseEphemeral, Text: fmt.Sprintf("Results for %q", queryText), Blocks: blocks}, nil
}

// SimilarPromptMessage asks the user whether their candidate is the snack
// already requested, with merge and force-new buttons.
func SimilarPromptMessage(existing *requests.SnackRequest, candidate snack.Snack, originalText string) (Message, error) {
	mergeValue, err := EncodeActionValue(ActionValue{Snack: &candidate, OriginalText: originalText})
	if err != nil {
		return Message{}, err
	}
	forceValue, err := EncodeActionValue(ActionValue{Snack: &candidate, OriginalText: originalText})
	if err != nil {
		return Message{}, err
	}

	initial := existing.InitialRequester()
	prompt := fmt.Sprintf(
		"*%s* looks a lot like *%s*, already requested by %s with %d vote(s). Same snack?",
		candidate.Name, existing.Snack.Name, initial.Name, len(existing.Requesters),
	)

	return Message{
		ResponseType: ResponseEphemeral,
		Text:         prompt,
		Blocks: []Block{
			{Type: "section", Text: markdown(prompt)},
			{Type: "section", Text: markdown(snackSummary(existing.Snack))},
			{Type: "actions", Elements: []Element{
				{
					Type:     "button",
					Text:     plainText("Yes, add my vote"),
					ActionID: ActionConfirmMerge,
					Value:    mergeValue,
					Style:    "primary",
				},
				{
					Type:     "button",
					Text:     plainText("No, it's different"),
					ActionID: ActionForceNew,
					Value:    forceValue,
				},
			}},
		},
	}, nil
}

// OutcomeMessage renders the result of a request decision.
func OutcomeMessage(result requests.Result) Message {
	switch result.Outcome {
	case requests.OutcomeCreatedNew:
		return Message{
			ResponseType: ResponseInChannel,
			Text:         fmt.Sprintf("%s requested *%s*. It's on the snack list!", result.Request.InitialRequester().Name, result.Request.Snack.Name),
		}
	case requests.OutcomeVoteAdded:
		return Message{
			ResponseType: ResponseInChannel,
			Text:         fmt.Sprintf("Vote added! *%s* now has %d vote(s).", result.Request.Snack.Name, len(result.Request.Requesters)),
		}
	case requests.OutcomeAlreadyVoted:
		return ephemeralText(fmt.Sprintf("You already voted for *%s*.", result.Request.Snack.Name))
	default:
		return ephemeralText("Something unexpected happened with your request.")
	}
}

// RequestListMessage renders the open requests for one location, ranked by
// votes.
func RequestListMessage(location snack.Location, items []requests.SnackRequest) Message {
	if len(items) == 0 {
		return ephemeralText(fmt.Sprintf("No open snack requests for *%s* yet.", location.Name))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Open requests for *%s*:\n", location.Name)
	for _, item := range items {
		fmt.Fprintf(&b, "• *%s*", item.Snack.Name)
		if item.Snack.Brand != "" {
			fmt.Fprintf(&b, " (%s)", item.Snack.Brand)
		}
		fmt.Fprintf(&b, " with %d vote(s)\n", len(item.Requesters))
	}

	return Message{
		ResponseType: ResponseEphemeral,
		Text:         b.String(),
		Blocks:       []Block{{Type: "section", Text: markdown(b.String())}},
	}
}

// LocationListMessage lists a team's locations with a select button each.
func LocationListMessage(locations []snack.Location) (Message, error) {
	if len(locations) == 0 {
		return ephemeralText("No locations yet. Add one with `/snax locations add <name>`."), nil
	}

	blocks := make([]Block, 0, len(locations)+1)
	blocks = append(blocks, Block{Type: "section", Text: markdown("Pick your location:")})
	for _, location := range locations {
		value, err := EncodeActionValue(ActionValue{LocationID: location.ID})
		if err != nil {
			return Message{}, err
		}
		blocks = append(blocks, Block{
			Type: "section",
			Text: markdown("*" + location.Name + "*"),
		}, Block{
			Type: "actions",
			Elements: []Element{{
				Type:     "button",
				Text:     plainText("This is my location"),
				ActionID: ActionSetLocation,
				Value:    value,
			}},
		})
	}

	return Message{ResponseType: ResponseEphemeral, Text: "Pick your location", Blocks: blocks}, nil
}

// NoLocationMessage tells the user to pick a location first.
func NoLocationMessage() Message {
	return ephemeralText("You need a location before requesting snacks. Run `/snax locations` to pick one.")
}

// ErrorMessage is the generic user-facing failure reply.
func ErrorMessage() Message {
	return ephemeralText("Something went wrong. Please try again.")
}

func snackSummary(item snack.Snack) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*", item.Name)
	if item.Brand != "" {
		fmt.Fprintf(&b, " by %s", item.Brand)
	}
	if item.Description != "" {
		description, _ := reader.TruncateText(reader.CleanText(item.Description), maxDescriptionRune)
		fmt.Fprintf(&b, "\n%s", description)
	}
	if item.SourceEngine != "" {
		fmt.Fprintf(&b, "\n_found on %s_", item.SourceEngine)
	}
	return b.String()
}
