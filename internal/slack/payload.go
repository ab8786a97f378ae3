package slack

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"snax.fit/snax/internal/snack"
)

//go:embed interaction.schema.json
var interactionSchemaJSON string

// SlashCommand is one parsed slash command invocation.
type SlashCommand struct {
	Command     string
	Text        string
	UserID      string
	UserName    string
	TeamID      string
	ChannelID   string
	ResponseURL string
	TriggerID   string
}

// ParseSlashCommand reads the form-encoded slash command body.
func ParseSlashCommand(values url.Values) (*SlashCommand, error) {
	cmd := &SlashCommand{
		Command:     strings.TrimSpace(values.Get("command")),
		Text:        strings.TrimSpace(values.Get("text")),
		UserID:      strings.TrimSpace(values.Get("user_id")),
		UserName:    strings.TrimSpace(values.Get("user_name")),
		TeamID:      strings.TrimSpace(values.Get("team_id")),
		ChannelID:   strings.TrimSpace(values.Get("channel_id")),
		ResponseURL: strings.TrimSpace(values.Get("response_url")),
		TriggerID:   strings.TrimSpace(values.Get("trigger_id")),
	}
	if cmd.Command == "" {
		return nil, fmt.Errorf("command must not be empty")
	}
	if cmd.UserID == "" || cmd.TeamID == "" {
		return nil, fmt.Errorf("user_id and team_id must not be empty")
	}
	return cmd, nil
}

// Requester returns the slash command sender as a request voter.
func (c *SlashCommand) Requester() snack.Requester {
	if c == nil {
		return snack.Requester{}
	}
	name := c.UserName
	if name == "" {
		name = c.UserID
	}
	return snack.Requester{Name: name, UserID: c.UserID, TeamID: c.TeamID}
}

// Interaction is one parsed block_actions payload.
type Interaction struct {
	Type        string              `json:"type"`
	User        InteractionUser     `json:"user"`
	Team        InteractionTeam     `json:"team"`
	ResponseURL string              `json:"response_url"`
	TriggerID   string              `json:"trigger_id"`
	Actions     []InteractionAction `json:"actions"`
}

type InteractionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	TeamID   string `json:"team_id"`
}

type InteractionTeam struct {
	ID     string `json:"id"`
	Domain string `json:"domain"`
}

type InteractionAction struct {
	ActionID string `json:"action_id"`
	BlockID  string `json:"block_id"`
	Type     string `json:"type"`
	Value    string `json:"value"`
}

// Requester returns the interacting user as a request voter.
func (i *Interaction) Requester() snack.Requester {
	if i == nil {
		return snack.Requester{}
	}
	name := i.User.Username
	if name == "" {
		name = i.User.Name
	}
	if name == "" {
		name = i.User.ID
	}
	return snack.Requester{Name: name, UserID: i.User.ID, TeamID: i.Team.ID}
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ParseInteraction validates and decodes a block_actions payload. The
// payload arrives as the form field "payload" on interaction webhooks.
func ParseInteraction(payload json.RawMessage) (*Interaction, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode interaction JSON: %w", err)
	}

	schema, err := loadInteractionSchema()
	if err != nil {
		return nil, fmt.Errorf("load interaction schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("interaction validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize interaction JSON: %w", err)
	}

	var interaction Interaction
	if err := json.Unmarshal(normalized, &interaction); err != nil {
		return nil, fmt.Errorf("unmarshal interaction: %w", err)
	}

	return &interaction, nil
}

func loadInteractionSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("interaction.schema.json", strings.NewReader(interactionSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("interaction.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

// Button action ids. The action value carries the context needed to finish
// the flow without server-side interaction state.
const (
	ActionRequestSnack = "request_snack"
	ActionConfirmMerge = "confirm_merge"
	ActionForceNew     = "force_new"
	ActionSetLocation  = "set_location"
)

// ActionValue is the JSON carried inside a button's value field.
type ActionValue struct {
	Snack        *snack.Snack `json:"snack,omitempty"`
	OriginalText string       `json:"original_text,omitempty"`
	LocationID   string       `json:"location_id,omitempty"`
}

// EncodeActionValue packs an action value for a button. Button values are
// size-capped by the chat platform, so the snack snapshot is trimmed of its
// bulkier optional fields first.
func EncodeActionValue(value ActionValue) (string, error) {
	if value.Snack != nil {
		compact := value.Snack.Clone()
		compact.Tags = nil
		if len(compact.Description) > 300 {
			compact.Description = compact.Description[:300]
		}
		value.Snack = &compact
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode action value: %w", err)
	}
	return string(raw), nil
}

// DecodeActionValue unpacks a button's value field.
func DecodeActionValue(raw string) (ActionValue, error) {
	var value ActionValue
	if strings.TrimSpace(raw) == "" {
		return value, fmt.Errorf("action value is empty")
	}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return value, fmt.Errorf("decode action value: %w", err)
	}
	return value, nil
}
