// Package requests persists snack requests and decides whether a new
// request-intent matches one that is already open.
package requests

import (
	"errors"
	"time"

	"snax.fit/snax/internal/snack"
)

// ErrCorruptRequest marks a stored request with an empty requester list.
// That list is non-empty for the lifetime of the entity, so an empty one
// means external data corruption; it is surfaced, never silently repaired.
var ErrCorruptRequest = errors.New("snack request has no requesters")

// SnackRequest is one distinct requested product at one location, with one
// or more requesters. The snack snapshot and requester list are owned by
// the request; the location is referenced by its immutable id.
type SnackRequest struct {
	ID                    string            `json:"id"`
	TeamID                string            `json:"team_id"`
	Location              snack.Location    `json:"location"`
	Snack                 snack.Snack       `json:"snack"`
	Requesters            []snack.Requester `json:"requesters"`
	OriginalRequestString string            `json:"original_request_string"`
	IsFavorite            bool              `json:"is_favorite,omitempty"`
	IsBlocked             bool              `json:"is_blocked,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// InitialRequester returns the first requester, the user whose request
// created the entity.
func (r *SnackRequest) InitialRequester() snack.Requester {
	if r == nil || len(r.Requesters) == 0 {
		return snack.Requester{}
	}
	return r.Requesters[0]
}

// HasRequester reports whether the user already voted for this request.
func (r *SnackRequest) HasRequester(userID, teamID string) bool {
	if r == nil {
		return false
	}
	for _, requester := range r.Requesters {
		if requester.UserID == userID && requester.TeamID == teamID {
			return true
		}
	}
	return false
}
