package db

import (
	"context"
	"fmt"
	"strings"
)

// TeamRecord is the read model for an authorized Slack workspace.
type TeamRecord struct {
	TeamID      string `json:"team_id"`
	TeamName    string `json:"team_name"`
	UserID      string `json:"user_id"`
	AccessToken string `json:"-"`
}

// UpsertTeam stores or refreshes a workspace token. Returns true when the
// team was seen for the first time.
func (p *Pool) UpsertTeam(ctx context.Context, team TeamRecord) (bool, error) {
	if strings.TrimSpace(team.TeamID) == "" {
		return false, fmt.Errorf("team id is required")
	}

	const q = `
INSERT INTO snax.teams (team_id, team_name, user_id, access_token)
VALUES ($1, $2, $3, $4)
ON CONFLICT (team_id)
DO UPDATE SET
	team_name = EXCLUDED.team_name,
	user_id = EXCLUDED.user_id,
	access_token = EXCLUDED.access_token,
	updated_at = now()
RETURNING (xmax = 0)
`

	var isNew bool
	if err := p.QueryRow(ctx, q, team.TeamID, team.TeamName, team.UserID, team.AccessToken).Scan(&isNew); err != nil {
		return false, fmt.Errorf("upsert team: %w", err)
	}
	return isNew, nil
}

// GetTeam loads one workspace by team id. Returns ErrNoRows when the team
// has not completed OAuth.
func (p *Pool) GetTeam(ctx context.Context, teamID string) (*TeamRecord, error) {
	const q = `
SELECT team_id, team_name, user_id, access_token
FROM snax.teams
WHERE team_id = $1
LIMIT 1
`

	var row TeamRecord
	if err := p.QueryRow(ctx, q, teamID).Scan(
		&row.TeamID,
		&row.TeamName,
		&row.UserID,
		&row.AccessToken,
	); err != nil {
		if IsNoRows(err) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query team: %w", err)
	}
	return &row, nil
}
