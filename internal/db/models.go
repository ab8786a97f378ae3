package db

import (
	"encoding/json"
	"time"
)

// Team maps snax.teams. One row per Slack workspace that completed OAuth.
type Team struct {
	TeamID      string    `gorm:"column:team_id;type:text;primaryKey"`
	TeamName    string    `gorm:"column:team_name;type:text;not null"`
	UserID      string    `gorm:"column:user_id;type:text;not null"`
	AccessToken string    `gorm:"column:access_token;type:text;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Team) TableName() string { return "snax.teams" }

// RequestLocation maps snax.request_locations.
type RequestLocation struct {
	LocationUUID string    `gorm:"column:location_uuid;type:uuid;primaryKey;default:gen_random_uuid()"`
	TeamID       string    `gorm:"column:team_id;type:text;not null;index"`
	Name         string    `gorm:"column:name;type:text;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (RequestLocation) TableName() string { return "snax.request_locations" }

// UserLocation maps snax.user_locations. One row per user per team.
type UserLocation struct {
	TeamID       string    `gorm:"column:team_id;type:text;primaryKey"`
	UserID       string    `gorm:"column:user_id;type:text;primaryKey"`
	LocationUUID string    `gorm:"column:location_uuid;type:uuid;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (UserLocation) TableName() string { return "snax.user_locations" }

// SnackRequest maps snax.snack_requests. The snack snapshot and the ordered
// requester list are embedded documents owned exclusively by the row.
type SnackRequest struct {
	RequestUUID           string          `gorm:"column:request_uuid;type:uuid;primaryKey;default:gen_random_uuid()"`
	TeamID                string          `gorm:"column:team_id;type:text;not null;index"`
	LocationUUID          string          `gorm:"column:location_uuid;type:uuid;not null;index"`
	OriginalRequestString string          `gorm:"column:original_request_string;type:text;not null"`
	Snack                 json.RawMessage `gorm:"column:snack;type:jsonb;not null"`
	Requesters            json.RawMessage `gorm:"column:requesters;type:jsonb;not null"`
	IsFavorite            bool            `gorm:"column:is_favorite;type:boolean;not null;default:false"`
	IsBlocked             bool            `gorm:"column:is_blocked;type:boolean;not null;default:false"`
	CreatedAt             time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt             time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (SnackRequest) TableName() string { return "snax.snack_requests" }

func autoMigrateModels() []any {
	return []any{
		&Team{},
		&RequestLocation{},
		&UserLocation{},
		&SnackRequest{},
	}
}
