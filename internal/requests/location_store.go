package requests

import (
	"context"
	"fmt"

	"snax.fit/snax/internal/db"
	"snax.fit/snax/internal/snack"
)

// PGLocationStore is the postgres-backed locationStore.
type PGLocationStore struct {
	pool *db.Pool
}

func NewPGLocationStore(pool *db.Pool) *PGLocationStore {
	return &PGLocationStore{pool: pool}
}

func (s *PGLocationStore) InsertLocation(ctx context.Context, teamID, name string) (snack.Location, error) {
	q := `
INSERT INTO snax.request_locations (team_id, name)
VALUES ($1, $2)
RETURNING location_uuid, name
`
	var location snack.Location
	if err := s.pool.QueryRow(ctx, q, teamID, name).Scan(&location.ID, &location.Name); err != nil {
		return snack.Location{}, fmt.Errorf("insert location: %w", err)
	}
	return location, nil
}

func (s *PGLocationStore) UpdateLocationName(ctx context.Context, teamID, locationID, name string) (snack.Location, error) {
	q := `
UPDATE snax.request_locations
SET name = $3, updated_at = now()
WHERE team_id = $1 AND location_uuid = $2
RETURNING location_uuid, name
`
	var location snack.Location
	if err := s.pool.QueryRow(ctx, q, teamID, locationID, name).Scan(&location.ID, &location.Name); err != nil {
		if db.IsNoRows(err) {
			return snack.Location{}, fmt.Errorf("location %q not found for team %s", locationID, teamID)
		}
		return snack.Location{}, fmt.Errorf("update location: %w", err)
	}
	return location, nil
}

func (s *PGLocationStore) ListLocations(ctx context.Context, teamID string) ([]snack.Location, error) {
	q := `
SELECT location_uuid, name
FROM snax.request_locations
WHERE team_id = $1
ORDER BY created_at
`
	rows, err := s.pool.Query(ctx, q, teamID)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	locations := make([]snack.Location, 0, 8)
	for rows.Next() {
		var location snack.Location
		if err := rows.Scan(&location.ID, &location.Name); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return locations, nil
}

func (s *PGLocationStore) FindLocationByName(ctx context.Context, teamID, name string) (*snack.Location, error) {
	q := `
SELECT location_uuid, name
FROM snax.request_locations
WHERE team_id = $1 AND lower(name) = lower($2)
LIMIT 1
`
	return s.scanLocation(ctx, q, teamID, name)
}

func (s *PGLocationStore) GetLocation(ctx context.Context, teamID, locationID string) (*snack.Location, error) {
	q := `
SELECT location_uuid, name
FROM snax.request_locations
WHERE team_id = $1 AND location_uuid = $2
LIMIT 1
`
	return s.scanLocation(ctx, q, teamID, locationID)
}

func (s *PGLocationStore) UpsertUserLocation(ctx context.Context, teamID, userID, locationID string) error {
	q := `
INSERT INTO snax.user_locations (team_id, user_id, location_uuid)
VALUES ($1, $2, $3)
ON CONFLICT (team_id, user_id)
DO UPDATE SET location_uuid = EXCLUDED.location_uuid, updated_at = now()
`
	if _, err := s.pool.Exec(ctx, q, teamID, userID, locationID); err != nil {
		return fmt.Errorf("upsert user location: %w", err)
	}
	return nil
}

func (s *PGLocationStore) GetUserLocation(ctx context.Context, teamID, userID string) (*snack.Location, error) {
	q := `
SELECT l.location_uuid, l.name
FROM snax.user_locations u
JOIN snax.request_locations l ON l.location_uuid = u.location_uuid
WHERE u.team_id = $1 AND u.user_id = $2
LIMIT 1
`
	return s.scanLocation(ctx, q, teamID, userID)
}

func (s *PGLocationStore) scanLocation(ctx context.Context, query string, args ...any) (*snack.Location, error) {
	var location snack.Location
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&location.ID, &location.Name); err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan location: %w", err)
	}
	return &location, nil
}
