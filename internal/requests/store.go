package requests

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"snax.fit/snax/internal/db"
	"snax.fit/snax/internal/snack"
)

// Store is the persistence contract the deduplicator needs. All lookups are
// scoped to one team and one location. Finders return nil without error
// when nothing matches; every non-nil error is fatal to the operation that
// triggered it.
type Store interface {
	FindByUPC(ctx context.Context, teamID string, location snack.Location, upc string) (*SnackRequest, error)
	// FindByText returns the best-effort relevance-ranked single best match
	// against stored request strings and snack names.
	FindByText(ctx context.Context, teamID string, location snack.Location, text string) (*SnackRequest, error)
	Create(ctx context.Context, item snack.Snack, requester snack.Requester, location snack.Location, originalText string) (*SnackRequest, error)
	// AppendRequester is idempotent per (userID, teamID); appending an
	// already-present requester changes nothing and is not an error.
	AppendRequester(ctx context.Context, request *SnackRequest, requester snack.Requester) (*SnackRequest, error)
}

// PGStore is the postgres-backed Store.
type PGStore struct {
	pool *db.Pool
}

func NewPGStore(pool *db.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const snackRequestColumns = `
	request_uuid,
	team_id,
	location_uuid,
	original_request_string,
	snack,
	requesters,
	is_favorite,
	is_blocked,
	created_at,
	updated_at
`

func (s *PGStore) FindByUPC(ctx context.Context, teamID string, location snack.Location, upc string) (*SnackRequest, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("request store is not initialized")
	}
	if strings.TrimSpace(upc) == "" {
		return nil, nil
	}

	q := `
SELECT ` + snackRequestColumns + `
FROM snax.snack_requests
WHERE team_id = $1
  AND location_uuid = $2
  AND snack->>'upc' = $3
ORDER BY created_at
LIMIT 1
`

	return s.scanOne(ctx, location, q, teamID, location.ID, upc)
}

func (s *PGStore) FindByText(ctx context.Context, teamID string, location snack.Location, text string) (*SnackRequest, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("request store is not initialized")
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	// Snack names weigh above the raw request string, mirroring the
	// weighted index created at migration time.
	q := `
SELECT ` + snackRequestColumns + `
FROM snax.snack_requests
WHERE team_id = $1
  AND location_uuid = $2
  AND (
		setweight(to_tsvector('simple', coalesce(snack->>'name', '')), 'A') ||
		setweight(to_tsvector('simple', coalesce(original_request_string, '')), 'B')
	) @@ plainto_tsquery('simple', $3)
ORDER BY ts_rank(
		setweight(to_tsvector('simple', coalesce(snack->>'name', '')), 'A') ||
		setweight(to_tsvector('simple', coalesce(original_request_string, '')), 'B'),
		plainto_tsquery('simple', $3)
	) DESC
LIMIT 1
`

	return s.scanOne(ctx, location, q, teamID, location.ID, text)
}

func (s *PGStore) Create(ctx context.Context, item snack.Snack, requester snack.Requester, location snack.Location, originalText string) (*SnackRequest, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("request store is not initialized")
	}

	snackJSON, err := json.Marshal(item.Clone())
	if err != nil {
		return nil, fmt.Errorf("encode snack snapshot: %w", err)
	}
	requestersJSON, err := json.Marshal([]snack.Requester{requester})
	if err != nil {
		return nil, fmt.Errorf("encode requesters: %w", err)
	}

	q := `
INSERT INTO snax.snack_requests (
	team_id,
	location_uuid,
	original_request_string,
	snack,
	requesters
)
VALUES ($1, $2, $3, $4::jsonb, $5::jsonb)
RETURNING ` + snackRequestColumns

	return s.scanOne(ctx, location, q, requester.TeamID, location.ID, originalText, string(snackJSON), string(requestersJSON))
}

func (s *PGStore) AppendRequester(ctx context.Context, request *SnackRequest, requester snack.Requester) (*SnackRequest, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("request store is not initialized")
	}
	if request == nil {
		return nil, fmt.Errorf("request is nil")
	}

	requesterJSON, err := json.Marshal(requester)
	if err != nil {
		return nil, fmt.Errorf("encode requester: %w", err)
	}

	// Single-statement append keeps the idempotence check and the write in
	// one round trip; a requester already present affects zero rows.
	q := `
UPDATE snax.snack_requests
SET requesters = requesters || $2::jsonb,
	updated_at = now()
WHERE request_uuid = $1
  AND NOT EXISTS (
		SELECT 1
		FROM jsonb_array_elements(requesters) AS existing
		WHERE existing->>'user_id' = $3
		  AND existing->>'team_id' = $4
	)
`

	if _, err := s.pool.Exec(ctx, q, request.ID, string(requesterJSON), requester.UserID, requester.TeamID); err != nil {
		return nil, fmt.Errorf("append requester: %w", err)
	}

	reloadQ := `
SELECT ` + snackRequestColumns + `
FROM snax.snack_requests
WHERE request_uuid = $1
LIMIT 1
`
	updated, err := s.scanOne(ctx, request.Location, reloadQ, request.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("request %s disappeared during append", request.ID)
	}
	return updated, nil
}

// List returns every open request for one team and location, newest first.
func (s *PGStore) List(ctx context.Context, teamID string, location snack.Location) ([]SnackRequest, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("request store is not initialized")
	}

	q := `
SELECT ` + snackRequestColumns + `
FROM snax.snack_requests
WHERE team_id = $1
  AND location_uuid = $2
ORDER BY created_at DESC
`

	rows, err := s.pool.Query(ctx, q, teamID, location.ID)
	if err != nil {
		return nil, fmt.Errorf("query snack requests: %w", err)
	}
	defer rows.Close()

	items := make([]SnackRequest, 0, 16)
	for rows.Next() {
		item, err := scanSnackRequest(rows.Scan, location)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snack requests: %w", err)
	}
	return items, nil
}

func (s *PGStore) scanOne(ctx context.Context, location snack.Location, query string, args ...any) (*SnackRequest, error) {
	row := s.pool.QueryRow(ctx, query, args...)
	item, err := scanSnackRequest(row.Scan, location)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

func scanSnackRequest(scan func(dest ...any) error, location snack.Location) (*SnackRequest, error) {
	var (
		item           SnackRequest
		locationUUID   string
		snackJSON      []byte
		requestersJSON []byte
		createdAt      time.Time
		updatedAt      time.Time
	)
	if err := scan(
		&item.ID,
		&item.TeamID,
		&locationUUID,
		&item.OriginalRequestString,
		&snackJSON,
		&requestersJSON,
		&item.IsFavorite,
		&item.IsBlocked,
		&createdAt,
		&updatedAt,
	); err != nil {
		if db.IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scan snack request: %w", err)
	}

	if err := json.Unmarshal(snackJSON, &item.Snack); err != nil {
		return nil, fmt.Errorf("decode snack snapshot: %w", err)
	}
	if err := json.Unmarshal(requestersJSON, &item.Requesters); err != nil {
		return nil, fmt.Errorf("decode requesters: %w", err)
	}

	item.Location = snack.Location{ID: locationUUID, Name: location.Name}
	if locationUUID != location.ID {
		item.Location.Name = ""
	}
	item.CreatedAt = createdAt
	item.UpdatedAt = updatedAt
	return &item, nil
}
