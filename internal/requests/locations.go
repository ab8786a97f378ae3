package requests

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"snax.fit/snax/internal/snack"
)

// ErrNoLocation is returned when a user has no default location set and one
// is required to act on a request.
var ErrNoLocation = fmt.Errorf("no location selected")

// ErrDuplicateLocationName is returned when a team already has a location
// with the requested name.
var ErrDuplicateLocationName = fmt.Errorf("location name already in use")

// locationStore is the persistence surface the manager needs.
type locationStore interface {
	InsertLocation(ctx context.Context, teamID, name string) (snack.Location, error)
	UpdateLocationName(ctx context.Context, teamID, locationID, name string) (snack.Location, error)
	ListLocations(ctx context.Context, teamID string) ([]snack.Location, error)
	FindLocationByName(ctx context.Context, teamID, name string) (*snack.Location, error)
	GetLocation(ctx context.Context, teamID, locationID string) (*snack.Location, error)
	UpsertUserLocation(ctx context.Context, teamID, userID, locationID string) error
	GetUserLocation(ctx context.Context, teamID, userID string) (*snack.Location, error)
}

// LocationManager owns the per-team set of delivery locations and each
// user's default location. Location names are unique within a team,
// case-insensitively; ids are stable across renames.
type LocationManager struct {
	store  locationStore
	logger zerolog.Logger
}

func NewLocationManager(store locationStore, logger zerolog.Logger) *LocationManager {
	return &LocationManager{store: store, logger: logger}
}

// AddLocationForTeam creates a new named location. The new location does not
// become anyone's default.
func (m *LocationManager) AddLocationForTeam(ctx context.Context, teamID, name string) (snack.Location, error) {
	if m == nil || m.store == nil {
		return snack.Location{}, fmt.Errorf("location manager is not initialized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return snack.Location{}, fmt.Errorf("location name is required")
	}

	existing, err := m.store.FindLocationByName(ctx, teamID, name)
	if err != nil {
		return snack.Location{}, fmt.Errorf("check location name: %w", err)
	}
	if existing != nil {
		return snack.Location{}, fmt.Errorf("location %q: %w", name, ErrDuplicateLocationName)
	}

	location, err := m.store.InsertLocation(ctx, teamID, name)
	if err != nil {
		return snack.Location{}, fmt.Errorf("create location: %w", err)
	}
	m.logger.Info().Str("team_id", teamID).Str("location_id", location.ID).Str("name", location.Name).Msg("location created")
	return location, nil
}

// RenameLocation changes a location's display name in place. Requests keep
// pointing at the same id, so history follows the rename.
func (m *LocationManager) RenameLocation(ctx context.Context, teamID, locationID, name string) (snack.Location, error) {
	if m == nil || m.store == nil {
		return snack.Location{}, fmt.Errorf("location manager is not initialized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return snack.Location{}, fmt.Errorf("location name is required")
	}

	existing, err := m.store.FindLocationByName(ctx, teamID, name)
	if err != nil {
		return snack.Location{}, fmt.Errorf("check location name: %w", err)
	}
	if existing != nil && existing.ID != locationID {
		return snack.Location{}, fmt.Errorf("location %q: %w", name, ErrDuplicateLocationName)
	}

	location, err := m.store.UpdateLocationName(ctx, teamID, locationID, name)
	if err != nil {
		return snack.Location{}, fmt.Errorf("rename location: %w", err)
	}
	m.logger.Info().Str("team_id", teamID).Str("location_id", location.ID).Str("name", location.Name).Msg("location renamed")
	return location, nil
}

// ListForTeam returns the team's locations in creation order.
func (m *LocationManager) ListForTeam(ctx context.Context, teamID string) ([]snack.Location, error) {
	if m == nil || m.store == nil {
		return nil, fmt.Errorf("location manager is not initialized")
	}
	locations, err := m.store.ListLocations(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}

// SetUserLocation records the user's default location, replacing any
// previous choice. The location must exist and belong to the team.
func (m *LocationManager) SetUserLocation(ctx context.Context, teamID, userID, locationID string) (snack.Location, error) {
	if m == nil || m.store == nil {
		return snack.Location{}, fmt.Errorf("location manager is not initialized")
	}

	location, err := m.store.GetLocation(ctx, teamID, locationID)
	if err != nil {
		return snack.Location{}, fmt.Errorf("resolve location: %w", err)
	}
	if location == nil {
		return snack.Location{}, fmt.Errorf("location %q not found for team %s", locationID, teamID)
	}

	if err := m.store.UpsertUserLocation(ctx, teamID, userID, locationID); err != nil {
		return snack.Location{}, fmt.Errorf("set user location: %w", err)
	}
	m.logger.Debug().Str("team_id", teamID).Str("user_id", userID).Str("location_id", locationID).Msg("user location set")
	return *location, nil
}

// GetUserLocation returns the user's default location, or ErrNoLocation when
// none was ever set.
func (m *LocationManager) GetUserLocation(ctx context.Context, teamID, userID string) (snack.Location, error) {
	if m == nil || m.store == nil {
		return snack.Location{}, fmt.Errorf("location manager is not initialized")
	}
	location, err := m.store.GetUserLocation(ctx, teamID, userID)
	if err != nil {
		return snack.Location{}, fmt.Errorf("get user location: %w", err)
	}
	if location == nil {
		return snack.Location{}, ErrNoLocation
	}
	return *location, nil
}
