package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"snax.fit/snax/internal/globaltime"
	"snax.fit/snax/internal/requests"
	"snax.fit/snax/internal/snack"
)

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service": "snax",
		"time":    globaltime.UTC(),
	})
}

func (s *Server) handleSearch(c echo.Context) error {
	queryText := strings.TrimSpace(c.QueryParam("q"))
	if queryText == "" {
		return failValidation(c, map[string]string{"q": "is required"})
	}

	snacks, err := s.searcher.Search(c.Request().Context(), queryText)
	if err != nil {
		s.logger.Error().Err(err).Str("query", queryText).Msg("search failed")
		return internalError(c, "Search failed")
	}

	return success(c, map[string]any{
		"query": queryText,
		"items": snacks,
	})
}

func (s *Server) handleListRequests(c echo.Context) error {
	teamID := strings.TrimSpace(c.QueryParam("team_id"))
	locationID := strings.TrimSpace(c.QueryParam("location_id"))
	fieldErrors := map[string]string{}
	if teamID == "" {
		fieldErrors["team_id"] = "is required"
	}
	if locationID == "" {
		fieldErrors["location_id"] = "is required"
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	items, err := s.lister.List(c.Request().Context(), teamID, snack.Location{ID: locationID})
	if err != nil {
		s.logger.Error().Err(err).Str("team_id", teamID).Msg("list requests failed")
		return internalError(c, "Failed to load requests")
	}

	return success(c, map[string]any{"items": items})
}

type createRequestBody struct {
	TeamID         string      `json:"team_id"`
	UserID         string      `json:"user_id"`
	UserName       string      `json:"user_name"`
	LocationID     string      `json:"location_id"`
	Snack          snack.Snack `json:"snack"`
	OriginalText   string      `json:"original_text"`
	MergeConfirmed bool        `json:"merge_confirmed"`
	ForceNew       bool        `json:"force_new"`
}

func (s *Server) handleCreateRequest(c echo.Context) error {
	var body createRequestBody
	if err := c.Bind(&body); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}

	fieldErrors := map[string]string{}
	if strings.TrimSpace(body.TeamID) == "" {
		fieldErrors["team_id"] = "is required"
	}
	if strings.TrimSpace(body.UserID) == "" {
		fieldErrors["user_id"] = "is required"
	}
	if strings.TrimSpace(body.LocationID) == "" {
		fieldErrors["location_id"] = "is required"
	}
	if strings.TrimSpace(body.Snack.Name) == "" {
		fieldErrors["snack.name"] = "is required"
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	name := body.UserName
	if name == "" {
		name = body.UserID
	}

	result, err := s.decider.Request(c.Request().Context(), requests.Intent{
		Requester:      snack.Requester{Name: name, UserID: body.UserID, TeamID: body.TeamID},
		Snack:          body.Snack,
		Location:       snack.Location{ID: body.LocationID},
		OriginalText:   body.OriginalText,
		MergeConfirmed: body.MergeConfirmed,
		ForceNew:       body.ForceNew,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("team_id", body.TeamID).Msg("request decision failed")
		return internalError(c, "Failed to process request")
	}

	status := http.StatusOK
	if result.Outcome == requests.OutcomeCreatedNew {
		status = http.StatusCreated
	}
	return successWithStatus(c, status, result)
}

func (s *Server) handleListLocations(c echo.Context) error {
	teamID := strings.TrimSpace(c.QueryParam("team_id"))
	if teamID == "" {
		return failValidation(c, map[string]string{"team_id": "is required"})
	}

	locations, err := s.locations.ListForTeam(c.Request().Context(), teamID)
	if err != nil {
		s.logger.Error().Err(err).Str("team_id", teamID).Msg("list locations failed")
		return internalError(c, "Failed to load locations")
	}
	return success(c, map[string]any{"items": locations})
}

type locationBody struct {
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
}

func (s *Server) handleCreateLocation(c echo.Context) error {
	var body locationBody
	if err := c.Bind(&body); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}
	if strings.TrimSpace(body.TeamID) == "" || strings.TrimSpace(body.Name) == "" {
		return failValidation(c, map[string]string{"team_id": "is required", "name": "is required"})
	}

	location, err := s.locations.AddLocationForTeam(c.Request().Context(), body.TeamID, body.Name)
	if err != nil {
		if errors.Is(err, requests.ErrDuplicateLocationName) {
			return fail(c, http.StatusConflict, "Location name already in use", nil)
		}
		s.logger.Error().Err(err).Str("team_id", body.TeamID).Msg("add location failed")
		return internalError(c, "Failed to create location")
	}
	return successWithStatus(c, http.StatusCreated, location)
}

func (s *Server) handleRenameLocation(c echo.Context) error {
	locationID := strings.TrimSpace(c.Param("location_id"))
	if locationID == "" {
		return failValidation(c, map[string]string{"location_id": "is required"})
	}

	var body locationBody
	if err := c.Bind(&body); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}
	if strings.TrimSpace(body.TeamID) == "" || strings.TrimSpace(body.Name) == "" {
		return failValidation(c, map[string]string{"team_id": "is required", "name": "is required"})
	}

	location, err := s.locations.RenameLocation(c.Request().Context(), body.TeamID, locationID, body.Name)
	if err != nil {
		if errors.Is(err, requests.ErrDuplicateLocationName) {
			return fail(c, http.StatusConflict, "Location name already in use", nil)
		}
		s.logger.Error().Err(err).Str("location_id", locationID).Msg("rename location failed")
		return internalError(c, "Failed to rename location")
	}
	return success(c, location)
}

func (s *Server) handlePreview(c echo.Context) error {
	productURL := strings.TrimSpace(c.QueryParam("url"))
	if productURL == "" {
		return failValidation(c, map[string]string{"url": "is required"})
	}
	if s.preview == nil {
		return failNotFound(c, "Preview is not enabled")
	}

	text, err := s.preview(c.Request().Context(), productURL, c.QueryParam("fallback"))
	if err != nil {
		s.logger.Warn().Err(err).Str("url", productURL).Msg("product preview failed")
		return fail(c, http.StatusBadGateway, "Failed to fetch product page", nil)
	}

	return success(c, map[string]any{
		"url":  productURL,
		"text": text,
	})
}
