package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"snax.fit/snax/internal/db"
)

// handleOAuthCallback completes the workspace install: the temporary code is
// exchanged for a token, and the team credentials are stored.
func (s *Server) handleOAuthCallback(c echo.Context) error {
	if errParam := strings.TrimSpace(c.QueryParam("error")); errParam != "" {
		return c.String(http.StatusOK, "Install cancelled. You can close this window.")
	}

	code := strings.TrimSpace(c.QueryParam("code"))
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing oauth code")
	}
	if s.oauth == nil || s.teams == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "install is not configured")
	}

	ctx := c.Request().Context()
	auth, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Msg("oauth code exchange failed")
		return echo.NewHTTPError(http.StatusBadGateway, "token exchange failed")
	}

	isNew, err := s.teams.UpsertTeam(ctx, db.TeamRecord{
		TeamID:      auth.TeamID,
		TeamName:    auth.TeamName,
		UserID:      auth.UserID,
		AccessToken: auth.AccessToken,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("team_id", auth.TeamID).Msg("store team failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store workspace")
	}

	s.logger.Info().Str("team_id", auth.TeamID).Bool("new_team", isNew).Msg("workspace installed")
	return c.String(http.StatusOK, "Snax installed for "+auth.TeamName+". Head back to your workspace and try /snax!")
}
