package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"snax.fit/snax/internal/requests"
	"snax.fit/snax/internal/slack"
	"snax.fit/snax/internal/snack"
)

const helpText = "Search and request snacks:\n" +
	"• `/snax <query>` to search\n" +
	"• `/snax list` to see open requests for your location\n" +
	"• `/snax locations` to pick your location\n" +
	"• `/snax locations add <name>` to add a location"

// handleSlashCommand routes one slash command. The reply is the HTTP
// response body; the platform renders it in place.
func (s *Server) handleSlashCommand(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed form body")
	}
	cmd, err := slack.ParseSlashCommand(form)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	words := strings.Fields(cmd.Text)

	// Dedicated commands from earlier installs route directly; the
	// consolidated /snax command routes on its first word.
	switch strings.ToLower(cmd.Command) {
	case "/snacksearch", "/snaxrequest":
		if len(words) == 0 {
			return c.JSON(http.StatusOK, slack.Message{ResponseType: slack.ResponseEphemeral, Text: helpText})
		}
		return c.JSON(http.StatusOK, s.searchReply(ctx, cmd.Text))
	case "/addsnaxlocation":
		if len(words) == 0 {
			return c.JSON(http.StatusOK, slack.Message{ResponseType: slack.ResponseEphemeral, Text: "Usage: /addsnaxlocation <name>"})
		}
		return c.JSON(http.StatusOK, s.addLocationReply(ctx, cmd.TeamID, cmd.Text))
	case "/updatesnaxlocation":
		return c.JSON(http.StatusOK, s.listLocationsReply(ctx, cmd.TeamID))
	}

	switch {
	case len(words) == 0 || words[0] == "help":
		return c.JSON(http.StatusOK, slack.Message{ResponseType: slack.ResponseEphemeral, Text: helpText})

	case words[0] == "list":
		return c.JSON(http.StatusOK, s.listRequestsReply(ctx, cmd.TeamID, cmd.UserID))

	case words[0] == "locations" && len(words) >= 3 && words[1] == "add":
		name := strings.Join(words[2:], " ")
		return c.JSON(http.StatusOK, s.addLocationReply(ctx, cmd.TeamID, name))

	case words[0] == "locations":
		return c.JSON(http.StatusOK, s.listLocationsReply(ctx, cmd.TeamID))

	default:
		return c.JSON(http.StatusOK, s.searchReply(ctx, cmd.Text))
	}
}

// handleInteraction routes one button press from a previous reply.
func (s *Server) handleInteraction(c echo.Context) error {
	payload := c.FormValue("payload")
	if strings.TrimSpace(payload) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing interaction payload")
	}

	interaction, err := slack.ParseInteraction([]byte(payload))
	if err != nil {
		s.logger.Warn().Err(err).Msg("rejected interaction payload")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid interaction payload")
	}

	action := interaction.Actions[0]
	value, err := slack.DecodeActionValue(action.Value)
	if err != nil {
		s.logger.Warn().Err(err).Str("action_id", action.ActionID).Msg("rejected action value")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid action value")
	}

	ctx := c.Request().Context()
	requester := interaction.Requester()

	switch action.ActionID {
	case slack.ActionSetLocation:
		location, err := s.locations.SetUserLocation(ctx, requester.TeamID, requester.UserID, value.LocationID)
		if err != nil {
			s.logger.Error().Err(err).Str("team_id", requester.TeamID).Msg("set user location failed")
			return c.JSON(http.StatusOK, slack.ErrorMessage())
		}
		return c.JSON(http.StatusOK, slack.Message{
			ResponseType: slack.ResponseEphemeral,
			Text:         "Location set to *" + location.Name + "*.",
		})

	case slack.ActionRequestSnack, slack.ActionConfirmMerge, slack.ActionForceNew:
		if value.Snack == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "action value missing snack")
		}
		return c.JSON(http.StatusOK, s.decideReply(ctx, requester, *value.Snack, value.OriginalText,
			action.ActionID == slack.ActionConfirmMerge,
			action.ActionID == slack.ActionForceNew,
		))

	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown action")
	}
}

func (s *Server) searchReply(ctx context.Context, queryText string) slack.Message {
	snacks, err := s.searcher.Search(ctx, queryText)
	if err != nil {
		s.logger.Error().Err(err).Str("query", queryText).Msg("search failed")
		return slack.ErrorMessage()
	}
	message, err := slack.SearchResultsMessage(queryText, snacks)
	if err != nil {
		s.logger.Error().Err(err).Msg("build search results failed")
		return slack.ErrorMessage()
	}
	return message
}

func (s *Server) decideReply(ctx context.Context, requester snack.Requester, item snack.Snack, originalText string, mergeConfirmed, forceNew bool) slack.Message {
	location, err := s.locations.GetUserLocation(ctx, requester.TeamID, requester.UserID)
	if err != nil {
		if errors.Is(err, requests.ErrNoLocation) {
			return slack.NoLocationMessage()
		}
		s.logger.Error().Err(err).Str("team_id", requester.TeamID).Msg("resolve user location failed")
		return slack.ErrorMessage()
	}

	result, err := s.decider.Request(ctx, requests.Intent{
		Requester:      requester,
		Snack:          item,
		Location:       location,
		OriginalText:   originalText,
		MergeConfirmed: mergeConfirmed,
		ForceNew:       forceNew,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("team_id", requester.TeamID).Msg("request decision failed")
		return slack.ErrorMessage()
	}

	if result.Outcome == requests.OutcomeSimilarPendingConfirmation {
		message, err := slack.SimilarPromptMessage(result.Request, item, originalText)
		if err != nil {
			s.logger.Error().Err(err).Msg("build similar prompt failed")
			return slack.ErrorMessage()
		}
		return message
	}
	return slack.OutcomeMessage(result)
}

func (s *Server) listRequestsReply(ctx context.Context, teamID, userID string) slack.Message {
	location, err := s.locations.GetUserLocation(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, requests.ErrNoLocation) {
			return slack.NoLocationMessage()
		}
		s.logger.Error().Err(err).Str("team_id", teamID).Msg("resolve user location failed")
		return slack.ErrorMessage()
	}

	items, err := s.lister.List(ctx, teamID, location)
	if err != nil {
		s.logger.Error().Err(err).Str("team_id", teamID).Msg("list requests failed")
		return slack.ErrorMessage()
	}
	return slack.RequestListMessage(location, items)
}

func (s *Server) listLocationsReply(ctx context.Context, teamID string) slack.Message {
	locations, err := s.locations.ListForTeam(ctx, teamID)
	if err != nil {
		s.logger.Error().Err(err).Str("team_id", teamID).Msg("list locations failed")
		return slack.ErrorMessage()
	}
	message, err := slack.LocationListMessage(locations)
	if err != nil {
		s.logger.Error().Err(err).Msg("build location list failed")
		return slack.ErrorMessage()
	}
	return message
}

func (s *Server) addLocationReply(ctx context.Context, teamID, name string) slack.Message {
	location, err := s.locations.AddLocationForTeam(ctx, teamID, name)
	if err != nil {
		if errors.Is(err, requests.ErrDuplicateLocationName) {
			return slack.Message{
				ResponseType: slack.ResponseEphemeral,
				Text:         "A location named *" + name + "* already exists.",
			}
		}
		s.logger.Error().Err(err).Str("team_id", teamID).Msg("add location failed")
		return slack.ErrorMessage()
	}
	return slack.Message{
		ResponseType: slack.ResponseEphemeral,
		Text:         "Added location *" + location.Name + "*.",
	}
}
