// Package httpapi serves the chat webhooks, the workspace install
// callback, and the JSON API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"snax.fit/snax/internal/db"
	"snax.fit/snax/internal/requests"
	"snax.fit/snax/internal/slack"
	"snax.fit/snax/internal/snack"
)

// SnackSearcher is the aggregated product search.
type SnackSearcher interface {
	Search(ctx context.Context, queryText string) ([]snack.Snack, error)
}

// RequestDecider runs the request-or-vote decision.
type RequestDecider interface {
	Request(ctx context.Context, intent requests.Intent) (requests.Result, error)
}

// RequestLister reads the open requests for one team location.
type RequestLister interface {
	List(ctx context.Context, teamID string, location snack.Location) ([]requests.SnackRequest, error)
}

// LocationService manages team locations and per-user defaults.
type LocationService interface {
	AddLocationForTeam(ctx context.Context, teamID, name string) (snack.Location, error)
	RenameLocation(ctx context.Context, teamID, locationID, name string) (snack.Location, error)
	ListForTeam(ctx context.Context, teamID string) ([]snack.Location, error)
	SetUserLocation(ctx context.Context, teamID, userID, locationID string) (snack.Location, error)
	GetUserLocation(ctx context.Context, teamID, userID string) (snack.Location, error)
}

// TeamSaver persists workspace credentials after a completed install.
type TeamSaver interface {
	UpsertTeam(ctx context.Context, team db.TeamRecord) (bool, error)
}

// PreviewFetcher extracts readable text from a product page.
type PreviewFetcher func(ctx context.Context, productURL, fallback string) (string, error)

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	SigningSecret   string
}

type Server struct {
	searcher  SnackSearcher
	decider   RequestDecider
	lister    RequestLister
	locations LocationService
	teams     TeamSaver
	oauth     slack.TokenExchanger
	preview   PreviewFetcher
	logger    zerolog.Logger
	opts      Options
}

func NewServer(
	searcher SnackSearcher,
	decider RequestDecider,
	lister RequestLister,
	locations LocationService,
	teams TeamSaver,
	oauth slack.TokenExchanger,
	preview PreviewFetcher,
	logger zerolog.Logger,
	opts Options,
) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		searcher:  searcher,
		decider:   decider,
		lister:    lister,
		locations: locations,
		teams:     teams,
		oauth:     oauth,
		preview:   preview,
		logger:    logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			SigningSecret:   opts.SigningSecret,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.searcher == nil || s.decider == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.buildEcho()

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("snax server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("snax server stopped")
	return nil
}

func (s *Server) buildEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	webhooks := e.Group("/slack", slack.VerifyMiddleware(s.opts.SigningSecret))
	webhooks.POST("/commands", s.handleSlashCommand)
	webhooks.POST("/interactions", s.handleInteraction)

	e.GET("/slackOauthCallback", s.handleOAuthCallback)

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/search", s.handleSearch)
	api.GET("/requests", s.handleListRequests)
	api.POST("/requests", s.handleCreateRequest)
	api.GET("/locations", s.handleListLocations)
	api.POST("/locations", s.handleCreateLocation)
	api.PUT("/locations/:location_id", s.handleRenameLocation)
	api.GET("/preview", s.handlePreview)

	return e
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	isAPI := strings.HasPrefix(c.Request().URL.Path, "/api/")
	if isAPI {
		if status >= 500 {
			_ = internalError(c, "Internal server error")
			return
		}
		_ = fail(c, status, message, nil)
		return
	}

	_ = c.String(status, message)
}
