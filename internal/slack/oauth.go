package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultOAuthEndpoint = "https://slack.com/api/oauth.v2.access"

// TeamAuth is the result of a completed workspace install.
type TeamAuth struct {
	TeamID      string
	TeamName    string
	UserID      string
	AccessToken string
}

// TokenExchanger turns a temporary OAuth code into workspace credentials.
type TokenExchanger interface {
	ExchangeCode(ctx context.Context, code string) (TeamAuth, error)
}

// OAuthClient exchanges install codes against the platform token endpoint.
type OAuthClient struct {
	clientID     string
	clientSecret string
	endpoint     string
	httpClient   *http.Client
}

func NewOAuthClient(clientID, clientSecret string, httpClient *http.Client) *OAuthClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &OAuthClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		endpoint:     defaultOAuthEndpoint,
		httpClient:   httpClient,
	}
}

type oauthAccessResponse struct {
	OK          bool   `json:"ok"`
	Error       string `json:"error"`
	AccessToken string `json:"access_token"`
	Team        struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	AuthedUser struct {
		ID string `json:"id"`
	} `json:"authed_user"`
}

func (c *OAuthClient) ExchangeCode(ctx context.Context, code string) (TeamAuth, error) {
	if c == nil || c.httpClient == nil {
		return TeamAuth{}, fmt.Errorf("oauth client is not initialized")
	}
	if strings.TrimSpace(code) == "" {
		return TeamAuth{}, fmt.Errorf("oauth code is required")
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return TeamAuth{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TeamAuth{}, fmt.Errorf("exchange oauth code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return TeamAuth{}, fmt.Errorf("token endpoint status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return TeamAuth{}, fmt.Errorf("read token response: %w", err)
	}

	var decoded oauthAccessResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return TeamAuth{}, fmt.Errorf("decode token response: %w", err)
	}
	if !decoded.OK {
		return TeamAuth{}, fmt.Errorf("token exchange rejected: %s", decoded.Error)
	}
	if decoded.AccessToken == "" || decoded.Team.ID == "" {
		return TeamAuth{}, fmt.Errorf("token response missing team credentials")
	}

	return TeamAuth{
		TeamID:      decoded.Team.ID,
		TeamName:    decoded.Team.Name,
		UserID:      decoded.AuthedUser.ID,
		AccessToken: decoded.AccessToken,
	}, nil
}
