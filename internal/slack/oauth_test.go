package slack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOAuthClientExchangeCode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostFormValue("code") != "tmp-code" || r.PostFormValue("client_id") != "client-1" {
			t.Errorf("unexpected form: %v", r.PostForm)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"ok": true,
			"access_token": "xoxb-token",
			"team": {"id": "T1", "name": "Snacktown"},
			"authed_user": {"id": "U1"}
		}`))
	}))
	defer server.Close()

	client := NewOAuthClient("client-1", "secret-1", server.Client())
	client.endpoint = server.URL

	auth, err := client.ExchangeCode(context.Background(), "tmp-code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth.TeamID != "T1" || auth.TeamName != "Snacktown" || auth.AccessToken != "xoxb-token" || auth.UserID != "U1" {
		t.Fatalf("unexpected auth: %+v", auth)
	}
}

func TestOAuthClientRejectsPlatformError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": false, "error": "invalid_code"}`))
	}))
	defer server.Close()

	client := NewOAuthClient("client-1", "secret-1", server.Client())
	client.endpoint = server.URL

	if _, err := client.ExchangeCode(context.Background(), "bad-code"); err == nil {
		t.Fatal("expected error for rejected exchange")
	}
}

func TestOAuthClientRequiresCode(t *testing.T) {
	t.Parallel()

	client := NewOAuthClient("client-1", "secret-1", nil)
	if _, err := client.ExchangeCode(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank code")
	}
}
