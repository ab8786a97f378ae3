package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func signBody(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureAcceptsValidRequest(t *testing.T) {
	t.Parallel()

	secret := "test-secret"
	body := []byte("command=%2Fsnax&text=popcorn")
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	if err := VerifySignature(secret, timestamp, signBody(secret, timestamp, body), body); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	t.Parallel()

	secret := "test-secret"
	body := []byte("command=%2Fsnax&text=popcorn")
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := signBody(secret, timestamp, body)

	if err := VerifySignature(secret, timestamp, signature, []byte("command=%2Fsnax&text=chips")); err == nil {
		t.Fatal("expected error for modified body")
	}
	if err := VerifySignature("other-secret", timestamp, signature, body); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	t.Parallel()

	secret := "test-secret"
	body := []byte("payload={}")
	stale := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)

	if err := VerifySignature(secret, stale, signBody(secret, stale, body), body); err == nil {
		t.Fatal("expected error for stale timestamp")
	}
}

func TestVerifyMiddlewarePreservesBody(t *testing.T) {
	t.Parallel()

	secret := "test-secret"
	body := "command=%2Fsnax&text=popcorn"
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set(timestampHeader, timestamp)
	req.Header.Set(signatureHeader, signBody(secret, timestamp, []byte(body)))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := VerifyMiddleware(secret)(func(c echo.Context) error {
		text := c.FormValue("text")
		if text != "popcorn" {
			t.Fatalf("expected form body to survive verification, got text=%q", text)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifyMiddlewareRejectsUnsignedRequest(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader("command=%2Fsnax"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := VerifyMiddleware("test-secret")(func(c echo.Context) error {
		t.Fatal("handler must not run for unsigned request")
		return nil
	})

	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
