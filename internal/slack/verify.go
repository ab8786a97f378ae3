// Package slack implements the chat surface: request signing verification,
// inbound payload parsing, message building, and workspace OAuth.
package slack

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"snax.fit/snax/internal/globaltime"
)

const (
	signatureHeader = "X-Slack-Signature"
	timestampHeader = "X-Slack-Request-Timestamp"

	signatureVersion = "v0"

	// Requests older than this are rejected to block replay of captured
	// signatures.
	maxTimestampSkew = 5 * time.Minute

	maxWebhookBodyBytes = 1 << 20
)

// VerifySignature checks one request signature against the signing secret.
// The signed base string is "v0:<timestamp>:<raw body>".
func VerifySignature(signingSecret, timestamp, signature string, body []byte) error {
	if strings.TrimSpace(signingSecret) == "" {
		return fmt.Errorf("signing secret is not configured")
	}
	if strings.TrimSpace(signature) == "" || strings.TrimSpace(timestamp) == "" {
		return fmt.Errorf("missing signature headers")
	}

	unix, err := strconv.ParseInt(strings.TrimSpace(timestamp), 10, 64)
	if err != nil {
		return fmt.Errorf("malformed request timestamp")
	}
	sent := time.Unix(unix, 0)
	now := globaltime.UTC()
	if sent.Before(now.Add(-maxTimestampSkew)) || sent.After(now.Add(maxTimestampSkew)) {
		return fmt.Errorf("request timestamp outside allowed window")
	}

	mac := hmac.New(sha256.New, []byte(signingSecret))
	fmt.Fprintf(mac, "%s:%s:", signatureVersion, strings.TrimSpace(timestamp))
	mac.Write(body)
	expected := signatureVersion + "=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature))) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

// VerifyMiddleware returns echo middleware that rejects webhook calls whose
// signature does not validate. The body is re-buffered so downstream
// handlers can read it again.
func VerifyMiddleware(signingSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			body, err := io.ReadAll(io.LimitReader(req.Body, maxWebhookBodyBytes))
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "unreadable request body")
			}
			_ = req.Body.Close()
			req.Body = io.NopCloser(bytes.NewReader(body))

			if err := VerifySignature(
				signingSecret,
				req.Header.Get(timestampHeader),
				req.Header.Get(signatureHeader),
				body,
			); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid request signature")
			}
			return next(c)
		}
	}
}
