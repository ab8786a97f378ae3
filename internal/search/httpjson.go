package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultEngineTimeout = 15 * time.Second
	engineBodyByteLimit  = 4 * 1024 * 1024

	// Catalog APIs reject unknown clients; present a browser user agent.
	engineUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

func fetchJSON(ctx context.Context, client *http.Client, method, endpoint string, query url.Values, body any, out any) error {
	fetchCtx, cancel := context.WithTimeout(ctx, defaultEngineTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	requestURL := endpoint
	if len(query) > 0 {
		requestURL = endpoint + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(fetchCtx, method, requestURL, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", engineUserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if client == nil {
		client = &http.Client{}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fetch %s: status %d", endpoint, resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, engineBodyByteLimit))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
