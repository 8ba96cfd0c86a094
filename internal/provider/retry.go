package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	maxAttempts      = 3
	baseBackoff      = 500 * time.Millisecond
	maxResponseBytes = 4 << 20
)

// postJSON sends one JSON request with bounded retry for transient
// failures: network errors, 429, and 5xx. Other statuses return the body's
// error text immediately. Cancellation aborts between attempts and during
// the backoff sleep.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("provider: encode request: %w", err)
	}
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		data, retryable, err := postOnce(ctx, client, url, headers, body)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

func postOnce(ctx context.Context, client *http.Client, url string, headers map[string]string, body []byte) (data []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("provider: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("provider: %w", err)
	}
	defer resp.Body.Close()
	data, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, true, fmt.Errorf("provider: read response: %w", err)
	}
	if resp.StatusCode == http.StatusOK {
		return data, false, nil
	}
	retryable = resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
	return nil, retryable, fmt.Errorf("provider: http %d: %s", resp.StatusCode, truncate(string(data), 300))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
