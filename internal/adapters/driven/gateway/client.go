package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client is a thin HTTP client for the channel gateway API. The gateway
// fronts the upstream messaging platform and exposes file-bearing channel
// messages over plain REST.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
}

// NewClient creates a new gateway API client.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		maxRetries: 3,
	}
}

// messagePage is one page of the gateway's message listing.
type messagePage struct {
	Messages []gatewayMessage `json:"messages"`
}

// gatewayMessage is one file-bearing message as the gateway reports it.
type gatewayMessage struct {
	MessageID int64  `json:"message_id"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// doRequest performs an authenticated HTTP request with retry logic.
// Rate-limited (429) and server-error responses are retried with backoff.
func (c *Client) doRequest(ctx context.Context, token, method, path string) (*http.Response, error) {
	var resp *http.Response
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err = c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("do request: %w", err)
		}

		// Check for rate limiting
		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfter(resp)
			resp.Body.Close()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		// Success or non-retryable error
		if resp.StatusCode < 500 {
			break
		}

		// Server error - retry with backoff
		resp.Body.Close()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * time.Second):
		}
	}

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("gateway API error %d: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}

// retryAfter reads the Retry-After header, defaulting to one second and
// capping at five minutes.
func retryAfter(resp *http.Response) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
			wait := time.Duration(secs) * time.Second
			if wait > 5*time.Minute {
				wait = 5 * time.Minute
			}
			return wait
		}
	}
	return time.Second
}
