package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// DefaultMaxRetries bounds the transport-level retry loop.
const DefaultMaxRetries = 6

// Client is the HTTP implementation of Gateway.
type Client struct {
	baseURL    string
	token      string
	maxRetries int
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithMaxRetries overrides the transport retry budget.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client authenticating with the given token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		maxRetries: DefaultMaxRetries,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs an authenticated GET, retrying rate limits and network errors
// with exponential backoff. Other 4xx responses are never retried.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	backoff := 500 * time.Millisecond
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			log.WithFields(log.Fields{"path": path, "attempt": attempt}).Debug("retrying airtable request")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("GET %s: %w", path, err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading response: %w", err)
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("GET %s: HTTP 429: %s", path, truncate(string(body), 200))
			continue
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("GET %s: %w", path, ErrNotFound)
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("GET %s: %w", path, ErrUnauthorized)
		default:
			return nil, fmt.Errorf("GET %s: HTTP %d: %s", path, resp.StatusCode, truncate(string(body), 200))
		}
	}
	return nil, fmt.Errorf("retries exhausted: %w", lastErr)
}

// listRecordsResponse is the provider's paginated record envelope.
type listRecordsResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

// listAll drains every page of a table view, returning all records.
func (c *Client) listAll(ctx context.Context, baseID, table string, fields []string, view string) ([]Record, error) {
	params := url.Values{}
	for _, f := range fields {
		params.Add("fields[]", f)
	}
	if view != "" {
		params.Set("view", view)
	}

	var all []Record
	for {
		body, err := c.get(ctx, fmt.Sprintf("/%s/%s", baseID, url.PathEscape(table)), params)
		if err != nil {
			return nil, err
		}

		var page listRecordsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		all = append(all, page.Records...)

		if page.Offset == "" {
			return all, nil
		}
		params.Set("offset", page.Offset)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
