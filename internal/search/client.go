// Package search proxies queries to the Google Custom Search JSON API.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// Client calls the external search provider. The provider is an opaque
// collaborator: its response body is passed through to the caller verbatim.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	engineID   string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the provider endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a search client.
func NewClient(apiKey, engineID string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		engineID:   engineID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs a query and returns the provider's raw JSON response.
func (c *Client) Search(ctx context.Context, query string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search provider returned status %d", resp.StatusCode)
	}

	return json.RawMessage(body), nil
}
