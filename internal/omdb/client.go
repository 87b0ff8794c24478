package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.omdbapi.com"

var (
	// ErrNoAPIKey is returned when the client has no API key configured.
	ErrNoAPIKey = errors.New("omdb api key not configured")

	// ErrNotFound is returned when a title doesn't exist in OMDb.
	ErrNotFound = errors.New("movie not found")

	// ErrUnauthorized is returned when OMDb rejects the API key.
	ErrUnauthorized = errors.New("omdb rejected api key")
)

// Client is an OMDb API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new OMDb client.
// An empty apiKey is accepted; every call then fails with ErrNoAPIKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Search runs a free-text title search for one result page (10 items per page).
// A "no results" answer is not an error: it returns an empty response whose
// Error field carries the provider message.
func (c *Client) Search(ctx context.Context, term string, page int) (*SearchResponse, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("s", term)
	params.Set("page", strconv.Itoa(page))

	var resp SearchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}

	if resp.Response == "False" {
		if isKeyError(resp.Error) {
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, resp.Error)
		}
		return &SearchResponse{Response: "False", Error: resp.Error, TotalResults: "0"}, nil
	}
	return &resp, nil
}

// Movie fetches the full record for an IMDb id.
func (c *Client) Movie(ctx context.Context, imdbID string) (*Detail, error) {
	params := url.Values{}
	params.Set("i", imdbID)
	params.Set("plot", "full")

	var detail Detail
	if err := c.get(ctx, params, &detail); err != nil {
		return nil, err
	}

	if detail.Response == "False" {
		if isKeyError(detail.Error) {
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, detail.Error)
		}
		return nil, fmt.Errorf("%s: %w", imdbID, ErrNotFound)
	}
	return &detail, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OMDb API error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isKeyError(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "api key")
}
