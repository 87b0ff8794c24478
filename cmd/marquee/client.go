package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client wraps HTTP calls to the marquee server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new marquee API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // searches fan out to the provider
		},
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination"`
	Message    string          `json:"message"`
}

func (c *Client) do(method, path string, body any, result any) (*Pagination, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal error: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return env.Pagination, nil
}

func (c *Client) get(path string, result any) (*Pagination, error) {
	return c.do(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	_, err := c.do(http.MethodPost, path, body, result)
	return err
}

func (c *Client) delete(path string, result any) error {
	_, err := c.do(http.MethodDelete, path, nil, result)
	return err
}

// API response types (mirror server types)

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type Movie struct {
	ID        int64      `json:"id"`
	IMDBID    string     `json:"imdb_id"`
	TMDBID    *int64     `json:"tmdb_id,omitempty"`
	Title     string     `json:"title"`
	Year      *int       `json:"year"`
	Released  *time.Time `json:"released,omitempty"`
	Runtime   *int       `json:"runtime"`
	Genres    []string   `json:"genres"`
	Directors []string   `json:"directors"`
	Writers   []string   `json:"writers"`
	Actors    []string   `json:"actors"`
	Plot      string     `json:"plot"`
	Languages []string   `json:"languages"`
	Countries []string   `json:"countries"`
	Rated     string     `json:"rated,omitempty"`
	Type      string     `json:"type"`
	Ratings   struct {
		IMDB struct {
			Score *float64 `json:"score"`
			Votes *int     `json:"votes"`
		} `json:"imdb"`
		RottenTomatoes *int `json:"rotten_tomatoes"`
		Metacritic     *int `json:"metacritic"`
	} `json:"ratings"`
	Poster      string    `json:"poster,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Provider    string    `json:"provider"`
	CacheExpiry time.Time `json:"cache_expiry"`
	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
}

type Failure struct {
	IMDBID string `json:"imdb_id"`
	Error  string `json:"error"`
}

type MoviesResponse struct {
	Movies       []Movie     `json:"movies"`
	Source       string      `json:"source"`
	Search       string      `json:"search,omitempty"`
	TotalResults int         `json:"total_results"`
	Failed       []Failure   `json:"failed,omitempty"`
	Pagination   *Pagination `json:"pagination,omitempty"`
}

type MovieResponse struct {
	Movie  Movie  `json:"movie"`
	Source string `json:"source"`
}

type Counts struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
}

type StatsResponse struct {
	Counts
	TTLSeconds int64 `json:"ttl_seconds"`
	TopGenres  []struct {
		Genre string `json:"genre"`
		Count int    `json:"count"`
	} `json:"top_genres"`
	ByYear []struct {
		Year  int `json:"year"`
		Count int `json:"count"`
	} `json:"by_year"`
	AverageRating *float64  `json:"average_rating"`
	RatedCount    int       `json:"rated_count"`
	GeneratedAt   time.Time `json:"generated_at"`
}

type DeletedResponse struct {
	Deleted int64 `json:"deleted"`
	DryRun  bool  `json:"dry_run,omitempty"`
}

type CleanupResponse struct {
	Before     Counts    `json:"before"`
	Deleted    int64     `json:"deleted"`
	After      Counts    `json:"after"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

type PurgeRequest struct {
	OlderThan string   `json:"older_than,omitempty"`
	Rating    string   `json:"rating,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	Year      string   `json:"year,omitempty"`
	DryRun    bool     `json:"dry_run,omitempty"`
}

// ListOptions are the filters of GET /movies.
type ListOptions struct {
	Search  string
	Genres  []string
	Year    string
	Rating  string
	Sort    string
	Order   string
	Page    int
	Limit   int
	NoCache bool
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	if len(o.Genres) > 0 {
		v.Set("genre", strings.Join(o.Genres, ","))
	}
	if o.Year != "" {
		v.Set("year", o.Year)
	}
	if o.Rating != "" {
		v.Set("rating", o.Rating)
	}
	if o.Sort != "" {
		v.Set("sort", o.Sort)
	}
	if o.Order != "" {
		v.Set("order", o.Order)
	}
	if o.Page > 0 {
		v.Set("page", fmt.Sprint(o.Page))
	}
	if o.Limit > 0 {
		v.Set("limit", fmt.Sprint(o.Limit))
	}
	if o.NoCache {
		v.Set("cache", "false")
	}
	return v
}

// Movies searches or lists movies.
func (c *Client) Movies(opts ListOptions) (*MoviesResponse, error) {
	path := "/movies"
	if q := opts.values().Encode(); q != "" {
		path += "?" + q
	}
	var resp MoviesResponse
	pg, err := c.get(path, &resp)
	if err != nil {
		return nil, err
	}
	resp.Pagination = pg
	return &resp, nil
}

// Movie fetches one movie by IMDb id.
func (c *Client) Movie(imdbID string) (*MovieResponse, error) {
	var resp MovieResponse
	if _, err := c.get("/movies/"+url.PathEscape(imdbID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh refetches one movie from the provider.
func (c *Client) Refresh(imdbID string) (*MovieResponse, error) {
	var resp MovieResponse
	if err := c.post("/movies/"+url.PathEscape(imdbID)+"/refresh", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete removes one movie from the cache.
func (c *Client) Delete(imdbID string) error {
	return c.delete("/movies/"+url.PathEscape(imdbID), nil)
}

// PurgeExpired deletes every expired record.
func (c *Client) PurgeExpired() (*DeletedResponse, error) {
	var resp DeletedResponse
	if err := c.delete("/movies/cache/expired", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cleanup runs a cleanup pass and returns its report.
func (c *Client) Cleanup() (*CleanupResponse, error) {
	var resp CleanupResponse
	if err := c.post("/movies/cache/cleanup", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Purge deletes records matching criteria.
func (c *Client) Purge(req PurgeRequest) (*DeletedResponse, error) {
	var resp DeletedResponse
	if err := c.post("/movies/cache/purge", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats fetches the cache report.
func (c *Client) Stats() (*StatsResponse, error) {
	var resp StatsResponse
	if _, err := c.get("/stats/cache", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health checks that the server is up.
func (c *Client) Health() error {
	_, err := c.get("/health", nil)
	return err
}
