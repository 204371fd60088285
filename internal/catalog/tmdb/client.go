package tmdb

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

// Searcher defines the catalog operations used by the resolver.
type Searcher interface {
	SearchMovieWithOptions(ctx context.Context, query string, opts SearchOptions) ([]Candidate, error)
	SearchTVWithOptions(ctx context.Context, query string, opts SearchOptions) ([]Candidate, error)
	MovieDetails(ctx context.Context, movieID int64) (*MovieDetail, error)
	TVDetails(ctx context.Context, showID int64) (*TVDetail, error)
	FindByExternalID(ctx context.Context, externalID, source string) (*FindResult, error)
	MovieGenres(ctx context.Context) (map[int64]string, error)
	TVGenres(ctx context.Context) (map[int64]string, error)
}

// maxCandidates caps how many search results each lookup returns, in
// catalog-native ranking order.
const maxCandidates = 5

// Client provides access to the primary catalog API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a catalog client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchOptions contains optional search filters.
type SearchOptions struct {
	Year int `json:"year,omitempty"`
}

// CacheKey returns a stable string representation for caching.
func (o SearchOptions) CacheKey() string {
	return "y=" + strconv.Itoa(o.Year)
}

// SearchMovieWithOptions performs a movie search with optional filters.
func (c *Client) SearchMovieWithOptions(ctx context.Context, query string, opts SearchOptions) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	if opts.Year > 0 {
		params.Set("primary_release_year", strconv.Itoa(opts.Year))
	}
	var payload searchResponse
	if err := c.get(ctx, "/search/movie", params, &payload); err != nil {
		return nil, err
	}
	return capCandidates(payload.Results), nil
}

// SearchTVWithOptions performs a TV search with optional filters.
func (c *Client) SearchTVWithOptions(ctx context.Context, query string, opts SearchOptions) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	if opts.Year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(opts.Year))
	}
	var payload searchResponse
	if err := c.get(ctx, "/search/tv", params, &payload); err != nil {
		return nil, err
	}
	return capCandidates(payload.Results), nil
}

// MovieDetails fetches movie details by catalog ID with credits appended.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*MovieDetail, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	params := url.Values{}
	params.Set("append_to_response", "credits")
	var payload MovieDetail
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", movieID), params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// TVDetails fetches TV show details by catalog ID with external ids appended.
func (c *Client) TVDetails(ctx context.Context, showID int64) (*TVDetail, error) {
	if showID <= 0 {
		return nil, errors.New("show id must be positive")
	}
	params := url.Values{}
	params.Set("append_to_response", "external_ids")
	var payload TVDetail
	if err := c.get(ctx, fmt.Sprintf("/tv/%d", showID), params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FindByExternalID resolves records by an id from another database, for
// example source "imdb_id" with id "tt0133093".
func (c *Client) FindByExternalID(ctx context.Context, externalID, source string) (*FindResult, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, errors.New("external id must not be empty")
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, errors.New("external source must not be empty")
	}
	params := url.Values{}
	params.Set("external_source", source)
	var payload FindResult
	if err := c.get(ctx, "/find/"+url.PathEscape(externalID), params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

type genreListResponse struct {
	Genres []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// MovieGenres fetches the catalog's movie genre list.
func (c *Client) MovieGenres(ctx context.Context) (map[int64]string, error) {
	return c.genreList(ctx, "/genre/movie/list")
}

// TVGenres fetches the catalog's TV genre list.
func (c *Client) TVGenres(ctx context.Context) (map[int64]string, error) {
	return c.genreList(ctx, "/genre/tv/list")
}

func (c *Client) genreList(ctx context.Context, path string) (map[int64]string, error) {
	var payload genreListResponse
	if err := c.get(ctx, path, url.Values{}, &payload); err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(payload.Genres))
	for _, genre := range payload.Genres {
		names[genre.ID] = genre.Name
	}
	return names, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb %s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}

func capCandidates(results []Candidate) []Candidate {
	if len(results) > maxCandidates {
		return results[:maxCandidates]
	}
	return results
}
