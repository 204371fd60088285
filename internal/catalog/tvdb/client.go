package tvdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// Issued tokens are valid for about a month; refresh a few days early
	// so in-flight requests never carry a token that expires mid-call.
	tokenLifetime     = 30 * 24 * time.Hour
	tokenRefreshSlack = 3 * 24 * time.Hour
)

// Searcher defines the supplemental-catalog operations used by the resolver.
type Searcher interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)
	LookupByRemoteID(ctx context.Context, remoteID string) (int64, error)
}

// Client provides access to the supplemental catalog API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	tokenMu     sync.RWMutex
	token       string
	tokenExpiry time.Time
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

// New creates a supplemental-catalog client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tvdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tvdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchOptions contains optional search filters.
type SearchOptions struct {
	Kind     string // "movie" or "series"
	Year     int
	RemoteID string
}

// SearchResult is one supplemental-catalog search match. The numeric id may
// appear under TVDBID, under the composite ID field, or under ObjectID
// depending on the record's vintage.
type SearchResult struct {
	Name     string `json:"name"`
	Year     string `json:"year"`
	Kind     string `json:"type"`
	Overview string `json:"overview"`
	ImageURL string `json:"image_url"`
	TVDBID   string `json:"tvdb_id"`
	ID       string `json:"id"`
	ObjectID string `json:"objectID"`
}

// YearInt parses the result's year field, or 0 when absent or malformed.
func (r SearchResult) YearInt() int {
	year, err := strconv.Atoi(strings.TrimSpace(r.Year))
	if err != nil || year <= 0 {
		return 0
	}
	return year
}

// NumericID extracts the record's numeric id. The tvdb_id field is tried
// first, then the composite id field with its "kind-" prefix stripped, then
// objectID. Returns 0 when no field parses to a positive integer.
func (r SearchResult) NumericID() int64 {
	for _, raw := range []string{r.TVDBID, r.ID, r.ObjectID} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if idx := strings.LastIndex(raw, "-"); idx >= 0 {
			raw = raw[idx+1:]
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil && id > 0 {
			return id
		}
	}
	return 0
}

type searchResponse struct {
	Data []SearchResult `json:"data"`
}

// Search queries the catalog with optional kind, year, and remote-id filters.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	if opts.Kind != "" {
		params.Set("type", opts.Kind)
	}
	if opts.Year > 0 {
		params.Set("year", strconv.Itoa(opts.Year))
	}
	if opts.RemoteID != "" {
		params.Set("remote_id", opts.RemoteID)
	}
	var payload searchResponse
	if err := c.get(ctx, "/search", params, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

type remoteIDResponse struct {
	Data []struct {
		Series *struct {
			ID int64 `json:"id"`
		} `json:"series"`
		Movie *struct {
			ID int64 `json:"id"`
		} `json:"movie"`
	} `json:"data"`
}

// LookupByRemoteID resolves a cross-reference id (for example an IMDb id)
// to a catalog id via the path-based lookup endpoint. Returns 0 with no
// error when the catalog knows nothing about the id.
func (c *Client) LookupByRemoteID(ctx context.Context, remoteID string) (int64, error) {
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return 0, errors.New("remote id must not be empty")
	}
	var payload remoteIDResponse
	if err := c.get(ctx, "/search/remoteid/"+url.PathEscape(remoteID), url.Values{}, &payload); err != nil {
		return 0, err
	}
	for _, entry := range payload.Data {
		if entry.Series != nil && entry.Series.ID > 0 {
			return entry.Series.ID, nil
		}
		if entry.Movie != nil && entry.Movie.ID > 0 {
			return entry.Movie.ID, nil
		}
	}
	return 0, nil
}

type loginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.tokenMu.RLock()
	token := c.token
	expiry := c.tokenExpiry
	c.tokenMu.RUnlock()
	if token != "" && time.Until(expiry) > tokenRefreshSlack {
		return token, nil
	}
	return c.refreshToken(ctx)
}

func (c *Client) refreshToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	if c.token != "" && time.Until(c.tokenExpiry) > tokenRefreshSlack {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{"apikey": c.apiKey})
	if err != nil {
		return "", fmt.Errorf("encode login payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", fmt.Errorf("execute login (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tvdb login returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if payload.Data.Token == "" {
		return "", errors.New("tvdb login returned empty token")
	}

	c.token = payload.Data.Token
	c.tokenExpiry = time.Now().Add(tokenLifetime)
	return c.token, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tvdb url: %w", err)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tvdb %s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tvdb response: %w", err)
	}
	return nil
}
