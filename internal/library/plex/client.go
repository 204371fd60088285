package plex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Lister defines the library operations used by the resolver.
type Lister interface {
	Libraries(ctx context.Context) ([]Library, error)
	Items(ctx context.Context, libraryKey string) ([]Item, error)
}

// Library is one server library section.
type Library struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Kind  string `json:"type"`
}

// Item is one library entry with its external cross-reference ids.
type Item struct {
	RatingKey  string `json:"ratingKey"`
	Title      string `json:"title"`
	Year       int    `json:"year"`
	LegacyGUID string `json:"guid"`
	GUIDs      []struct {
		ID string `json:"id"`
	} `json:"Guid"`
}

// Client provides access to the personal library server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ Lister = (*Client)(nil)

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

// New creates a library client.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("plex base url required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("plex token required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type sectionsResponse struct {
	MediaContainer struct {
		Directory []Library `json:"Directory"`
	} `json:"MediaContainer"`
}

// Libraries lists the server's movie and show libraries. Other library
// kinds (music, photos) are filtered out.
func (c *Client) Libraries(ctx context.Context) ([]Library, error) {
	var payload sectionsResponse
	if err := c.get(ctx, "/library/sections", url.Values{}, &payload); err != nil {
		return nil, err
	}
	libraries := make([]Library, 0, len(payload.MediaContainer.Directory))
	for _, library := range payload.MediaContainer.Directory {
		if library.Kind == "movie" || library.Kind == "show" {
			libraries = append(libraries, library)
		}
	}
	return libraries, nil
}

type itemsResponse struct {
	MediaContainer struct {
		Metadata []Item `json:"Metadata"`
	} `json:"MediaContainer"`
}

// Items lists every item in the given library, requesting embedded external
// cross-reference ids.
func (c *Client) Items(ctx context.Context, libraryKey string) ([]Item, error) {
	libraryKey = strings.TrimSpace(libraryKey)
	if libraryKey == "" {
		return nil, errors.New("library key must not be empty")
	}
	params := url.Values{}
	params.Set("includeGuids", "1")
	var payload itemsResponse
	path := "/library/sections/" + url.PathEscape(libraryKey) + "/all"
	if err := c.get(ctx, path, params, &payload); err != nil {
		return nil, err
	}
	return payload.MediaContainer.Metadata, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse plex url: %w", err)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", c.token)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("plex %s returned %d (latency=%v): %s", path, resp.StatusCode, latency, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode plex response: %w", err)
	}
	return nil
}
