package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 120 * time.Second
	defaultRetryDelay  = 2 * time.Second

	// A response that is still not schema-valid after the retry fails
	// the scan.
	maxAttempts = 2
)

// Config captures the runtime settings required to talk to the vision model.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Usage records the token accounting for one model invocation.
type Usage struct {
	Model            string
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	Cost             float64
}

// Identification is the outcome of one shelf-photo invocation. RawOutput
// preserves the model's payload verbatim so enrichment can be replayed
// without another model call.
type Identification struct {
	Items     []Item
	RawOutput string
	Usage     Usage
}

// Client wraps an OpenAI-compatible chat completion API with image input.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retryDelay time.Duration
	sleeper    func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryDelay overrides the delay before the second attempt.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a vision client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// IdentifyShelf sends the photograph to the model and parses the identified
// item list. The whole call, transport and parsing included, is attempted
// at most twice; a fenced or otherwise quirky but recoverable payload
// succeeds on the first attempt without consuming the retry.
func (c *Client) IdentifyShelf(ctx context.Context, image []byte, mimeType string) (*Identification, error) {
	if len(image) == 0 {
		return nil, errors.New("vision identify: image required")
	}
	if c.cfg.APIKey == "" {
		return nil, errors.New("vision identify: api key required")
	}
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: identifyPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: "Identify the media on this shelf."},
				{Type: "image_url", ImageURL: &imagePayload{URL: dataURL}},
			}},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.retryDelay); err != nil {
				return nil, err
			}
		}
		content, usage, err := c.completionContent(ctx, payload, "vision identify")
		if err == nil {
			var items []Item
			items, err = ParseItems(content)
			if err == nil {
				return &Identification{Items: items, RawOutput: content, Usage: usage}, nil
			}
			err = fmt.Errorf("vision identify: parse items: %w", err)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("vision identify: failed after %d attempts: %w", maxAttempts, lastErr)
}

// HealthCheck issues a fast text-only ping to verify the API key and model
// are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("vision health: api key required")
	}
	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You must respond with JSON only."},
			{Role: "user", Content: "Respond with {\"ok\":true}"},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	content, _, err := c.completionContent(ctx, payload, "vision health")
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeModelJSON(content, &parsed); err != nil {
		return fmt.Errorf("vision health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("vision health: unexpected response")
	}
	return nil
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

// chatMessage content is either a plain string or a list of contentPart.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imagePayload `json:"image_url,omitempty"`
}

type imagePayload struct {
	URL string `json:"url"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64   `json:"prompt_tokens"`
		CompletionTokens int64   `json:"completion_tokens"`
		TotalTokens      int64   `json:"total_tokens"`
		Cost             float64 `json:"cost"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) completionContent(ctx context.Context, payload chatCompletionRequest, op string) (string, Usage, error) {
	var usage Usage
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", usage, fmt.Errorf("%s: encode body: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", usage, fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", usage, fmt.Errorf("%s: http error (timeout=%s): %w", op, c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", usage, fmt.Errorf("%s: read body: %w", op, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", usage, fmt.Errorf("%s: http %d: %s", op, resp.StatusCode, summarizePayloadSnippet(string(body)))
	}
	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", usage, fmt.Errorf("%s: decode response: %w", op, err)
	}
	if completion.Error != nil {
		return "", usage, fmt.Errorf("%s: api error: %s", op, strings.TrimSpace(completion.Error.Message))
	}
	usage = Usage{
		Model:            c.cfg.Model,
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
		TotalTokens:      completion.Usage.TotalTokens,
		Cost:             completion.Usage.Cost,
	}
	for _, choice := range completion.Choices {
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, usage, nil
		}
	}
	if len(completion.Choices) == 0 {
		return "", usage, fmt.Errorf("%s: empty choices", op)
	}
	return "", usage, fmt.Errorf(
		"%s: empty content (finish_reason=%q, refusal=%q)",
		op,
		completion.Choices[0].FinishReason,
		completion.Choices[0].Message.Refusal,
	)
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
