package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shelfscan/internal/config"
)

const userAgent = "Shelfscan-Go/0.1.0"

// Service defines the notification surface exposed to the scan pipeline.
type Service interface {
	NotifyScanStarted(ctx context.Context, scanID string) error
	NotifyScanCompleted(ctx context.Context, scanID string, identified, matched int) error
	NotifyScanFailed(ctx context.Context, scanID, reason string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyScanStarted(ctx context.Context, scanID string) error {
	data := payload{
		title:   "Shelfscan - Scan Started",
		message: fmt.Sprintf("Analyzing shelf photo (scan %s)", shortID(scanID)),
		tags:    []string{"shelfscan", "scan", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyScanCompleted(ctx context.Context, scanID string, identified, matched int) error {
	data := payload{
		title:    "Shelfscan - Scan Complete",
		message:  fmt.Sprintf("Identified %d items, matched %d (scan %s)", identified, matched, shortID(scanID)),
		tags:     []string{"shelfscan", "scan", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyScanFailed(ctx context.Context, scanID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	data := payload{
		title:    "Shelfscan - Scan Failed",
		message:  fmt.Sprintf("Scan %s failed: %s", shortID(scanID), reason),
		tags:     []string{"shelfscan", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Shelfscan - Test",
		message:  "Notification system test",
		tags:     []string{"shelfscan", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyScanStarted(context.Context, string) error             { return nil }
func (noopService) NotifyScanCompleted(context.Context, string, int, int) error { return nil }
func (noopService) NotifyScanFailed(context.Context, string, string) error      { return nil }
func (noopService) TestNotification(context.Context) error                      { return nil }
