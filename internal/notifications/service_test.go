package notifications

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"shelfscan/internal/config"
)

func TestNewServiceReturnsNoopWithoutTopic(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	service := NewService(&cfg)
	if _, ok := service.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", service)
	}
	if err := service.NotifyScanStarted(context.Background(), "abc"); err != nil {
		t.Fatalf("noop should never error: %v", err)
	}
}

func TestNotifyScanCompletedSendsHeaders(t *testing.T) {
	var gotTitle, gotTags, gotPriority, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		gotPriority = r.Header.Get("Priority")
		buf := make([]byte, 256)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	service := NewService(&cfg)

	if err := service.NotifyScanCompleted(context.Background(), "0123456789abcdef", 12, 9); err != nil {
		t.Fatalf("NotifyScanCompleted returned error: %v", err)
	}
	if gotTitle != "Shelfscan - Scan Complete" {
		t.Fatalf("title = %q", gotTitle)
	}
	if gotTags != "shelfscan,scan,completed" {
		t.Fatalf("tags = %q", gotTags)
	}
	if gotPriority != "high" {
		t.Fatalf("priority = %q", gotPriority)
	}
	if gotBody != "Identified 12 items, matched 9 (scan 01234567)" {
		t.Fatalf("body = %q", gotBody)
	}
}

func TestSendSurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	service := NewService(&cfg)

	if err := service.NotifyScanFailed(context.Background(), "abc", "boom"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
