package main

import (
	"errors"
	"strings"
	"testing"

	"shelfscan/internal/services"
)

func TestRetryHintForTransientFailure(t *testing.T) {
	err := services.Wrap(services.ErrTransient, "analyzing", "identify shelf", "vision request failed", errors.New("timeout"))
	hint := retryHint(err, "scan-123")
	if !strings.Contains(hint, "shelfscan rescan scan-123") {
		t.Fatalf("hint = %q", hint)
	}
}

func TestRetryHintSuppressedForFatalFailure(t *testing.T) {
	cases := []error{
		services.Wrap(services.ErrConfiguration, "analyzing", "identify shelf", "api key missing", nil),
		services.Wrap(services.ErrValidation, "enriching", "parse items", "no stored model output", nil),
	}
	for _, err := range cases {
		if hint := retryHint(err, "scan-123"); hint != "" {
			t.Fatalf("expected no hint for %v, got %q", err, hint)
		}
	}
	if hint := retryHint(errors.New("boom"), ""); hint != "" {
		t.Fatalf("expected no hint without a scan id, got %q", hint)
	}
}
