package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks a missing or invalid credential or setting.
	// Raised before any work begins and never retried.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks input that failed schema or coercion checks.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a referenced record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTimeout marks an external call that exceeded its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrTransient marks failures that may succeed on a later attempt.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatalToScan reports whether a scan failure needs the operator to change
// something (credentials, input) before a retry could possibly succeed.
func IsFatalToScan(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrValidation)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
