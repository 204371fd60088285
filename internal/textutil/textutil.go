// Package textutil provides small text normalization helpers shared by the
// matching components.
package textutil

import (
	"regexp"
	"strings"
)

var nonAlphanumericPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize lowercases text, replaces non-alphanumeric runs with single
// spaces, and trims the result. Used for the loose title comparisons in the
// personal-library cross-reference.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	return strings.TrimSpace(nonAlphanumericPattern.ReplaceAllString(lowered, " "))
}

// NormalizeCompact is Normalize with all spaces removed, for comparisons
// where word boundaries are unreliable.
func NormalizeCompact(text string) string {
	return strings.ReplaceAll(Normalize(text), " ", "")
}
