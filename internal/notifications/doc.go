// Package notifications sends scan lifecycle push notifications via ntfy.
// When no topic is configured a noop implementation is returned so callers
// never need to branch.
package notifications
