// Package scans persists shelf scans, their enriched items, stored images,
// the usage ledger, and user settings in SQLite.
//
// Images are content-addressed by SHA-256 so re-uploading identical bytes
// reuses the stored row. Deleting a scan cascades to its items; stored
// images are shared and survive scan deletion.
package scans
