package scans

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
)

// PutImage stores the photograph content-addressed by SHA-256. Identical
// bytes reuse the existing row and return its id.
func (s *Store) PutImage(ctx context.Context, data []byte, mimeType string) (int64, error) {
	if len(data) == 0 {
		return 0, errors.New("image data must not be empty")
	}
	ctx = ensureContext(ctx)
	digest := sha256.Sum256(data)
	hash := hex.EncodeToString(digest[:])

	var existing int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM images WHERE sha256 = ?", hash).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("look up image: %w", err)
	}

	// ON CONFLICT DO NOTHING covers a concurrent insert of the same bytes;
	// the follow-up select reads whichever insert won.
	if _, err := s.execWithRetry(ctx,
		"INSERT INTO images (sha256, mime_type, data) VALUES (?, ?, ?) ON CONFLICT(sha256) DO NOTHING",
		hash, mimeType, data,
	); err != nil {
		return 0, fmt.Errorf("insert image: %w", err)
	}
	var id int64
	if err := s.db.QueryRowContext(ctx, "SELECT id FROM images WHERE sha256 = ?", hash).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve image id: %w", err)
	}
	return id, nil
}

// GetImage fetches a stored image by id.
func (s *Store) GetImage(ctx context.Context, id int64) (*Image, error) {
	ctx = ensureContext(ctx)
	var (
		image      Image
		createdRaw sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, sha256, mime_type, data, created_at FROM images WHERE id = ?", id,
	).Scan(&image.ID, &image.SHA256, &image.MIMEType, &image.Data, &createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("image %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	image.CreatedAt = parseTimestamp(createdRaw)
	return &image, nil
}
