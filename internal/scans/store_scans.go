package scans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const scanColumns = "id, image_id, model_id, status, raw_model_output, error_message, created_at, updated_at"

func scanScanRow(scanner interface{ Scan(dest ...any) error }) (*Scan, error) {
	var (
		id         string
		imageID    int64
		modelID    string
		statusStr  string
		rawOutput  sql.NullString
		errMessage sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &imageID, &modelID, &statusStr, &rawOutput, &errMessage, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	return &Scan{
		ID:             id,
		ImageID:        imageID,
		ModelID:        modelID,
		Status:         Status(statusStr),
		RawModelOutput: rawOutput.String,
		ErrorMessage:   errMessage.String,
		CreatedAt:      parseTimestamp(createdRaw),
		UpdatedAt:      parseTimestamp(updatedRaw),
	}, nil
}

// CreateScan inserts a new pending scan for the stored image.
func (s *Store) CreateScan(ctx context.Context, imageID int64, modelID string) (*Scan, error) {
	ctx = ensureContext(ctx)
	id := uuid.NewString()
	_, err := s.execWithRetry(ctx,
		"INSERT INTO scans (id, image_id, model_id, status) VALUES (?, ?, ?, ?)",
		id, imageID, modelID, string(StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("insert scan: %w", err)
	}
	return s.GetScan(ctx, id)
}

// GetScan fetches one scan by id.
func (s *Store) GetScan(ctx context.Context, id string) (*Scan, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+scanColumns+" FROM scans WHERE id = ?", id)
	scan, err := scanScanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scan %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch scan: %w", err)
	}
	return scan, nil
}

// ListScans returns scans newest-first, up to limit (0 means no limit).
func (s *Store) ListScans(ctx context.Context, limit int) ([]*Scan, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + scanColumns + " FROM scans ORDER BY created_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var result []*Scan
	for rows.Next() {
		scan, err := scanScanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, scan)
	}
	return result, rows.Err()
}

// UpdateScanStatus transitions a scan and records an optional error message.
func (s *Store) UpdateScanStatus(ctx context.Context, id string, status Status, errorMessage string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}
	res, err := s.execWithRetry(ensureContext(ctx),
		"UPDATE scans SET status = ?, error_message = ?, updated_at = "+timestampExpr+" WHERE id = ?",
		string(status), nullableString(errorMessage), id,
	)
	if err != nil {
		return fmt.Errorf("update scan status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("scan %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetRawModelOutput stores the model's verbatim payload for replay,
// overwriting any prior value.
func (s *Store) SetRawModelOutput(ctx context.Context, id, rawOutput, modelID string) error {
	res, err := s.execWithRetry(ensureContext(ctx),
		"UPDATE scans SET raw_model_output = ?, model_id = ?, updated_at = "+timestampExpr+" WHERE id = ?",
		rawOutput, modelID, id,
	)
	if err != nil {
		return fmt.Errorf("set raw output: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("scan %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteScan removes a scan; its items go with it via the cascade.
func (s *Store) DeleteScan(ctx context.Context, id string) error {
	res, err := s.execWithRetry(ensureContext(ctx), "DELETE FROM scans WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("scan %s: %w", id, ErrNotFound)
	}
	return nil
}
