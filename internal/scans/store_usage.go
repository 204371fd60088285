package scans

import (
	"context"
	"database/sql"
	"fmt"
)

// AppendUsage records one model invocation in the append-only ledger.
func (s *Store) AppendUsage(ctx context.Context, record UsageRecord) error {
	_, err := s.execWithRetry(ensureContext(ctx),
		"INSERT INTO usage_log (scan_id, model, prompt_tokens, completion_tokens, total_tokens, cost) VALUES (?, ?, ?, ?, ?, ?)",
		record.ScanID, record.Model, record.PromptTokens, record.CompletionTokens, record.TotalTokens, record.Cost,
	)
	if err != nil {
		return fmt.Errorf("append usage: %w", err)
	}
	return nil
}

// UsageForScan returns the ledger entries for one scan, oldest first.
func (s *Store) UsageForScan(ctx context.Context, scanID string) ([]*UsageRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, scan_id, model, prompt_tokens, completion_tokens, total_tokens, cost, created_at FROM usage_log WHERE scan_id = ? ORDER BY id",
		scanID,
	)
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	defer rows.Close()

	var records []*UsageRecord
	for rows.Next() {
		var (
			record     UsageRecord
			createdRaw sql.NullString
		)
		if err := rows.Scan(&record.ID, &record.ScanID, &record.Model, &record.PromptTokens,
			&record.CompletionTokens, &record.TotalTokens, &record.Cost, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		record.CreatedAt = parseTimestamp(createdRaw)
		records = append(records, &record)
	}
	return records, rows.Err()
}

// TotalCost sums the ledger's recorded cost across all scans.
func (s *Store) TotalCost(ctx context.Context) (float64, error) {
	var total sql.NullFloat64
	err := s.db.QueryRowContext(ensureContext(ctx), "SELECT SUM(cost) FROM usage_log").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum usage cost: %w", err)
	}
	return total.Float64, nil
}
