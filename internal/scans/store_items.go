package scans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const itemColumns = "id, scan_id, position, raw_title, raw_creator, raw_kind, raw_year, " +
	"confidence, source, tmdb_id, imdb_id, tvdb_id, title, poster_url, overview, rating, " +
	"release_date, genres_json, year, detail, runtime, network, season_count, show_status, " +
	"library_matched, library_ref, created_at, updated_at"

func scanItemRow(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id             int64
		scanID         string
		position       int
		rawTitle       string
		rawCreator     sql.NullString
		rawKind        string
		rawYear        sql.NullInt64
		confidence     string
		source         string
		tmdbID         sql.NullInt64
		imdbID         sql.NullString
		tvdbID         sql.NullInt64
		title          sql.NullString
		posterURL      sql.NullString
		overview       sql.NullString
		rating         sql.NullFloat64
		releaseDate    sql.NullString
		genresJSON     sql.NullString
		year           sql.NullInt64
		detail         sql.NullString
		runtime        sql.NullInt64
		network        sql.NullString
		seasonCount    sql.NullInt64
		showStatus     sql.NullString
		libraryMatched sql.NullInt64
		libraryRef     sql.NullString
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
	)
	if err := scanner.Scan(
		&id, &scanID, &position, &rawTitle, &rawCreator, &rawKind, &rawYear,
		&confidence, &source, &tmdbID, &imdbID, &tvdbID, &title, &posterURL,
		&overview, &rating, &releaseDate, &genresJSON, &year, &detail, &runtime,
		&network, &seasonCount, &showStatus, &libraryMatched, &libraryRef,
		&createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}
	return &Item{
		ID:             id,
		ScanID:         scanID,
		Position:       position,
		RawTitle:       rawTitle,
		RawCreator:     rawCreator.String,
		RawKind:        rawKind,
		RawYear:        int(rawYear.Int64),
		Confidence:     Confidence(confidence),
		Source:         Source(source),
		TMDBID:         tmdbID.Int64,
		IMDBID:         imdbID.String,
		TVDBID:         tvdbID.Int64,
		Title:          title.String,
		PosterURL:      posterURL.String,
		Overview:       overview.String,
		Rating:         rating.Float64,
		ReleaseDate:    releaseDate.String,
		Genres:         decodeGenres(genresJSON),
		Year:           int(year.Int64),
		Detail:         detail.String,
		Runtime:        int(runtime.Int64),
		Network:        network.String,
		SeasonCount:    int(seasonCount.Int64),
		ShowStatus:     showStatus.String,
		LibraryMatched: libraryMatched.Int64 != 0,
		LibraryRef:     libraryRef.String,
		CreatedAt:      parseTimestamp(createdRaw),
		UpdatedAt:      parseTimestamp(updatedRaw),
	}, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// ReplaceItems atomically swaps a scan's items for the supplied set.
// Positions are taken from the slice order.
func (s *Store) ReplaceItems(ctx context.Context, scanID string, items []*Item) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin items tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM scan_items WHERE scan_id = ?", scanID); err != nil {
			return fmt.Errorf("clear items: %w", err)
		}
		for position, item := range items {
			if _, err := tx.ExecContext(ctx, `INSERT INTO scan_items (
				scan_id, position, raw_title, raw_creator, raw_kind, raw_year,
				confidence, source, tmdb_id, imdb_id, tvdb_id, title, poster_url,
				overview, rating, release_date, genres_json, year, detail, runtime,
				network, season_count, show_status, library_matched, library_ref
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				scanID, position, item.RawTitle, nullableString(item.RawCreator),
				item.RawKind, nullableInt(item.RawYear), string(item.Confidence),
				string(item.Source), nullableInt64(item.TMDBID), nullableString(item.IMDBID),
				nullableInt64(item.TVDBID), nullableString(item.Title), nullableString(item.PosterURL),
				nullableString(item.Overview), nullableFloat(item.Rating), nullableString(item.ReleaseDate),
				encodeGenres(item.Genres), nullableInt(item.Year), nullableString(item.Detail),
				nullableInt(item.Runtime), nullableString(item.Network), nullableInt(item.SeasonCount),
				nullableString(item.ShowStatus), boolToInt(item.LibraryMatched), nullableString(item.LibraryRef),
			); err != nil {
				return fmt.Errorf("insert item %d: %w", position, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit items: %w", err)
		}
		return nil
	})
}

// ItemsForScan returns a scan's items in position order.
func (s *Store) ItemsForScan(ctx context.Context, scanID string) ([]*Item, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM scan_items WHERE scan_id = ? ORDER BY position",
		scanID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItemRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetItem fetches one item by id.
func (s *Store) GetItem(ctx context.Context, id int64) (*Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM scan_items WHERE id = ?", id)
	item, err := scanItemRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch item: %w", err)
	}
	return item, nil
}

// UpdateItem overwrites one item's raw and enriched fields in place. The
// scan id and position are immutable.
func (s *Store) UpdateItem(ctx context.Context, item *Item) error {
	res, err := s.execWithRetry(ensureContext(ctx), `UPDATE scan_items SET
		raw_title = ?, raw_creator = ?, raw_kind = ?, raw_year = ?,
		confidence = ?, source = ?, tmdb_id = ?, imdb_id = ?, tvdb_id = ?,
		title = ?, poster_url = ?, overview = ?, rating = ?, release_date = ?,
		genres_json = ?, year = ?, detail = ?, runtime = ?, network = ?,
		season_count = ?, show_status = ?, library_matched = ?, library_ref = ?,
		updated_at = `+timestampExpr+`
		WHERE id = ?`,
		item.RawTitle, nullableString(item.RawCreator), item.RawKind, nullableInt(item.RawYear),
		string(item.Confidence), string(item.Source), nullableInt64(item.TMDBID),
		nullableString(item.IMDBID), nullableInt64(item.TVDBID), nullableString(item.Title),
		nullableString(item.PosterURL), nullableString(item.Overview), nullableFloat(item.Rating),
		nullableString(item.ReleaseDate), encodeGenres(item.Genres), nullableInt(item.Year),
		nullableString(item.Detail), nullableInt(item.Runtime), nullableString(item.Network),
		nullableInt(item.SeasonCount), nullableString(item.ShowStatus), boolToInt(item.LibraryMatched),
		nullableString(item.LibraryRef), item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item %d: %w", item.ID, ErrNotFound)
	}
	return nil
}
