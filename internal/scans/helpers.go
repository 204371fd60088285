package scans

import (
	"database/sql"
	"encoding/json"
	"time"
)

const timestampExpr = "strftime('%Y-%m-%dT%H:%M:%fZ', 'now')"

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt64(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableFloat(value float64) any {
	if value == 0 {
		return nil
	}
	return value
}

func parseTimestamp(raw sql.NullString) time.Time {
	if !raw.Valid {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw.String); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func encodeGenres(genres []string) any {
	if len(genres) == 0 {
		return nil
	}
	encoded, err := json.Marshal(genres)
	if err != nil {
		return nil
	}
	return string(encoded)
}

func decodeGenres(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var genres []string
	if err := json.Unmarshal([]byte(raw.String), &genres); err != nil {
		return nil
	}
	return genres
}
