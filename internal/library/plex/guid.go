package plex

import (
	"strconv"
	"strings"
)

// ExternalIDs holds the cross-reference ids attached to a library item.
type ExternalIDs struct {
	IMDB string
	TMDB int64
	TVDB int64
}

// Empty reports whether no id was found.
func (ids ExternalIDs) Empty() bool {
	return ids.IMDB == "" && ids.TMDB == 0 && ids.TVDB == 0
}

// ExternalIDs extracts the item's cross-reference ids. The structured guid
// list ("imdb://tt0133093", "tmdb://603", "tvdb://81189") is preferred;
// when it is absent the legacy single-string form
// ("com.plexapp.agents.imdb://tt0133093?lang=en") is parsed instead.
func (i Item) ExternalIDs() ExternalIDs {
	var ids ExternalIDs
	for _, guid := range i.GUIDs {
		applyGUID(&ids, guid.ID)
	}
	if ids.Empty() && i.LegacyGUID != "" {
		applyLegacyGUID(&ids, i.LegacyGUID)
	}
	return ids
}

func applyGUID(ids *ExternalIDs, raw string) {
	scheme, value, ok := strings.Cut(strings.TrimSpace(raw), "://")
	if !ok || value == "" {
		return
	}
	switch scheme {
	case "imdb":
		ids.IMDB = value
	case "tmdb":
		if id, err := strconv.ParseInt(value, 10, 64); err == nil && id > 0 {
			ids.TMDB = id
		}
	case "tvdb":
		if id, err := strconv.ParseInt(value, 10, 64); err == nil && id > 0 {
			ids.TVDB = id
		}
	}
}

func applyLegacyGUID(ids *ExternalIDs, raw string) {
	scheme, value, ok := strings.Cut(strings.TrimSpace(raw), "://")
	if !ok || value == "" {
		return
	}
	// Strip query string and any season/episode path segments.
	if idx := strings.IndexAny(value, "?/"); idx >= 0 {
		value = value[:idx]
	}
	if value == "" {
		return
	}
	switch {
	case strings.HasSuffix(scheme, ".imdb"):
		ids.IMDB = value
	case strings.HasSuffix(scheme, ".themoviedb"):
		if id, err := strconv.ParseInt(value, 10, 64); err == nil && id > 0 {
			ids.TMDB = id
		}
	case strings.HasSuffix(scheme, ".thetvdb"):
		if id, err := strconv.ParseInt(value, 10, 64); err == nil && id > 0 {
			ids.TVDB = id
		}
	}
}
