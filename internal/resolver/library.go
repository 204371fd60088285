package resolver

import (
	"strings"

	"shelfscan/internal/library/plex"
	"shelfscan/internal/scans"
	"shelfscan/internal/textutil"
)

// LibraryItem is one personal-library entry prepared for cross-reference.
type LibraryItem struct {
	Ref   string
	Title string
	Year  int
	IDs   plex.ExternalIDs
}

// FlattenLibrary converts raw library items into cross-reference entries,
// preserving library order.
func FlattenLibrary(items []plex.Item) []LibraryItem {
	flattened := make([]LibraryItem, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		flattened = append(flattened, LibraryItem{
			Ref:   item.RatingKey,
			Title: title,
			Year:  item.Year,
			IDs:   item.ExternalIDs(),
		})
	}
	return flattened
}

// CrossReference marks the item as library-owned when a library entry
// matches by normalized title (exact or substring containment in either
// direction) within a one-year tolerance. Identifier fields are only
// filled when currently null — a primary-catalog id is never overwritten.
// An item the catalogs could not match is adopted from the library record
// instead, at low confidence since the title comparison is loose.
func CrossReference(item *scans.Item, library []LibraryItem) {
	queryTitle := item.Title
	if queryTitle == "" {
		queryTitle = item.RawTitle
	}
	queryYear := item.Year
	if queryYear == 0 {
		queryYear = item.RawYear
	}
	normalizedQuery := textutil.Normalize(queryTitle)
	if normalizedQuery == "" {
		return
	}

	// First match wins; library lists are small and unranked.
	for _, entry := range library {
		if !titlesMatch(normalizedQuery, textutil.Normalize(entry.Title)) {
			continue
		}
		if queryYear > 0 && entry.Year > 0 && absInt(queryYear-entry.Year) > 1 {
			continue
		}

		item.LibraryMatched = true
		item.LibraryRef = entry.Ref
		if item.IMDBID == "" {
			item.IMDBID = entry.IDs.IMDB
		}
		if item.TMDBID == 0 {
			item.TMDBID = entry.IDs.TMDB
		}
		if item.TVDBID == 0 {
			item.TVDBID = entry.IDs.TVDB
		}
		if item.Confidence == scans.ConfidenceUnmatched {
			item.Confidence = scans.ConfidenceLow
			item.Source = scans.SourceLibrary
			item.Title = entry.Title
			item.Year = entry.Year
		}
		return
	}
}

// titlesMatch compares normalized titles: exact, substring containment in
// either direction, or equal once spacing is removed entirely so hyphenation
// differences ("Spider-Man" vs "Spiderman") still line up.
func titlesMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b || strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	return textutil.NormalizeCompact(a) == textutil.NormalizeCompact(b)
}

func absInt(value int) int {
	if value < 0 {
		return -value
	}
	return value
}
