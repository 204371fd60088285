package resolver

import (
	"context"

	"shelfscan/internal/catalog/tvdb"
	"shelfscan/internal/logging"
	"shelfscan/internal/match"
	"shelfscan/internal/scans"
	"shelfscan/internal/titles"
	"shelfscan/internal/vision"
)

// resolveSupplemental fills the supplemental-catalog id for a matched item.
// A direct cross-reference lookup is always preferred over title search: the
// id it produces is unambiguous and is never overwritten by a weaker
// title-search result. Runs in its own failure domain — errors are logged
// and the item keeps its primary-catalog match.
func (r *Resolver) resolveSupplemental(ctx context.Context, raw vision.Item, item *scans.Item) {
	if r.supplemental == nil || item.TVDBID != 0 {
		return
	}

	if item.IMDBID != "" {
		if id := r.lookupByCrossReference(ctx, item.IMDBID); id > 0 {
			item.TVDBID = id
			return
		}
	}

	kind := supplementalKind(raw.Kind)
	for _, query := range supplementalQueries(raw) {
		results, err := r.supplemental.Search(ctx, query, tvdb.SearchOptions{Kind: kind, Year: raw.Year})
		if err != nil {
			r.logger.Warn("supplemental search failed",
				logging.String("title", query),
				logging.Error(err))
			return
		}
		if id, ok := r.selectSupplemental(raw, results); ok {
			item.TVDBID = id
			return
		}
	}
}

// lookupByCrossReference resolves a remote id via the filtered search form
// first, then the path-based lookup endpoint when that yields nothing.
func (r *Resolver) lookupByCrossReference(ctx context.Context, remoteID string) int64 {
	results, err := r.supplemental.Search(ctx, remoteID, tvdb.SearchOptions{RemoteID: remoteID})
	if err != nil {
		r.logger.Warn("supplemental remote-id search failed",
			logging.String("remote_id", remoteID),
			logging.Error(err))
	}
	for _, result := range results {
		if id := result.NumericID(); id > 0 {
			return id
		}
	}

	id, err := r.supplemental.LookupByRemoteID(ctx, remoteID)
	if err != nil {
		r.logger.Warn("supplemental remote-id lookup failed",
			logging.String("remote_id", remoteID),
			logging.Error(err))
		return 0
	}
	return id
}

// supplementalQueries returns the kind-specific title variants to try. TV
// items search with the stripped title first and the original as fallback.
func supplementalQueries(raw vision.Item) []string {
	if raw.Kind == vision.KindMovie {
		return []string{raw.Title}
	}
	stripped := titles.StripSeriesSuffix(raw.Title)
	if stripped == raw.Title {
		return []string{raw.Title}
	}
	return []string{stripped, raw.Title}
}

func supplementalKind(kind vision.Kind) string {
	if kind == vision.KindMovie {
		return "movie"
	}
	return "series"
}

func (r *Resolver) selectSupplemental(raw vision.Item, results []tvdb.SearchResult) (int64, bool) {
	if len(results) == 0 {
		return 0, false
	}
	candidates := make([]match.Candidate, len(results))
	for i, result := range results {
		candidates[i] = match.Candidate{Name: result.Name, Year: result.YearInt()}
	}
	best, ok := match.Best(r.logger, match.Query{Title: raw.Title, Year: raw.Year}, candidates, r.policy)
	if !ok {
		return 0, false
	}
	id := results[best.Index].NumericID()
	return id, id > 0
}
