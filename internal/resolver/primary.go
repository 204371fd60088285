package resolver

import (
	"context"
	"strings"

	"shelfscan/internal/catalog/tmdb"
	"shelfscan/internal/logging"
	"shelfscan/internal/match"
	"shelfscan/internal/scans"
	"shelfscan/internal/titles"
	"shelfscan/internal/vision"
)

func (r *Resolver) searchSoft(ctx context.Context, title string, opts tmdb.SearchOptions, mode searchMode) []tmdb.Candidate {
	results, err := r.search.search(ctx, title, opts, mode)
	if err != nil {
		r.logger.Warn("catalog search failed",
			logging.String("mode", string(mode)),
			logging.String("title", title),
			logging.Error(err))
		return nil
	}
	return results
}

func (r *Resolver) selectBest(raw vision.Item, results []tmdb.Candidate) (tmdb.Candidate, float64, bool) {
	candidates := make([]match.Candidate, len(results))
	for i, result := range results {
		candidates[i] = match.Candidate{Name: result.DisplayName(), Year: result.Year()}
	}
	best, ok := match.Best(r.logger, match.Query{Title: raw.Title, Year: raw.Year}, candidates, r.policy)
	if !ok {
		return tmdb.Candidate{}, 0, false
	}
	return results[best.Index], best.Score, true
}

func applyCandidate(item *scans.Item, chosen tmdb.Candidate, genres []string) {
	item.TMDBID = chosen.ID
	item.Title = chosen.DisplayName()
	item.Overview = chosen.Overview
	item.Rating = chosen.VoteAverage
	item.Year = chosen.Year()
	item.Genres = genres
	if chosen.PosterPath != "" {
		item.PosterURL = posterBaseURL + chosen.PosterPath
	}
	if chosen.ReleaseDate != "" {
		item.ReleaseDate = chosen.ReleaseDate
	} else {
		item.ReleaseDate = chosen.FirstAir
	}
}

func (r *Resolver) matchMovie(ctx context.Context, raw vision.Item, item *scans.Item) bool {
	opts := tmdb.SearchOptions{Year: raw.Year}
	results := r.searchSoft(ctx, raw.Title, opts, searchModeMovie)
	chosen, score, ok := r.selectBest(raw, results)
	if !ok {
		return false
	}

	applyCandidate(item, chosen, r.genres.Names(ctx, chosen.GenreIDs))
	item.Confidence = r.confidenceFor(score)
	item.Source = scans.SourceCatalog

	// Detail fetch fails soft: the search result alone is a valid match.
	detail, err := r.catalog.MovieDetails(ctx, chosen.ID)
	if err != nil {
		r.logger.Warn("movie detail fetch failed",
			logging.Int64("tmdb_id", chosen.ID),
			logging.Error(err))
		return true
	}
	item.Detail = detail.Director()
	item.Runtime = detail.Runtime
	item.IMDBID = detail.IMDBID
	return true
}

func (r *Resolver) matchTV(ctx context.Context, raw vision.Item, item *scans.Item) bool {
	searchTitle := titles.StripSeriesSuffix(raw.Title)

	// Stripped title with year, then the untouched title, then no year.
	results := r.searchSoft(ctx, searchTitle, tmdb.SearchOptions{Year: raw.Year}, searchModeTV)
	if len(results) == 0 && searchTitle != raw.Title {
		results = r.searchSoft(ctx, raw.Title, tmdb.SearchOptions{Year: raw.Year}, searchModeTV)
	}
	if len(results) == 0 && raw.Year > 0 {
		results = r.searchSoft(ctx, searchTitle, tmdb.SearchOptions{}, searchModeTV)
	}

	chosen, score, ok := r.selectBest(raw, results)
	if !ok {
		return false
	}

	applyCandidate(item, chosen, r.genres.Names(ctx, chosen.GenreIDs))
	item.Confidence = r.confidenceFor(score)
	item.Source = scans.SourceCatalog

	detail, err := r.catalog.TVDetails(ctx, chosen.ID)
	if err != nil {
		r.logger.Warn("tv detail fetch failed",
			logging.Int64("tmdb_id", chosen.ID),
			logging.Error(err))
		return true
	}
	item.Detail = strings.Join(detail.Creators(), ", ")
	item.Network = detail.Network()
	item.SeasonCount = detail.NumberOfSeasons
	item.ShowStatus = detail.Status
	item.IMDBID = detail.ExternalIDs.IMDBID
	item.TVDBID = detail.ExternalIDs.TVDBID
	return true
}
