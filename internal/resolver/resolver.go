package resolver

import (
	"context"
	"log/slog"

	"shelfscan/internal/catalog/tmdb"
	"shelfscan/internal/catalog/tvdb"
	"shelfscan/internal/logging"
	"shelfscan/internal/match"
	"shelfscan/internal/scans"
	"shelfscan/internal/vision"
)

const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// Resolver resolves raw identified items against the configured catalogs.
// The genre cache and supplemental client are shared, process-wide state;
// everything else is per-call.
type Resolver struct {
	logger       *slog.Logger
	catalog      tmdb.Searcher
	search       *catalogSearch
	genres       *tmdb.GenreCache
	supplemental tvdb.Searcher
	policy       match.Thresholds
}

// New constructs a resolver. The supplemental client may be nil when the
// supplemental catalog is not configured.
func New(logger *slog.Logger, catalog tmdb.Searcher, genres *tmdb.GenreCache, supplemental tvdb.Searcher, policy match.Thresholds) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		logger:       logger,
		catalog:      catalog,
		search:       newCatalogSearch(catalog),
		genres:       genres,
		supplemental: supplemental,
		policy:       policy,
	}
}

// Resolve enriches one item. It never returns an error: resolution
// failures leave the item unmatched, which is a valid terminal outcome.
func (r *Resolver) Resolve(ctx context.Context, raw vision.Item) *scans.Item {
	item := &scans.Item{
		RawTitle:   raw.Title,
		RawCreator: raw.Creator,
		RawKind:    string(raw.Kind),
		RawYear:    raw.Year,
		Confidence: scans.ConfidenceUnmatched,
		Source:     scans.SourceNone,
	}

	var matched bool
	switch raw.Kind {
	case vision.KindMovie:
		matched = r.matchMovie(ctx, raw, item)
	case vision.KindTV:
		matched = r.matchTV(ctx, raw, item)
	case vision.KindDisc:
		// Ambiguous physical disc: try the movie index first, then TV.
		matched = r.matchMovie(ctx, raw, item)
		if !matched {
			matched = r.matchTV(ctx, raw, item)
		}
	default:
		// vinyl/game/other have no catalog coverage.
		return item
	}

	if matched {
		r.resolveSupplemental(ctx, raw, item)
	}
	return item
}

func (r *Resolver) confidenceFor(score float64) scans.Confidence {
	if score >= r.policy.High {
		return scans.ConfidenceHigh
	}
	return scans.ConfidenceLow
}
