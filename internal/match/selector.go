// Package match selects the best catalog candidate for a noisy title query.
//
// Every matching path in the resolver (primary catalog, supplemental catalog)
// funnels through Best so the acceptance gate is equally strict for all
// sources. Scores are logged at debug level for explainability and are never
// used for anything beyond the comparison against the threshold.
package match

import (
	"log/slog"

	"shelfscan/internal/logging"
	"shelfscan/internal/titles"
)

const (
	// DefaultAcceptThreshold is the minimum score a candidate must reach to
	// be accepted at all.
	DefaultAcceptThreshold = 0.50
	// DefaultHighThreshold is the score at or above which an accepted match
	// is tagged high confidence.
	DefaultHighThreshold = 0.85
)

// Query is the noisy title being resolved. Year is 0 when unknown.
type Query struct {
	Title string
	Year  int
}

// Candidate is one catalog search result being scored.
type Candidate struct {
	Name string
	Year int
}

// Thresholds carries the matching policy constants. The zero value is not
// usable; call DefaultThresholds or load from settings.
type Thresholds struct {
	Accept    float64
	High      float64
	YearBonus float64
}

// DefaultThresholds returns the compiled-in matching policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Accept:    DefaultAcceptThreshold,
		High:      DefaultHighThreshold,
		YearBonus: titles.DefaultYearBonus,
	}
}

// Result identifies the winning candidate by position in the input slice.
type Result struct {
	Index int
	Score float64
}

// Best scores every candidate against the query and returns the maximum,
// provided it clears the acceptance threshold. Ties keep the first-seen
// candidate, which preserves the catalog's own relevance ranking.
func Best(logger *slog.Logger, query Query, candidates []Candidate, policy Thresholds) (Result, bool) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(candidates) == 0 {
		return Result{Index: -1}, false
	}

	best := Result{Index: -1, Score: -1}
	for idx, candidate := range candidates {
		score := titles.Score(query.Title, candidate.Name, query.Year, candidate.Year, policy.YearBonus)
		logger.Debug("candidate scored",
			logging.String("query", query.Title),
			logging.Int("query_year", query.Year),
			logging.Int("candidate_index", idx),
			logging.String("candidate", candidate.Name),
			logging.Int("candidate_year", candidate.Year),
			logging.Float64("score", score))
		if score > best.Score {
			best = Result{Index: idx, Score: score}
		}
	}

	if best.Score < policy.Accept {
		logger.Debug("best candidate below acceptance threshold",
			logging.String("query", query.Title),
			logging.Float64("best_score", best.Score),
			logging.Float64("threshold", policy.Accept))
		return Result{Index: -1}, false
	}
	return best, true
}
