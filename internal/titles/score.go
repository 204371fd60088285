package titles

import "strings"

// DefaultYearBonus is added to a title score when the query and candidate
// years are both known and equal.
const DefaultYearBonus = 0.10

// Score computes the match score between a query title and a candidate
// catalog name. Two variants are compared and the maximum wins: the raw
// article-stripped forms, and the series-suffix-stripped query against the
// same candidate form. The query may carry a season decoration the catalog
// never has, which is why the stripped variant exists. A year bonus is added
// when both years are present and equal, and the result is clamped to 1.
//
// The scoring policy is intentionally asymmetric in query and candidate;
// only the underlying edit distance is symmetric.
func Score(query, candidate string, queryYear, candidateYear int, yearBonus float64) float64 {
	rawScore := Similarity(compareForm(query), compareForm(candidate))
	strippedScore := Similarity(compareForm(SearchTitle(query)), compareForm(candidate))

	score := rawScore
	if strippedScore > score {
		score = strippedScore
	}
	if queryYear > 0 && candidateYear > 0 && queryYear == candidateYear {
		score += yearBonus
	}
	if score > 1 {
		score = 1
	}
	return score
}

func compareForm(s string) string {
	return StripArticle(strings.ToLower(strings.TrimSpace(s)))
}
