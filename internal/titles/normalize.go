package titles

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var leadingArticlePattern = regexp.MustCompile(`(?i)^(the|a|an)\s+`)

// Catalogs sometimes render sort titles with the article moved to the end
// ("Avengers, The"). Treat that form the same as a leading article.
var trailingArticlePattern = regexp.MustCompile(`(?i),\s*(the|a|an)\s*$`)

// seriesSuffixPatterns is the fixed ordered set of season/series decorations
// stripped from query titles. Each pattern is applied independently in
// sequence and is a no-op when it does not match.
var seriesSuffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*\(season\s+\d+\)$`),
	regexp.MustCompile(`(?i)\s*[-:\x{2013}]\s*(?:the\s+)?(?:complete\s+)?(?:(?:season|series)\s+(?:\d+|first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth)|(?:first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth)\s+(?:season|series))$`),
	regexp.MustCompile(`(?i)\s*-\s*s\d{2}$`),
	regexp.MustCompile(`(?i)\s*[-:\x{2013}]\s*the\s+complete\s+series$`),
}

var yearSuffixPattern = regexp.MustCompile(`\s*\((?:19|20)\d{2}\)$`)

// StripArticle removes a single leading "the"/"a"/"an" article, or the
// equivalent trailing ", The" sort-title form, case-insensitively.
func StripArticle(s string) string {
	trimmed := strings.TrimSpace(s)
	if stripped := leadingArticlePattern.ReplaceAllString(trimmed, ""); stripped != trimmed {
		return strings.TrimSpace(stripped)
	}
	return strings.TrimSpace(trailingArticlePattern.ReplaceAllString(trimmed, ""))
}

// StripSeriesSuffix removes trailing season/series decorations such as
// "(Season 2)", "- Season 1", ": The Complete Second Series", "- S01" and
// "- The Complete Series". Idempotent.
func StripSeriesSuffix(s string) string {
	result := strings.TrimSpace(s)
	for _, pattern := range seriesSuffixPatterns {
		result = strings.TrimSpace(pattern.ReplaceAllString(result, ""))
	}
	return result
}

// StripYearSuffix removes a trailing "(YYYY)" year decoration.
func StripYearSuffix(s string) string {
	return strings.TrimSpace(yearSuffixPattern.ReplaceAllString(strings.TrimSpace(s), ""))
}

// SearchTitle derives the catalog query form of a raw title: series suffix
// and year decoration removed.
func SearchTitle(s string) string {
	return StripYearSuffix(StripSeriesSuffix(s))
}

// Display cleans a raw vision title for presentation: separator runs collapse
// to single spaces, and single-case input (ALL CAPS or all lowercase) is
// re-cased as a title. Mixed-case input keeps its casing.
func Display(s string) string {
	cleaned := strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
	if cleaned == "" {
		return cleaned
	}
	hasUpper := strings.IndexFunc(cleaned, unicode.IsUpper) >= 0
	hasLower := strings.IndexFunc(cleaned, unicode.IsLower) >= 0
	if hasUpper && hasLower {
		return cleaned
	}
	return cases.Title(language.Und).String(strings.ToLower(cleaned))
}
