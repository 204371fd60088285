package titles

import "testing"

func TestEditDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
	}
	for _, tc := range cases {
		if got := EditDistance(tc.a, tc.b); got != tc.want {
			t.Fatalf("EditDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSimilarityBounds(t *testing.T) {
	pairs := [][2]string{
		{"", ""},
		{"abc", "xyz"},
		{"the matrix", "matrix"},
		{"a", "abcdefghij"},
		{"breaking bad", "breaking bad"},
	}
	for _, pair := range pairs {
		got := Similarity(pair[0], pair[1])
		if got < 0 || got > 1 {
			t.Fatalf("Similarity(%q, %q) = %f out of [0, 1]", pair[0], pair[1], got)
		}
	}
	if got := Similarity("", ""); got != 1 {
		t.Fatalf("Similarity of two empty strings = %f, want 1", got)
	}
	if got := Similarity("heat", "heat"); got != 1 {
		t.Fatalf("Similarity of identical strings = %f, want 1", got)
	}
}

func TestScoreSeasonSuffixVariantWins(t *testing.T) {
	// The stripped variant must beat the raw comparison when the query
	// carries a season decoration the catalog name never has.
	raw := Similarity("breaking bad - season 1", "breaking bad")
	score := Score("Breaking Bad - Season 1", "Breaking Bad", 2008, 2008, DefaultYearBonus)
	if score <= raw {
		t.Fatalf("stripped-variant score %f should exceed raw similarity %f", score, raw)
	}
	if score < 0.85 {
		t.Fatalf("expected high-confidence score, got %f", score)
	}
}

func TestScoreSortTitleArticle(t *testing.T) {
	score := Score("The Avengers", "Avengers, The", 2012, 2012, DefaultYearBonus)
	if score < 0.85 {
		t.Fatalf("article-normalized score = %f, want >= 0.85", score)
	}
}

func TestScoreYearBonusClamped(t *testing.T) {
	with := Score("Heat", "Heat", 1995, 1995, DefaultYearBonus)
	if with != 1 {
		t.Fatalf("exact match with year bonus = %f, want clamped 1", with)
	}
	without := Score("Heat", "Heat", 1995, 1996, DefaultYearBonus)
	if without != 1 {
		t.Fatalf("exact title match = %f, want 1", without)
	}
	mismatch := Score("Heat", "Heart", 0, 0, DefaultYearBonus)
	if mismatch >= 1 || mismatch <= 0 {
		t.Fatalf("partial match score = %f, want inside (0, 1)", mismatch)
	}
}
