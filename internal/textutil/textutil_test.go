package textutil

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"The Lord of the Rings: The Two Towers", "the lord of the rings the two towers"},
		{"WALL-E", "wall e"},
		{"  Spaced   Out!  ", "spaced out"},
		{"", ""},
		{"***", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.input); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeCompact(t *testing.T) {
	if got := NormalizeCompact("WALL-E"); got != "walle" {
		t.Fatalf("NormalizeCompact = %q, want walle", got)
	}
}
