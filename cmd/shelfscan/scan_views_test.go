package main

import (
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"

	"shelfscan/internal/scans"
)

func TestSummarizeScanCountsMatches(t *testing.T) {
	scan := &scans.Scan{ID: "abc", Status: scans.StatusComplete}
	items := []*scans.Item{
		{Confidence: scans.ConfidenceHigh},
		{Confidence: scans.ConfidenceLow},
		{Confidence: scans.ConfidenceUnmatched},
	}
	got := summarizeScan(scan, items)
	if !strings.Contains(got, "3 identified, 2 matched") {
		t.Fatalf("summary = %q", got)
	}
}

func TestRenderItemsTableMarksUnmatched(t *testing.T) {
	items := []*scans.Item{
		{ID: 7, Position: 0, RawTitle: "Heat", Title: "Heat", Year: 1995,
			Confidence: scans.ConfidenceHigh, Source: scans.SourceCatalog},
		{ID: 8, Position: 1, RawTitle: "Mystery Album",
			Confidence: scans.ConfidenceUnmatched, Source: scans.SourceNone},
	}
	rendered := renderItemsTable(items)
	if !strings.Contains(rendered, "Heat") {
		t.Fatalf("rendered table missing matched title:\n%s", rendered)
	}
	if !strings.Contains(rendered, "—") {
		t.Fatalf("unmatched row must show a placeholder title:\n%s", rendered)
	}
}

func TestRenderItemsTableCasesRawTitles(t *testing.T) {
	items := []*scans.Item{
		{ID: 1, Position: 0, RawTitle: "THE MATRIX", Title: "The Matrix", Year: 1999,
			Confidence: scans.ConfidenceHigh, Source: scans.SourceCatalog},
	}
	rendered := renderItemsTable(items)
	if !strings.Contains(rendered, "The Matrix") {
		t.Fatalf("rendered table missing cased title:\n%s", rendered)
	}
	if strings.Contains(rendered, "THE MATRIX") {
		t.Fatalf("raw shouting case should be re-cased for display:\n%s", rendered)
	}
}

func TestRenderRowsRightAlignsRequestedColumns(t *testing.T) {
	rendered := renderRows(
		table.Row{"ID", "Name"},
		[]table.Row{{"7", "short"}, {"1234", "longer"}},
		1,
	)
	if !strings.Contains(rendered, "    7 ") {
		t.Fatalf("column 1 should right-align narrow values:\n%s", rendered)
	}
	if strings.Contains(rendered, " 7    ") {
		t.Fatalf("column 1 rendered left-aligned:\n%s", rendered)
	}
}

func TestTruncateKeepsShortValues(t *testing.T) {
	if got := truncate("Heat", 10); got != "Heat" {
		t.Fatalf("truncate = %q", got)
	}
	long := strings.Repeat("a", 50)
	got := truncate(long, 10)
	if len(got) != 10 || !strings.HasSuffix(got, "...") {
		t.Fatalf("truncate = %q", got)
	}
}
