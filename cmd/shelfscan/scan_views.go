package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"shelfscan/internal/scans"
	"shelfscan/internal/titles"
)

const displayTitleWidth = 40

func summarizeScan(scan *scans.Scan, items []*scans.Item) string {
	matched := 0
	for _, item := range items {
		if item.Confidence != scans.ConfidenceUnmatched {
			matched++
		}
	}
	return fmt.Sprintf("Scan %s: %s — %d identified, %d matched", scan.ID, scan.Status, len(items), matched)
}

// renderRows draws a rounded table. rightAligned lists 1-based column
// numbers whose cells hold numbers or currency; headers stay left-aligned.
func renderRows(header table.Row, rows []table.Row, rightAligned ...int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	tw.AppendRows(rows)
	if len(rightAligned) > 0 {
		configs := make([]table.ColumnConfig, 0, len(rightAligned))
		for _, column := range rightAligned {
			configs = append(configs, table.ColumnConfig{
				Number:      column,
				Align:       text.AlignRight,
				AlignHeader: text.AlignLeft,
			})
		}
		tw.SetColumnConfigs(configs)
	}
	return tw.Render()
}

func renderItemsTable(items []*scans.Item) string {
	rows := make([]table.Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, table.Row{
			strconv.FormatInt(item.ID, 10),
			strconv.Itoa(item.Position + 1),
			truncate(titles.Display(item.RawTitle), displayTitleWidth),
			truncate(displayTitle(item), displayTitleWidth),
			displayYear(item),
			string(item.Confidence),
			string(item.Source),
			yesNo(item.LibraryMatched),
		})
	}
	header := table.Row{"ID", "#", "Identified As", "Matched Title", "Year", "Conf", "Source", "Library"}
	return renderRows(header, rows, 1, 2, 5)
}

func displayTitle(item *scans.Item) string {
	if item.Confidence == scans.ConfidenceUnmatched {
		return "—"
	}
	title := item.Title
	if detail := itemDetail(item); detail != "" {
		title += " (" + detail + ")"
	}
	return title
}

func itemDetail(item *scans.Item) string {
	parts := make([]string, 0, 2)
	if item.Detail != "" {
		parts = append(parts, item.Detail)
	}
	if item.SeasonCount > 0 {
		parts = append(parts, fmt.Sprintf("%d seasons", item.SeasonCount))
	}
	return strings.Join(parts, ", ")
}

func displayYear(item *scans.Item) string {
	if item.Year > 0 {
		return strconv.Itoa(item.Year)
	}
	if item.RawYear > 0 {
		return strconv.Itoa(item.RawYear)
	}
	return ""
}

func truncate(value string, limit int) string {
	if limit <= 3 || len(value) <= limit {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
