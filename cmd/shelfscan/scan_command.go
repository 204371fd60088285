package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shelfscan/internal/pipeline"
	"shelfscan/internal/scans"
	"shelfscan/internal/services"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <photo>",
		Short: "Identify and enrich the media in a shelf photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read photo: %w", err)
			}

			pipe, _, err := ctx.buildPipeline()
			if err != nil {
				return err
			}
			task, err := pipe.StartScan(cmd.Context(), data, http.DetectContentType(data))
			if err != nil {
				return err
			}
			return followTask(cmd, task)
		},
	}
}

func newRescanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rescan <scan-id>",
		Short: "Re-run identification and enrichment on a stored photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, _, err := ctx.buildPipeline()
			if err != nil {
				return err
			}
			task, err := pipe.Rescan(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			return followTask(cmd, task)
		},
	}
}

func newReenrichCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reenrich <scan-id>",
		Short: "Re-run enrichment from the stored model response",
		Long: "Re-runs catalog matching against the scan's stored model response " +
			"without calling the vision model again. Useful after tuning match " +
			"thresholds or fixing catalog credentials.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, _, err := ctx.buildPipeline()
			if err != nil {
				return err
			}
			task, err := pipe.Reenrich(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			return followTask(cmd, task)
		},
	}
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	var title string
	var creator string

	cmd := &cobra.Command{
		Use:   "edit <item-id>",
		Short: "Correct an item's title and re-run its catalog match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil {
				return fmt.Errorf("item id must be numeric: %w", err)
			}
			pipe, _, err := ctx.buildPipeline()
			if err != nil {
				return err
			}
			item, err := pipe.EditItem(cmd.Context(), itemID, title, creator)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderItemsTable([]*scans.Item{item}))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Corrected title (required)")
	cmd.Flags().StringVar(&creator, "creator", "", "Corrected creator or director")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

// followTask streams lifecycle events to the terminal and renders the final
// result once the scan settles.
func followTask(cmd *cobra.Command, task *pipeline.Task) error {
	out := cmd.OutOrStdout()
	for event := range task.Events() {
		switch event.Type {
		case pipeline.EventCreated:
			fmt.Fprintf(out, "Scan %s created\n", event.ScanID)
		case pipeline.EventStatusChanged:
			fmt.Fprintf(out, "Scan %s: %s\n", event.ScanID, event.Status)
		case pipeline.EventFailed:
			fmt.Fprintf(out, "Scan %s failed: %s\n", event.ScanID, event.Message)
		}
	}

	scan, items, err := task.Wait(cmd.Context())
	if err != nil {
		if hint := retryHint(err, task.ScanID()); hint != "" {
			fmt.Fprintln(out, hint)
		}
		return err
	}
	fmt.Fprintln(out, summarizeScan(scan, items))
	if len(items) > 0 {
		fmt.Fprintln(out, renderItemsTable(items))
	}
	return nil
}

// retryHint suggests a rescan after a failure that is worth retrying.
// Configuration and validation failures need the user to change something
// first, so they get no hint.
func retryHint(err error, scanID string) string {
	if err == nil || scanID == "" || services.IsFatalToScan(err) {
		return ""
	}
	return "Retry with: shelfscan rescan " + scanID
}
