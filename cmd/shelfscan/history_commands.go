package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"shelfscan/internal/scans"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse past scans",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryDeleteCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			entries, err := store.ListScans(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No scans recorded")
				return nil
			}

			rows := make([]table.Row, 0, len(entries))
			for _, scan := range entries {
				rows = append(rows, table.Row{
					scan.ID,
					string(scan.Status),
					scan.ModelID,
					scan.CreatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(out, renderRows(table.Row{"Scan", "Status", "Model", "Created"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum scans to show (0 for all)")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var showRaw bool

	cmd := &cobra.Command{
		Use:   "show <scan-id>",
		Short: "Show one scan with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			scanID := strings.TrimSpace(args[0])
			scan, err := store.GetScan(cmd.Context(), scanID)
			if err != nil {
				return err
			}
			items, err := store.ItemsForScan(cmd.Context(), scanID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scan:    %s\n", scan.ID)
			fmt.Fprintf(out, "Status:  %s\n", scan.Status)
			fmt.Fprintf(out, "Model:   %s\n", scan.ModelID)
			fmt.Fprintf(out, "Created: %s\n", scan.CreatedAt.Local().Format(time.DateTime))
			if scan.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:   %s\n", scan.ErrorMessage)
			}
			if len(items) > 0 {
				fmt.Fprintln(out, renderItemsTable(items))
			} else {
				fmt.Fprintln(out, "No items recorded")
			}
			if showRaw && scan.RawModelOutput != "" {
				fmt.Fprintln(out, "Raw model response:")
				fmt.Fprintln(out, scan.RawModelOutput)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showRaw, "raw", false, "Include the stored model response")
	return cmd
}

func newHistoryDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <scan-id>",
		Short: "Delete a scan and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			scanID := strings.TrimSpace(args[0])
			if err := store.DeleteScan(cmd.Context(), scanID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted scan %s\n", scanID)
			return nil
		},
	}
}

func newUsageCommand(ctx *commandContext) *cobra.Command {
	var scanID string

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show model token usage and cost",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if id := strings.TrimSpace(scanID); id != "" {
				records, err := store.UsageForScan(cmd.Context(), id)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(out, "No usage recorded for scan")
					return nil
				}
				fmt.Fprintln(out, renderUsageTable(records))
				return nil
			}

			total, err := store.TotalCost(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Total recorded cost: $%.4f\n", total)
			return nil
		},
	}

	cmd.Flags().StringVar(&scanID, "scan", "", "Show the ledger for one scan")
	return cmd
}

func renderUsageTable(records []*scans.UsageRecord) string {
	rows := make([]table.Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, table.Row{
			record.Model,
			fmt.Sprintf("%d", record.PromptTokens),
			fmt.Sprintf("%d", record.CompletionTokens),
			fmt.Sprintf("%d", record.TotalTokens),
			fmt.Sprintf("$%.4f", record.Cost),
			record.CreatedAt.Local().Format(time.DateTime),
		})
	}
	header := table.Row{"Model", "Prompt", "Completion", "Total", "Cost", "When"}
	return renderRows(header, rows, 2, 3, 4, 5)
}
