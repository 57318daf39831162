package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"codeanon/internal/config"
	"codeanon/internal/manifest"
)

func newRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs <dest>",
		Short: "List previous anonymization runs recorded in a destination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			destPath, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve destination: %w", err)
			}
			if _, err := os.Stat(filepath.Join(destPath, manifest.FileName)); err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("no run manifest found in %s", destPath)
				}
				return fmt.Errorf("check manifest: %w", err)
			}

			store, err := manifest.Open(destPath)
			if err != nil {
				return fmt.Errorf("open manifest: %w", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				finished := "-"
				if !run.FinishedAt.IsZero() {
					finished = run.FinishedAt.Local().Format("2006-01-02 15:04:05")
				}
				errs := run.Totals.ReadErrors + run.Totals.WriteErrors + run.Totals.BadArchives
				rows = append(rows, []string{
					shortID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					finished,
					strconv.Itoa(run.Totals.Processed),
					strconv.Itoa(run.Totals.Degraded),
					strconv.Itoa(run.Totals.Duplicates),
					strconv.Itoa(errs),
				})
			}

			headers := []string{"Run", "Started", "Finished", "Clean", "Degraded", "Dupes", "Errors"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
