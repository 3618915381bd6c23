package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded pipeline runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					string(run.Status),
					run.Theme,
					run.AudioFile,
					formatRunTime(run.CreatedAt),
				})
			}
			headers := []string{"ID", "Status", "Theme", "Audio", "Created"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print runs as JSON")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, run)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:     %s\n", run.ID)
			fmt.Fprintf(out, "Status:  %s\n", run.Status)
			fmt.Fprintf(out, "Theme:   %s\n", run.Theme)
			fmt.Fprintf(out, "Audio:   %s\n", run.AudioFile)
			fmt.Fprintf(out, "Created: %s\n", formatRunTime(run.CreatedAt))
			fmt.Fprintf(out, "Updated: %s\n", formatRunTime(run.UpdatedAt))
			if run.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:   %s\n", run.ErrorMessage)
			}
			artifacts := []struct {
				label string
				path  string
			}{
				{"Analysis", run.AnalysisFile},
				{"Plan", run.PlanFile},
				{"Manifest", run.ManifestFile},
				{"Video", run.OutputFile},
				{"Report", run.ReportFile},
			}
			for _, artifact := range artifacts {
				if artifact.path == "" {
					continue
				}
				fmt.Fprintf(out, "%-9s %s\n", artifact.label+":", artifact.path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run as JSON")
	return cmd
}
