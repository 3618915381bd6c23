package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cadence/internal/deps"
	"cadence/internal/runstore"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show external tool availability and run history health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Config file", statusInfo, ctx.configPath, colorize))
			fmt.Fprintln(out, renderStatusLine("Work directory", statusInfo, cfg.Paths.WorkDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Log directory", statusInfo, cfg.Paths.LogDir, colorize))
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg, true))
			for _, status := range statuses {
				kind := statusOK
				message := status.Command
				if !status.Available {
					message = status.Detail
					if status.Optional {
						kind = statusWarn
					} else {
						kind = statusError
					}
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
			}
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				fmt.Fprintln(out, renderStatusLine("Preflight", statusError, "required tools missing; rendering will fail", colorize))
			}
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("Runs", colorize) {
				fmt.Fprintln(out, line)
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			runs, err := store.List(cmd.Context(), 0)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, renderStatusLine("Recorded runs", statusInfo, "none", colorize))
				return nil
			}
			counts := map[runstore.Status]int{}
			for _, run := range runs {
				counts[run.Status]++
			}
			fmt.Fprintln(out, renderStatusLine("Recorded runs", statusInfo, fmt.Sprintf("%d", len(runs)), colorize))
			if failed := counts[runstore.StatusFailed]; failed > 0 {
				fmt.Fprintln(out, renderStatusLine("Failed runs", statusWarn, fmt.Sprintf("%d", failed), colorize))
			}
			if completed := counts[runstore.StatusCompleted]; completed > 0 {
				fmt.Fprintln(out, renderStatusLine("Completed runs", statusOK, fmt.Sprintf("%d", completed), colorize))
			}
			latest := runs[0]
			fmt.Fprintln(out, renderStatusLine("Latest run", statusInfo,
				fmt.Sprintf("%s (%s)", shortID(latest.ID), latest.Status), colorize))
			return nil
		},
	}
	return cmd
}
