package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cadence/internal/deps"
	"cadence/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var audioFile string
	var theme string
	var brand string
	var outputFile string
	var execute bool
	var skipAssemble bool
	var keepTemp bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full analyze, plan, generate, assemble pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			missing := deps.MissingRequired(deps.CheckBinaries(deps.Requirements(cfg, execute)))
			if len(missing) > 0 {
				return fmt.Errorf("missing required tools: %s (run `cadence status` for details)", strings.Join(missing, ", "))
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runner := pipeline.NewRunner(cfg, store, logger)
			report, runErr := runner.Run(cmd.Context(), pipeline.Params{
				AudioFile:    audioFile,
				Theme:        theme,
				Brand:        brand,
				Execute:      execute,
				SkipAssemble: skipAssemble,
				OutputFile:   outputFile,
				KeepTemp:     keepTemp,
			})
			if report == nil {
				return runErr
			}

			if jsonOut {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
				return runErr
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Run %s\n", report.RunID)
			for _, stage := range report.Stages {
				kind := statusOK
				message := stage.Artifact
				switch stage.Status {
				case pipeline.StageError:
					kind = statusError
					message = stage.Error
				case pipeline.StageSkipped:
					kind = statusWarn
					message = stage.SkippedReason
				}
				fmt.Fprintln(out, renderStatusLine(stage.Stage, kind, message, colorize))
			}
			if report.OutputFile != "" {
				fmt.Fprintf(out, "Final video: %s\n", report.OutputFile)
			}
			fmt.Fprintf(out, "Report: %s\n", report.ReportFile)
			return runErr
		},
	}

	cmd.Flags().StringVar(&audioFile, "audio", "", "Audio track to build a video for")
	cmd.Flags().StringVar(&theme, "theme", "", "Creative theme for shot prompts")
	cmd.Flags().StringVar(&brand, "brand", "", "Optional brand clause appended to prompts")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Final video path (default: music_video.mp4 in the run directory)")
	cmd.Flags().BoolVar(&execute, "execute", false, "Actually render takes instead of a planning dry run")
	cmd.Flags().BoolVar(&skipAssemble, "skip-assemble", false, "Stop after generation without assembling the video")
	cmd.Flags().BoolVar(&keepTemp, "keep-temp", false, "Keep the assembly scratch directory")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the pipeline report as JSON")
	_ = cmd.MarkFlagRequired("audio")
	_ = cmd.MarkFlagRequired("theme")
	return cmd
}
