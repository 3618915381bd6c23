package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cadence/internal/analysis"
	"cadence/internal/media/aubio"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var audioFile string
	var outputFile string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Extract beats, sections, and energy from an audio track",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			detector := aubio.NewCLI(aubio.WithBinary(cfg.Analysis.AubioBin))
			result, err := analysis.NewExtractor(cfg, detector, logger).Extract(cmd.Context(), audioFile)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outputFile)
			if target == "" {
				target = filepath.Join(filepath.Dir(audioFile), "audio_analysis.json")
			}
			if err := result.Save(target); err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Analyzed %s\n", audioFile)
			fmt.Fprintf(out, "  duration: %.2fs  bpm: %.1f  backend: %s\n", result.DurationSeconds, result.BPM, result.Backend)
			fmt.Fprintf(out, "  beats: %d  sections: %d  energy points: %d\n", len(result.Beats), len(result.Sections), len(result.EnergyCurve))
			for _, warning := range result.Warnings {
				fmt.Fprintf(out, "  warning: %s\n", warning)
			}
			fmt.Fprintf(out, "Wrote analysis to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&audioFile, "audio", "", "Audio file to analyze")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Analysis output path (default: audio_analysis.json beside the audio)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full analysis as JSON")
	_ = cmd.MarkFlagRequired("audio")
	return cmd
}
