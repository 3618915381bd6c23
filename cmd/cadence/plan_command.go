package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cadence/internal/analysis"
	"cadence/internal/plan"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var analysisFile string
	var outputFile string
	var theme string
	var brand string
	var stylePreset string
	var seed int64
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a beat-aligned shot plan from an audio analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			extracted, err := analysis.Load(analysisFile)
			if err != nil {
				return err
			}

			params := plan.ParamsFromConfig(cfg)
			params.Theme = theme
			params.Brand = brand
			if strings.TrimSpace(stylePreset) != "" {
				params.StylePreset = stylePreset
			}
			if cmd.Flags().Changed("seed") {
				params.Seed = seed
			}

			built, err := plan.Build(extracted, params)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outputFile)
			if target == "" {
				target = filepath.Join(filepath.Dir(analysisFile), "music_plan.json")
			}
			if err := built.Save(target); err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, built)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Planned %d shots over %.2fs (%.1f BPM)\n",
				built.Summary.TotalShots, built.DurationSeconds, built.BPM)
			fmt.Fprintf(out, "  hero: %d  standard: %d  filler: %d\n",
				built.Summary.HeroShots, built.Summary.StandardShots, built.Summary.FillerShots)
			fmt.Fprintf(out, "Wrote plan to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&analysisFile, "analysis", "", "Audio analysis file produced by analyze")
	cmd.Flags().StringVar(&theme, "theme", "", "Creative theme for shot prompts")
	cmd.Flags().StringVar(&brand, "brand", "", "Optional brand clause appended to prompts")
	cmd.Flags().StringVar(&stylePreset, "style", "", "Style preset override")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Deterministic prompt sampling seed")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Plan output path (default: music_plan.json beside the analysis)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full plan as JSON")
	_ = cmd.MarkFlagRequired("analysis")
	_ = cmd.MarkFlagRequired("theme")
	return cmd
}
