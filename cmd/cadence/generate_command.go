package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cadence/internal/deps"
	"cadence/internal/generate"
	"cadence/internal/plan"
	"cadence/internal/synth"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var planFile string
	var outputRoot string
	var manifestFile string
	var execute bool
	var maxShots int
	var maxTakes int
	var timeoutMinutes int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render takes for every planned shot via the clip synthesizer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			if execute {
				missing := deps.MissingRequired(deps.CheckBinaries(deps.Requirements(cfg, true)))
				if len(missing) > 0 {
					return fmt.Errorf("missing required tools: %s (run `cadence status` for details)", strings.Join(missing, ", "))
				}
			}

			built, err := plan.Load(planFile)
			if err != nil {
				return err
			}

			root := strings.TrimSpace(outputRoot)
			if root == "" {
				root = filepath.Dir(planFile)
			}

			client := synth.NewCLI(synth.WithBinary(cfg.Generation.SynthBin))
			orchestrator := generate.New(cfg, client, logger, generate.Options{
				Execute:         execute,
				MaxShots:        maxShots,
				MaxTakesPerShot: maxTakes,
				TimeoutMinutes:  timeoutMinutes,
				Previews:        cfg.Generation.Previews,
			})
			manifest, err := orchestrator.Run(cmd.Context(), built, planFile, root)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(manifestFile)
			if target == "" {
				target = filepath.Join(root, "generation_manifest.json")
			}
			if err := manifest.Save(target); err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, manifest)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generation %s: %d shots, %d takes (%d ok, %d failed), executed: %s\n",
				manifest.Status,
				manifest.Summary.TotalShots,
				manifest.Summary.TotalTakes,
				manifest.Summary.SuccessfulTakes,
				manifest.Summary.FailedTakes,
				yesNo(manifest.Executed))
			fmt.Fprintf(out, "Wrote manifest to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&planFile, "plan", "", "Shot plan file produced by plan")
	cmd.Flags().StringVar(&outputRoot, "output-root", "", "Directory for rendered takes (default: plan directory)")
	cmd.Flags().StringVar(&manifestFile, "manifest", "", "Manifest output path (default: generation_manifest.json under the output root)")
	cmd.Flags().BoolVar(&execute, "execute", false, "Actually invoke the synthesizer instead of recording planned takes")
	cmd.Flags().IntVar(&maxShots, "max-shots", 0, "Limit generation to the first N shots (0 for all)")
	cmd.Flags().IntVar(&maxTakes, "max-takes-per-shot", 0, "Cap takes per shot (0 for the planned count)")
	cmd.Flags().IntVar(&timeoutMinutes, "timeout-minutes", 0, "Per-take timeout in minutes (0 for the configured default)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full manifest as JSON")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}
