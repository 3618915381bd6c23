package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cadence/internal/assemble"
	"cadence/internal/generate"
)

func newAssembleCommand(ctx *commandContext) *cobra.Command {
	var audioFile string
	var manifestFile string
	var outputFile string
	var resolution string
	var fps int
	var crf int
	var maxClips int
	var keepTemp bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Assemble the best takes and the audio track into the final video",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			manifest, err := generate.Load(manifestFile)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outputFile)
			if target == "" {
				target = filepath.Join(filepath.Dir(manifestFile), "music_video.mp4")
			}

			pipeline := assemble.New(cfg, logger, assemble.Options{
				Resolution: resolution,
				FPS:        fps,
				CRF:        crf,
				MaxClips:   maxClips,
				KeepTemp:   keepTemp,
			})
			report, err := pipeline.Run(cmd.Context(), manifest, manifestFile, audioFile, target)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Assembled %d clips into %s\n", len(report.ClipsUsed), report.OutputFile)
			fmt.Fprintf(out, "  audio: %s  output: %s\n",
				formatSeconds(report.AudioDurationSeconds), formatSeconds(report.OutputDurationSeconds))
			fmt.Fprintf(out, "Wrote report to %s\n", report.ReportFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&audioFile, "audio", "", "Audio track to mux under the video")
	cmd.Flags().StringVar(&manifestFile, "manifest", "", "Generation manifest file")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Final video path (default: music_video.mp4 beside the manifest)")
	cmd.Flags().StringVar(&resolution, "resolution", "", "Output resolution override, e.g. 1280x720")
	cmd.Flags().IntVar(&fps, "fps", 0, "Output frame rate override")
	cmd.Flags().IntVar(&crf, "crf", 0, "x264 CRF override")
	cmd.Flags().IntVar(&maxClips, "max-clips", 0, "Limit the number of clips used (0 for all)")
	cmd.Flags().BoolVar(&keepTemp, "keep-temp", false, "Keep the temporary normalization directory")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the assembly report as JSON")
	_ = cmd.MarkFlagRequired("audio")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}
