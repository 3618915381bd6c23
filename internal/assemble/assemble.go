package assemble

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"cadence/internal/config"
	"cadence/internal/generate"
	"cadence/internal/logging"
	"cadence/internal/media/ffmpeg"
	"cadence/internal/media/ffprobe"
	"cadence/internal/services"
)

var inspect = ffprobe.Inspect

// Options tunes one assembly pass.
type Options struct {
	Resolution string
	FPS        int
	CRF        int
	MaxClips   int
	KeepTemp   bool
}

// Report is the companion artifact written next to the final video.
type Report struct {
	Status                string   `json:"status"`
	ManifestFile          string   `json:"manifest_file"`
	AudioFile             string   `json:"audio_file"`
	OutputFile            string   `json:"output_file"`
	ReportFile            string   `json:"report_file"`
	Resolution            string   `json:"resolution"`
	FPS                   int      `json:"fps"`
	ClipsUsed             []string `json:"clips_used"`
	NormalizedClipCount   int      `json:"normalized_clip_count"`
	AudioDurationSeconds  float64  `json:"audio_duration_seconds"`
	OutputDurationSeconds float64  `json:"output_duration_seconds"`
	TempDir               string   `json:"temp_dir"`
}

// Pipeline turns a generation manifest into one finished video synchronized
// to the source audio. Shots without a usable take are skipped; the video
// stream loops when the surviving clips run shorter than the audio.
type Pipeline struct {
	ffmpeg     *ffmpeg.Tool
	ffprobeBin string
	logger     *slog.Logger
	opts       Options
}

// New constructs a pipeline from configuration.
func New(cfg *config.Config, logger *slog.Logger, opts Options) *Pipeline {
	if opts.Resolution == "" {
		opts.Resolution = cfg.Assembly.Resolution
	}
	if opts.FPS <= 0 {
		opts.FPS = cfg.Assembly.FPS
	}
	if opts.CRF <= 0 {
		opts.CRF = cfg.Assembly.CRF
	}
	return &Pipeline{
		ffmpeg:     ffmpeg.New(ffmpeg.WithBinary(cfg.Assembly.FFmpegBin)),
		ffprobeBin: cfg.Analysis.FFprobeBin,
		logger:     logging.NewComponentLogger(logger, "assemble"),
		opts:       opts,
	}
}

// Run assembles the final video at outputFile and writes a companion report.
func (p *Pipeline) Run(ctx context.Context, manifest *generate.Manifest, manifestFile, audioFile, outputFile string) (*Report, error) {
	if _, err := os.Stat(audioFile); err != nil {
		return nil, services.Wrap(services.ErrAssembly, "assemble", "audio", "audio file not readable", err)
	}
	width, height, err := config.ParseResolution(p.opts.Resolution)
	if err != nil {
		return nil, services.Wrap(services.ErrAssembly, "assemble", "resolution", "", err)
	}

	clips := selectClips(manifest, p.opts.MaxClips)
	if len(clips) == 0 {
		return nil, services.Wrap(services.ErrAssembly, "assemble", "select clips", "no successful clips in manifest", nil)
	}
	p.logger.Info("assembling clips",
		logging.Args(logging.Int("clips", len(clips)), logging.String("resolution", p.opts.Resolution))...)

	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return nil, services.Wrap(services.ErrAssembly, "assemble", "output", "create output directory", err)
	}
	stamp := time.Now().UTC().Format("20060102-150405")
	tempDir := filepath.Join(filepath.Dir(outputFile), ".assemble_tmp_"+stamp)
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrAssembly, "assemble", "temp", "create temp directory", err)
	}
	cleanup := func() {
		if !p.opts.KeepTemp {
			_ = os.RemoveAll(tempDir)
		}
	}
	defer cleanup()

	normalized := make([]string, 0, len(clips))
	for index, clip := range clips {
		dest := filepath.Join(tempDir, fmt.Sprintf("clip_%03d.mp4", index+1))
		spec := ffmpeg.NormalizeSpec{
			Source: clip,
			Dest:   dest,
			Width:  width,
			Height: height,
			FPS:    p.opts.FPS,
			CRF:    p.opts.CRF,
		}
		if err := p.ffmpeg.Normalize(ctx, spec); err != nil {
			return nil, services.Wrap(services.ErrAssembly, "assemble", "normalize", clip, err)
		}
		normalized = append(normalized, dest)
	}

	listFile := filepath.Join(tempDir, "concat_list.txt")
	if err := ffmpeg.WriteConcatList(listFile, normalized); err != nil {
		return nil, services.Wrap(services.ErrAssembly, "assemble", "concat list", "", err)
	}
	concatVideo := filepath.Join(tempDir, "concat_video.mp4")
	if err := p.ffmpeg.Concat(ctx, listFile, concatVideo, p.opts.CRF); err != nil {
		return nil, services.Wrap(services.ErrAssembly, "assemble", "concat", "", err)
	}
	if err := p.ffmpeg.MuxLooped(ctx, concatVideo, audioFile, outputFile, p.opts.CRF); err != nil {
		return nil, services.Wrap(services.ErrAssembly, "assemble", "mux", "", err)
	}

	report := &Report{
		Status:              "success",
		ManifestFile:        manifestFile,
		AudioFile:           audioFile,
		OutputFile:          outputFile,
		ReportFile:          reportPath(outputFile),
		Resolution:          fmt.Sprintf("%dx%d", width, height),
		FPS:                 p.opts.FPS,
		ClipsUsed:           clips,
		NormalizedClipCount: len(normalized),
		TempDir:             tempDir,
	}
	report.AudioDurationSeconds = p.probeDuration(ctx, audioFile)
	report.OutputDurationSeconds = p.probeDuration(ctx, outputFile)
	if err := report.Save(); err != nil {
		return nil, services.Wrap(services.ErrAssembly, "assemble", "report", "", err)
	}
	return report, nil
}

// selectClips picks the best-take clip path per shot, preserving shot order.
func selectClips(manifest *generate.Manifest, maxClips int) []string {
	if manifest == nil {
		return nil
	}
	clips := make([]string, 0, len(manifest.Shots))
	for _, shot := range manifest.Shots {
		if best, ok := shot.BestTake(); ok {
			clips = append(clips, best.VideoFile)
		}
	}
	if maxClips > 0 && len(clips) > maxClips {
		clips = clips[:maxClips]
	}
	return clips
}

func (p *Pipeline) probeDuration(ctx context.Context, path string) float64 {
	result, err := inspect(ctx, p.ffprobeBin, path)
	if err != nil {
		p.logger.Warn("duration probe failed",
			logging.Args(logging.String("path", path), logging.Error(err))...)
		return 0
	}
	return math.Round(result.DurationSeconds()*10000) / 10000
}

// Save writes the report next to the output file.
func (r *Report) Save() error {
	payload, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(r.ReportFile, payload, 0o644)
}

func reportPath(outputFile string) string {
	ext := filepath.Ext(outputFile)
	return outputFile[:len(outputFile)-len(ext)] + ".assembly.json"
}
