package generate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cadence/internal/config"
	"cadence/internal/fileutil"
	"cadence/internal/logging"
	"cadence/internal/media/ffmpeg"
	"cadence/internal/media/ffprobe"
	"cadence/internal/plan"
	"cadence/internal/services"
	"cadence/internal/synth"
)

// Options tunes one generation pass.
type Options struct {
	Execute         bool
	MaxShots        int
	MaxTakesPerShot int
	TimeoutMinutes  int
	QualityDefault  string
	Previews        bool
	PreviewStills   int
}

// Orchestrator walks a plan shot by shot and requests takes from the clip
// synthesis client, one at a time. Take failures are recorded in the manifest
// and never abort the run.
type Orchestrator struct {
	client     synth.Client
	ffmpeg     *ffmpeg.Tool
	ffprobeBin string
	logger     *slog.Logger
	opts       Options
}

// New constructs an orchestrator from configuration.
func New(cfg *config.Config, client synth.Client, logger *slog.Logger, opts Options) *Orchestrator {
	if opts.QualityDefault == "" {
		opts.QualityDefault = cfg.Generation.QualityDefault
	}
	if opts.PreviewStills <= 0 {
		opts.PreviewStills = cfg.Generation.PreviewStills
	}
	if opts.TimeoutMinutes == 0 {
		opts.TimeoutMinutes = cfg.Generation.TimeoutMinutes
	}
	return &Orchestrator{
		client:     client,
		ffmpeg:     ffmpeg.New(ffmpeg.WithBinary(cfg.Assembly.FFmpegBin)),
		ffprobeBin: cfg.Analysis.FFprobeBin,
		logger:     logging.NewComponentLogger(logger, "generate"),
		opts:       opts,
	}
}

// Run produces a Manifest covering every shot in the plan. Without Execute it
// records each take as planned and renders nothing.
func (o *Orchestrator) Run(ctx context.Context, p *plan.Plan, planFile, outputRoot string) (*Manifest, error) {
	if p == nil || len(p.Shots) == 0 {
		return nil, services.Wrap(services.ErrValidation, "generate", "load plan", "plan has no shots", nil)
	}
	if o.opts.Execute && o.client == nil {
		return nil, services.Wrap(services.ErrConfiguration, "generate", "synthesizer", "no synthesis client configured", nil)
	}

	shots := p.Shots
	if o.opts.MaxShots > 0 && len(shots) > o.opts.MaxShots {
		shots = shots[:o.opts.MaxShots]
	}

	manifest := &Manifest{
		Status:      "success",
		PlanFile:    planFile,
		Executed:    o.opts.Execute,
		OutputRoot:  outputRoot,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, shot := range shots {
		result := ShotResult{
			ShotID:      shot.ID,
			StartSec:    shot.StartSec,
			EndSec:      shot.EndSec,
			DurationSec: shot.DurationSec,
			Priority:    shot.Priority,
			Prompt:      shot.Prompt,
		}
		takes := o.takesFor(shot)
		for index := 1; index <= takes; index++ {
			manifest.Summary.TotalTakes++
			take := o.runTake(ctx, p, shot, index, outputRoot)
			switch take.Status {
			case TakeSuccess:
				manifest.Summary.SuccessfulTakes++
			case TakeError:
				manifest.Summary.FailedTakes++
			}
			result.Takes = append(result.Takes, take)
		}
		manifest.Shots = append(manifest.Shots, result)

		if _, ok := result.BestTake(); !ok && o.opts.Execute {
			o.logger.Warn("shot exhausted all takes",
				logging.Args(logging.String(logging.FieldShotID, shot.ID), logging.Int("takes", takes))...)
		}
	}

	manifest.Summary.TotalShots = len(manifest.Shots)
	if o.opts.Execute && manifest.Summary.TotalTakes > 0 && manifest.Summary.SuccessfulTakes == 0 {
		manifest.Status = "error"
	}
	return manifest, nil
}

func (o *Orchestrator) takesFor(shot plan.Shot) int {
	takes := shot.Takes
	if takes < 1 {
		takes = 1
	}
	if o.opts.MaxTakesPerShot > 0 && takes > o.opts.MaxTakesPerShot {
		takes = o.opts.MaxTakesPerShot
	}
	return takes
}

func (o *Orchestrator) runTake(ctx context.Context, p *plan.Plan, shot plan.Shot, index int, outputRoot string) Take {
	take := Take{
		ID:     fmt.Sprintf("%s_take%02d", shot.ID, index),
		Status: TakePlanned,
	}
	if !o.opts.Execute {
		return take
	}

	takeDir := filepath.Join(outputRoot, "takes", shot.ID, fmt.Sprintf("take_%02d", index))
	if err := os.MkdirAll(takeDir, 0o755); err != nil {
		take.Status = TakeError
		take.Error = fmt.Sprintf("create take directory: %v", err)
		return take
	}

	quality := shot.QualityHint
	if quality == "" {
		quality = o.opts.QualityDefault
	}
	request := synth.Request{
		Prompt:          shot.Prompt,
		NegativePrompt:  shot.NegativePrompt,
		Resolution:      p.Resolution,
		DurationSeconds: shot.DurationSec,
		Quality:         quality,
		OutputDir:       takeDir,
	}

	renderCtx := ctx
	if o.opts.TimeoutMinutes > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, time.Duration(o.opts.TimeoutMinutes)*time.Minute)
		defer cancel()
	}

	o.logger.Info("rendering take",
		logging.Args(
			logging.String(logging.FieldShotID, shot.ID),
			logging.String(logging.FieldTakeID, take.ID),
			logging.Float64("duration_sec", shot.DurationSec),
		)...)
	err := o.client.Synthesize(renderCtx, request, func(update synth.ProgressUpdate) {
		o.logger.Debug("render progress",
			logging.Args(
				logging.String(logging.FieldTakeID, take.ID),
				logging.Float64("percent", update.Percent),
				logging.String("render_stage", update.Stage),
			)...)
	})
	if err != nil {
		take.Status = TakeError
		take.Error = err.Error()
		o.logger.Warn("take failed",
			logging.Args(logging.String(logging.FieldTakeID, take.ID), logging.Error(err))...)
		return take
	}

	videoFile := fileutil.FindLatestMP4(takeDir)
	if videoFile == "" {
		take.Status = TakeError
		take.Error = "render reported success but produced no output file"
		return take
	}
	// Synthesizers name their outputs freely; pin the manifest to a stable name.
	canonical := filepath.Join(takeDir, take.ID+".mp4")
	if videoFile != canonical {
		if err := fileutil.CopyFileVerified(videoFile, canonical); err == nil {
			videoFile = canonical
		}
	}
	score, err := QualityScore(videoFile)
	if err != nil {
		take.Status = TakeError
		take.Error = err.Error()
		return take
	}
	take.Status = TakeSuccess
	take.VideoFile = videoFile
	take.QualityScore = &score

	if o.opts.Previews {
		take.Preview = o.generatePreviews(ctx, videoFile, take.ID, filepath.Join(outputRoot, "previews"))
	}
	return take
}

// generatePreviews writes still frames and a looped GIF for a rendered take.
// Failures here never change the take status.
func (o *Orchestrator) generatePreviews(ctx context.Context, videoFile, takeID, previewDir string) *Preview {
	if err := os.MkdirAll(previewDir, 0o755); err != nil {
		return &Preview{Status: "skipped", Reason: err.Error()}
	}
	if !o.ffmpeg.Available() {
		return &Preview{Status: "skipped", Reason: "ffmpeg not found"}
	}

	frameCount := ffprobe.FrameCount(ctx, o.ffprobeBin, videoFile)
	selectExpr := ffmpeg.StillSelect(frameCount, o.opts.PreviewStills)
	stillPattern := filepath.Join(previewDir, takeID+"_preview_%02d.png")
	gifPath := filepath.Join(previewDir, takeID+"_preview.gif")

	preview := &Preview{Status: "success"}
	if err := o.ffmpeg.ExtractStills(ctx, videoFile, stillPattern, selectExpr); err != nil {
		preview.Status = "partial"
		preview.Reason = err.Error()
	}
	if err := o.ffmpeg.LoopPreview(ctx, videoFile, gifPath); err != nil {
		preview.Status = "partial"
		preview.Reason = err.Error()
	}

	stills, _ := filepath.Glob(filepath.Join(previewDir, takeID+"_preview_*.png"))
	preview.StillPaths = stills
	if _, err := os.Stat(gifPath); err == nil {
		preview.GIFPath = gifPath
	}
	return preview
}
