package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cadence/internal/analysis"
	"cadence/internal/assemble"
	"cadence/internal/config"
	"cadence/internal/generate"
	"cadence/internal/logging"
	"cadence/internal/media/aubio"
	"cadence/internal/plan"
	"cadence/internal/runstore"
	"cadence/internal/synth"
	"cadence/internal/workdir"
)

// Stage statuses recorded in the pipeline report.
const (
	StageSuccess = "success"
	StageError   = "error"
	StageSkipped = "skipped"
)

// StageReport records the outcome of one pipeline stage.
type StageReport struct {
	Stage           string  `json:"stage"`
	Status          string  `json:"status"`
	Error           string  `json:"error,omitempty"`
	SkippedReason   string  `json:"skipped_reason,omitempty"`
	Artifact        string  `json:"artifact,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Report is the pipeline_report.json artifact for one full run.
type Report struct {
	RunID      string        `json:"run_id"`
	AudioFile  string        `json:"audio_file"`
	Theme      string        `json:"theme"`
	Status     string        `json:"status"`
	OutputFile string        `json:"output_file,omitempty"`
	ReportFile string        `json:"report_file"`
	Stages     []StageReport `json:"stages"`
	StartedAt  string        `json:"started_at"`
	FinishedAt string        `json:"finished_at"`
}

// Params carries per-run inputs for the full pipeline.
type Params struct {
	AudioFile    string
	Theme        string
	Brand        string
	Execute      bool
	SkipAssemble bool
	OutputFile   string
	KeepTemp     bool
}

// Runner drives the four pipeline stages for one run, persisting status
// transitions to the run store and artifacts to a locked run directory.
type Runner struct {
	cfg      *config.Config
	store    *runstore.Store
	detector aubio.Detector
	client   synth.Client
	logger   *slog.Logger
}

// NewRunner constructs a runner with production collaborators.
func NewRunner(cfg *config.Config, store *runstore.Store, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		store:    store,
		detector: aubio.NewCLI(aubio.WithBinary(cfg.Analysis.AubioBin)),
		client:   synth.NewCLI(synth.WithBinary(cfg.Generation.SynthBin)),
		logger:   logging.NewComponentLogger(logger, "pipeline"),
	}
}

// WithDetector overrides the beat detector (primarily for tests).
func (r *Runner) WithDetector(detector aubio.Detector) *Runner {
	r.detector = detector
	return r
}

// WithSynthClient overrides the clip synthesis client (primarily for tests).
func (r *Runner) WithSynthClient(client synth.Client) *Runner {
	r.client = client
	return r
}

// Run executes analyze, plan, generate, and assemble for one audio track.
// The report is returned even when a stage fails.
func (r *Runner) Run(ctx context.Context, params Params) (*Report, error) {
	run, err := r.store.Create(ctx, params.AudioFile, params.Theme)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	logger := r.logger.With(logging.String(logging.FieldRunID, run.ID))

	dir, err := workdir.Acquire(r.cfg.Paths.WorkDir, run.ID)
	if err != nil {
		_ = r.store.MarkFailed(ctx, run.ID, err.Error())
		return nil, fmt.Errorf("acquire run directory: %w", err)
	}
	defer func() {
		_ = dir.Release()
	}()

	report := &Report{
		RunID:      run.ID,
		AudioFile:  params.AudioFile,
		Theme:      params.Theme,
		Status:     "success",
		ReportFile: dir.Path("pipeline_report.json"),
		StartedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	fail := func(stage string, started time.Time, stageErr error) (*Report, error) {
		report.Stages = append(report.Stages, StageReport{
			Stage:           stage,
			Status:          StageError,
			Error:           stageErr.Error(),
			DurationSeconds: elapsed(started),
		})
		report.Status = "error"
		report.FinishedAt = time.Now().UTC().Format(time.RFC3339)
		_ = r.store.MarkFailed(ctx, run.ID, stageErr.Error())
		_ = report.Save()
		logger.Error("pipeline stage failed",
			logging.Args(logging.String(logging.FieldStage, stage), logging.Error(stageErr))...)
		return report, stageErr
	}

	// Analyze.
	started := time.Now()
	if err := r.store.Transition(ctx, run.ID, runstore.StatusAnalyzing); err != nil {
		return fail("analyze", started, err)
	}
	extracted, err := analysis.NewExtractor(r.cfg, r.detector, logger).Extract(ctx, params.AudioFile)
	if err != nil {
		return fail("analyze", started, err)
	}
	analysisFile := dir.Path("audio_analysis.json")
	if err := extracted.Save(analysisFile); err != nil {
		return fail("analyze", started, err)
	}
	_ = r.store.SetArtifacts(ctx, run.ID, runstore.Artifacts{AnalysisFile: analysisFile})
	report.Stages = append(report.Stages, StageReport{
		Stage: "analyze", Status: StageSuccess, Artifact: analysisFile, DurationSeconds: elapsed(started),
	})

	// Plan.
	started = time.Now()
	if err := r.store.Transition(ctx, run.ID, runstore.StatusPlanned); err != nil {
		return fail("plan", started, err)
	}
	planParams := plan.ParamsFromConfig(r.cfg)
	planParams.Theme = params.Theme
	planParams.Brand = params.Brand
	built, err := plan.Build(extracted, planParams)
	if err != nil {
		return fail("plan", started, err)
	}
	planFile := dir.Path("music_plan.json")
	if err := built.Save(planFile); err != nil {
		return fail("plan", started, err)
	}
	_ = r.store.SetArtifacts(ctx, run.ID, runstore.Artifacts{PlanFile: planFile})
	report.Stages = append(report.Stages, StageReport{
		Stage: "plan", Status: StageSuccess, Artifact: planFile, DurationSeconds: elapsed(started),
	})

	// Generate.
	started = time.Now()
	if err := r.store.Transition(ctx, run.ID, runstore.StatusGenerating); err != nil {
		return fail("generate", started, err)
	}
	orchestrator := generate.New(r.cfg, r.client, logger, generate.Options{
		Execute:  params.Execute,
		Previews: r.cfg.Generation.Previews,
	})
	manifest, err := orchestrator.Run(ctx, built, planFile, dir.Root())
	if err != nil {
		return fail("generate", started, err)
	}
	manifestFile := dir.Path("generation_manifest.json")
	if err := manifest.Save(manifestFile); err != nil {
		return fail("generate", started, err)
	}
	_ = r.store.SetArtifacts(ctx, run.ID, runstore.Artifacts{ManifestFile: manifestFile})
	report.Stages = append(report.Stages, StageReport{
		Stage: "generate", Status: StageSuccess, Artifact: manifestFile, DurationSeconds: elapsed(started),
	})

	// Assemble, unless skipped.
	skippedReason := ""
	if params.SkipAssemble {
		skippedReason = "assembly disabled by caller"
	} else if !params.Execute {
		skippedReason = "generation was not executed"
	}
	if skippedReason != "" {
		report.Stages = append(report.Stages, StageReport{
			Stage: "assemble", Status: StageSkipped, SkippedReason: skippedReason,
		})
		if err := r.store.Transition(ctx, run.ID, runstore.StatusCompleted); err != nil {
			return fail("assemble", time.Now(), err)
		}
		report.FinishedAt = time.Now().UTC().Format(time.RFC3339)
		if err := report.Save(); err != nil {
			return nil, err
		}
		return report, nil
	}

	started = time.Now()
	if err := r.store.Transition(ctx, run.ID, runstore.StatusAssembling); err != nil {
		return fail("assemble", started, err)
	}
	outputFile := params.OutputFile
	if outputFile == "" {
		outputFile = dir.Path("music_video.mp4")
	}
	assembler := assemble.New(r.cfg, logger, assemble.Options{KeepTemp: params.KeepTemp})
	assemblyReport, err := assembler.Run(ctx, manifest, manifestFile, params.AudioFile, outputFile)
	if err != nil {
		return fail("assemble", started, err)
	}
	_ = r.store.SetArtifacts(ctx, run.ID, runstore.Artifacts{
		OutputFile: outputFile,
		ReportFile: assemblyReport.ReportFile,
	})
	report.OutputFile = outputFile
	report.Stages = append(report.Stages, StageReport{
		Stage: "assemble", Status: StageSuccess, Artifact: outputFile, DurationSeconds: elapsed(started),
	})

	if err := r.store.Transition(ctx, run.ID, runstore.StatusCompleted); err != nil {
		return fail("complete", time.Now(), err)
	}
	report.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	if err := report.Save(); err != nil {
		return nil, err
	}
	logger.Info("pipeline run completed",
		logging.Args(logging.String("output_file", report.OutputFile))...)
	return report, nil
}

// Save writes the pipeline report artifact.
func (r *Report) Save() error {
	payload, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal pipeline report: %w", err)
	}
	return os.WriteFile(r.ReportFile, payload, 0o644)
}

func elapsed(started time.Time) float64 {
	return float64(time.Since(started).Milliseconds()) / 1000
}
