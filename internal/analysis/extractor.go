package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"

	"cadence/internal/config"
	"cadence/internal/logging"
	"cadence/internal/media/aubio"
	"cadence/internal/media/ffprobe"
	"cadence/internal/services"
)

var (
	inspect   = ffprobe.Inspect
	rmsLevels = ffprobe.RMSLevels
)

// Extractor turns an audio file into an Analysis, degrading gracefully when
// precise beat detection is unavailable.
type Extractor struct {
	ffprobeBin        string
	detector          aubio.Detector
	minSectionSeconds float64
	maxEnergyPoints   int
	logger            *slog.Logger
}

// NewExtractor builds an extractor from configuration. The detector may be
// nil, in which case the synthetic beat grid is always used.
func NewExtractor(cfg *config.Config, detector aubio.Detector, logger *slog.Logger) *Extractor {
	return &Extractor{
		ffprobeBin:        cfg.Analysis.FFprobeBin,
		detector:          detector,
		minSectionSeconds: cfg.Analysis.MinSectionSeconds,
		maxEnergyPoints:   cfg.Analysis.MaxEnergyPoints,
		logger:            logging.NewComponentLogger(logger, "analyze"),
	}
}

// Extract probes the audio container and derives the beat grid, sections, and
// energy curve. Probe failure is fatal; detector failure degrades to the
// fallback grid with a recorded warning.
func (e *Extractor) Extract(ctx context.Context, audioPath string) (*Analysis, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, services.Wrap(services.ErrAnalysis, "analyze", "stat", "audio file not readable", err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrAnalysis, "analyze", "stat", fmt.Sprintf("audio path is a directory: %s", audioPath), nil)
	}

	probe, err := inspect(ctx, e.ffprobeBin, audioPath)
	if err != nil {
		return nil, services.Wrap(services.ErrAnalysis, "analyze", "probe", "", err)
	}
	duration := probe.DurationSeconds()
	if duration <= 0 {
		return nil, services.Wrap(services.ErrAnalysis, "analyze", "probe",
			fmt.Sprintf("could not determine audio duration for %s", audioPath), nil)
	}

	result := &Analysis{
		AudioFile:       audioPath,
		DurationSeconds: round4(duration),
	}
	if stream, ok := probe.FirstAudioStream(); ok {
		result.Probe = Probe{
			CodecName:    stream.CodecName,
			SampleRateHz: probe.SampleRateHz(),
			Channels:     stream.Channels,
		}
	}

	e.detectBeats(ctx, audioPath, duration, result)
	result.Downbeats = everyFourth(result.Beats)
	result.Sections = buildSections(duration, result.Beats, e.minSectionSeconds)
	e.sampleEnergy(ctx, audioPath, duration, result)

	if err := result.Validate(); err != nil {
		return nil, services.Wrap(services.ErrAnalysis, "analyze", "validate", "", err)
	}

	e.logger.Info("analysis complete",
		logging.String("backend", result.Backend),
		logging.Float64("bpm", result.BPM),
		logging.Int("beats", len(result.Beats)),
		logging.Int("sections", len(result.Sections)),
		logging.Int("warnings", len(result.Warnings)))
	return result, nil
}

func (e *Extractor) detectBeats(ctx context.Context, audioPath string, duration float64, result *Analysis) {
	if e.detector == nil || !e.detector.Available() {
		e.applyFallback(result, duration, "beat detector unavailable; used fallback beat grid")
		return
	}

	detection, err := e.detector.Detect(ctx, audioPath)
	if err != nil {
		e.applyFallback(result, duration, fmt.Sprintf("beat detection failed; used fallback beat grid (%v)", err))
		return
	}

	beats := clipRound(detection.Beats, duration)
	if len(beats) < 4 {
		e.applyFallback(result, duration, "beat tracking found too few beats; used fallback beat grid")
		return
	}

	raw := detection.BPM
	if raw <= 0 {
		raw = fallbackBPM
	}
	result.Backend = BackendAubio
	result.Beats = beats
	result.BPM = round3(inferBPM(beats, raw))
}

func (e *Extractor) applyFallback(result *Analysis, duration float64, warning string) {
	bpm, beats := fallbackBeats(duration)
	result.Backend = BackendFallback
	result.BPM = bpm
	result.Beats = beats
	result.Warnings = append(result.Warnings, warning)
	e.logger.Warn("degraded analysis", logging.String("reason", warning))
}

func (e *Extractor) sampleEnergy(ctx context.Context, audioPath string, duration float64, result *Analysis) {
	zero := []EnergyPoint{{TimeSec: 0, Energy: 0}}
	if result.Backend != BackendAubio {
		result.EnergyCurve = zero
		return
	}

	samples, err := rmsLevels(ctx, e.ffprobeBin, audioPath)
	if err != nil || len(samples) == 0 {
		result.EnergyCurve = zero
		result.Warnings = append(result.Warnings, "energy sampling unavailable; emitted zero-energy placeholder")
		return
	}

	stride := 1
	if e.maxEnergyPoints > 0 && len(samples) > e.maxEnergyPoints {
		stride = int(math.Ceil(float64(len(samples)) / float64(e.maxEnergyPoints)))
	}
	curve := make([]EnergyPoint, 0, e.maxEnergyPoints)
	for i := 0; i < len(samples); i += stride {
		if samples[i].TimeSec > duration {
			continue
		}
		curve = append(curve, EnergyPoint{
			TimeSec: round4(samples[i].TimeSec),
			Energy:  round6(samples[i].Level),
		})
	}
	if len(curve) == 0 {
		curve = zero
	}
	result.EnergyCurve = curve
}

func round3(value float64) float64 {
	return math.Round(value*1000) / 1000
}

func round6(value float64) float64 {
	return math.Round(value*1000000) / 1000000
}
