package analysis

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"cadence/internal/config"
	"cadence/internal/media/aubio"
	"cadence/internal/media/ffprobe"
)

type fakeDetector struct {
	available bool
	detection aubio.Detection
	err       error
}

func (f *fakeDetector) Available() bool { return f.available }

func (f *fakeDetector) Detect(context.Context, string) (aubio.Detection, error) {
	return f.detection, f.err
}

func stubProbe(t *testing.T, duration string, probeErr error) {
	t.Helper()
	originalInspect := inspect
	inspect = func(context.Context, string, string) (ffprobe.Result, error) {
		if probeErr != nil {
			return ffprobe.Result{}, probeErr
		}
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "audio", CodecName: "mp3", SampleRate: "44100", Channels: 2}},
			Format:  ffprobe.Format{Duration: duration},
		}, nil
	}
	t.Cleanup(func() { inspect = originalInspect })
}

func stubRMS(t *testing.T, samples []ffprobe.RMSSample, err error) {
	t.Helper()
	originalRMS := rmsLevels
	rmsLevels = func(context.Context, string, string) ([]ffprobe.RMSSample, error) {
		return samples, err
	}
	t.Cleanup(func() { rmsLevels = originalRMS })
}

func newTestExtractor(t *testing.T, detector aubio.Detector) *Extractor {
	t.Helper()
	cfg := config.Default()
	return NewExtractor(&cfg, detector, nil)
}

func writeAudioStub(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestExtractFallbackGridFor30Seconds(t *testing.T) {
	stubProbe(t, "30.0", nil)
	extractor := newTestExtractor(t, &fakeDetector{available: false})

	result, err := extractor.Extract(context.Background(), writeAudioStub(t))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if result.Backend != BackendFallback {
		t.Fatalf("expected fallback backend, got %s", result.Backend)
	}
	if result.BPM != 120 {
		t.Fatalf("expected 120 bpm, got %v", result.BPM)
	}
	if len(result.Beats) != 60 {
		t.Fatalf("expected 60 beats at 0.5s spacing, got %d", len(result.Beats))
	}
	for i, beat := range result.Beats {
		if math.Abs(beat-float64(i)*0.5) > 1e-9 {
			t.Fatalf("beat %d misplaced: %v", i, beat)
		}
	}
	// Sections cover [0, 30] exactly.
	if result.Sections[0].StartSec != 0 {
		t.Fatalf("sections must start at 0, got %v", result.Sections[0].StartSec)
	}
	if last := result.Sections[len(result.Sections)-1]; last.EndSec != 30 {
		t.Fatalf("sections must end at duration, got %v", last.EndSec)
	}
	if len(result.EnergyCurve) != 1 || result.EnergyCurve[0].Energy != 0 {
		t.Fatalf("expected single zero-energy placeholder, got %+v", result.EnergyCurve)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("degradation must be reported as a warning")
	}
}

func TestExtractUsesDetectedBeats(t *testing.T) {
	stubProbe(t, "60.0", nil)
	beats := make([]float64, 0, 120)
	for i := 0; i < 120; i++ {
		beats = append(beats, float64(i)*0.5)
	}
	stubRMS(t, []ffprobe.RMSSample{{TimeSec: 0, Level: 0.2}, {TimeSec: 1, Level: 0.4}}, nil)

	extractor := newTestExtractor(t, &fakeDetector{
		available: true,
		detection: aubio.Detection{BPM: 119.9, Beats: beats},
	})
	result, err := extractor.Extract(context.Background(), writeAudioStub(t))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if result.Backend != BackendAubio {
		t.Fatalf("expected aubio backend, got %s", result.Backend)
	}
	if result.BPM != 120 {
		t.Fatalf("bpm should derive from median interval: %v", result.BPM)
	}
	if len(result.Downbeats) != 30 {
		t.Fatalf("expected every 4th beat as downbeat, got %d", len(result.Downbeats))
	}
	if len(result.EnergyCurve) != 2 {
		t.Fatalf("expected sampled energy curve, got %+v", result.EnergyCurve)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}
}

func TestExtractFiltersOctaveError(t *testing.T) {
	stubProbe(t, "60.0", nil)
	stubRMS(t, nil, errors.New("no astats"))

	beats := make([]float64, 0, 120)
	for i := 0; i < 120; i++ {
		beats = append(beats, float64(i)*0.5)
	}
	// Raw tempo is a doubled octave estimate; the median interval wins.
	extractor := newTestExtractor(t, &fakeDetector{
		available: true,
		detection: aubio.Detection{BPM: 240, Beats: beats},
	})
	result, err := extractor.Extract(context.Background(), writeAudioStub(t))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if result.BPM != 120 {
		t.Fatalf("octave error should be filtered to 120, got %v", result.BPM)
	}
	// Energy sampling failed; placeholder plus warning.
	if len(result.EnergyCurve) != 1 {
		t.Fatalf("expected placeholder energy curve, got %+v", result.EnergyCurve)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected energy warning, got %v", result.Warnings)
	}
}

func TestExtractTooFewBeatsFallsBack(t *testing.T) {
	stubProbe(t, "30.0", nil)
	extractor := newTestExtractor(t, &fakeDetector{
		available: true,
		detection: aubio.Detection{BPM: 100, Beats: []float64{0, 1, 2}},
	})
	result, err := extractor.Extract(context.Background(), writeAudioStub(t))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if result.Backend != BackendFallback {
		t.Fatalf("expected fallback for sparse beats, got %s", result.Backend)
	}
}

func TestExtractDetectorErrorFallsBack(t *testing.T) {
	stubProbe(t, "30.0", nil)
	extractor := newTestExtractor(t, &fakeDetector{available: true, err: errors.New("aubio crashed")})
	result, err := extractor.Extract(context.Background(), writeAudioStub(t))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if result.Backend != BackendFallback {
		t.Fatalf("expected fallback backend, got %s", result.Backend)
	}
}

func TestExtractFailsWithoutDuration(t *testing.T) {
	stubProbe(t, "0", nil)
	extractor := newTestExtractor(t, nil)
	if _, err := extractor.Extract(context.Background(), writeAudioStub(t)); err == nil {
		t.Fatal("expected fatal error for zero duration")
	}
}

func TestExtractFailsForMissingFile(t *testing.T) {
	extractor := newTestExtractor(t, nil)
	if _, err := extractor.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Fatal("expected fatal error for missing file")
	}
}
