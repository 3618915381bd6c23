package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Backend identifiers recorded in the analysis artifact.
const (
	BackendAubio    = "aubio"
	BackendFallback = "fallback"
)

// Energy levels assigned to sections.
const (
	EnergyLow    = "low"
	EnergyMedium = "medium"
	EnergyHigh   = "high"
)

// Section is a structural segment of the track (intro, verse, chorus, ...).
type Section struct {
	Label    string  `json:"label"`
	StartSec float64 `json:"start_sec"`
	EndSec   float64 `json:"end_sec"`
	Energy   string  `json:"energy"`
}

// EnergyPoint is one sample of the short-time energy curve.
type EnergyPoint struct {
	TimeSec float64 `json:"time_sec"`
	Energy  float64 `json:"energy"`
}

// Probe echoes the container metadata the extractor observed.
type Probe struct {
	CodecName    string `json:"codec_name"`
	SampleRateHz int    `json:"sample_rate_hz"`
	Channels     int    `json:"channels"`
}

// Analysis captures the rhythmic and structural features of one audio track.
type Analysis struct {
	AudioFile       string        `json:"audio_file"`
	DurationSeconds float64       `json:"duration_seconds"`
	Backend         string        `json:"backend"`
	BPM             float64       `json:"bpm"`
	Beats           []float64     `json:"beats"`
	Downbeats       []float64     `json:"downbeats"`
	Sections        []Section     `json:"sections"`
	EnergyCurve     []EnergyPoint `json:"energy_curve"`
	Probe           Probe         `json:"audio_probe"`
	Warnings        []string      `json:"warnings"`
}

// Validate enforces the structural invariants downstream stages rely on.
func (a *Analysis) Validate() error {
	if a.DurationSeconds <= 0 {
		return fmt.Errorf("duration_seconds must be positive, got %g", a.DurationSeconds)
	}
	if len(a.Beats) == 0 {
		return fmt.Errorf("beat grid is empty")
	}
	previous := -math.MaxFloat64
	for i, beat := range a.Beats {
		if beat < 0 || beat > a.DurationSeconds {
			return fmt.Errorf("beat %d (%g) outside [0, %g]", i, beat, a.DurationSeconds)
		}
		if beat < previous {
			return fmt.Errorf("beat %d (%g) not ascending", i, beat)
		}
		previous = beat
	}
	if len(a.Sections) == 0 {
		return fmt.Errorf("section list is empty")
	}
	cursor := 0.0
	for i, section := range a.Sections {
		if section.EndSec <= section.StartSec {
			return fmt.Errorf("section %d (%s) has non-positive span", i, section.Label)
		}
		if math.Abs(section.StartSec-cursor) > 1e-3 {
			return fmt.Errorf("section %d (%s) starts at %g, expected %g", i, section.Label, section.StartSec, cursor)
		}
		cursor = section.EndSec
	}
	if math.Abs(cursor-a.DurationSeconds) > 1e-3 {
		return fmt.Errorf("sections end at %g, expected duration %g", cursor, a.DurationSeconds)
	}
	return nil
}

// Save writes the analysis artifact as indented JSON.
func (a *Analysis) Save(path string) error {
	payload, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create analysis directory: %w", err)
	}
	return os.WriteFile(path, payload, 0o644)
}

// Load reads and validates an analysis artifact.
func Load(path string) (*Analysis, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	var result Analysis
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis %s: %w", path, err)
	}
	return &result, nil
}

func round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}
