package generate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cadence/internal/plan"
)

// Take statuses. A planned take was composed but never rendered.
const (
	TakePlanned = "planned"
	TakeSuccess = "success"
	TakeError   = "error"
)

// Preview records the best-effort preview artifacts for one take.
type Preview struct {
	Status     string   `json:"status"`
	StillPaths []string `json:"still_paths,omitempty"`
	GIFPath    string   `json:"gif_path,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

// Take is the outcome of one render attempt.
type Take struct {
	ID           string   `json:"take_id"`
	Status       string   `json:"status"`
	Error        string   `json:"error,omitempty"`
	VideoFile    string   `json:"video_file,omitempty"`
	QualityScore *float64 `json:"quality_score,omitempty"`
	Preview      *Preview `json:"preview,omitempty"`
}

// ShotResult groups a shot's identity with its take outcomes.
type ShotResult struct {
	ShotID      string        `json:"shot_id"`
	StartSec    float64       `json:"start_sec"`
	EndSec      float64       `json:"end_sec"`
	DurationSec float64       `json:"duration_sec"`
	Priority    plan.Priority `json:"priority"`
	Prompt      string        `json:"prompt"`
	Takes       []Take        `json:"takes"`
}

// Summary counts take outcomes across the whole run.
type Summary struct {
	TotalShots      int `json:"total_shots"`
	TotalTakes      int `json:"total_takes"`
	SuccessfulTakes int `json:"successful_takes"`
	FailedTakes     int `json:"failed_takes"`
}

// Manifest is the full record of one generation pass over a plan. It is
// written once by the orchestrator and read-only afterwards.
type Manifest struct {
	Status      string       `json:"status"`
	PlanFile    string       `json:"plan_file"`
	Executed    bool         `json:"executed"`
	OutputRoot  string       `json:"output_root"`
	GeneratedAt string       `json:"generated_at"`
	Shots       []ShotResult `json:"shots"`
	Summary     Summary      `json:"summary"`
}

// BestTake returns the highest-scoring successful take whose output file still
// exists. Ties keep the earliest take. The second result is false when the
// shot produced nothing usable.
func (s ShotResult) BestTake() (Take, bool) {
	var (
		best  Take
		found bool
	)
	for _, take := range s.Takes {
		if take.Status != TakeSuccess || take.VideoFile == "" || take.QualityScore == nil {
			continue
		}
		if _, err := os.Stat(take.VideoFile); err != nil {
			continue
		}
		if !found || *take.QualityScore > *best.QualityScore {
			best = take
			found = true
		}
	}
	return best, found
}

// QualityScore maps output file size to a coarse quality tier. It is a
// monotonic proxy, not a perceptual metric.
func QualityScore(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat output: %w", err)
	}
	sizeMB := float64(info.Size()) / (1024 * 1024)
	switch {
	case sizeMB <= 0.5:
		return 0.15, nil
	case sizeMB <= 2.0:
		return 0.35, nil
	case sizeMB <= 6.0:
		return 0.6, nil
	default:
		return 0.8, nil
	}
}

// Save writes the manifest artifact as indented JSON.
func (m *Manifest) Save(path string) error {
	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	return os.WriteFile(path, payload, 0o644)
}

// Load reads a manifest artifact.
func Load(path string) (*Manifest, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var result Manifest
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(result.Shots) == 0 {
		return nil, fmt.Errorf("manifest %s has no shots", path)
	}
	return &result, nil
}
