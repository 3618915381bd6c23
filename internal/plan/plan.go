package plan

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Priority classifies how much generation effort a shot deserves.
type Priority string

const (
	PriorityHero     Priority = "hero"
	PriorityStandard Priority = "standard"
	PriorityFiller   Priority = "filler"
)

// Shot is a single planned time segment of the final video.
type Shot struct {
	ID              string   `json:"id"`
	StartSec        float64  `json:"start_sec"`
	EndSec          float64  `json:"end_sec"`
	DurationSec     float64  `json:"duration_sec"`
	Section         string   `json:"section"`
	Energy          string   `json:"energy"`
	Priority        Priority `json:"priority"`
	VisualGoal      string   `json:"visual_goal"`
	Prompt          string   `json:"prompt"`
	NegativePrompt  string   `json:"negative_prompt"`
	QualityHint     string   `json:"quality_hint"`
	Takes           int      `json:"takes"`
	TransitionAfter string   `json:"transition_after"`
}

// Summary counts shots by priority.
type Summary struct {
	TotalShots    int `json:"total_shots"`
	HeroShots     int `json:"hero_shots"`
	StandardShots int `json:"standard_shots"`
	FillerShots   int `json:"filler_shots"`
}

// Plan is the ordered shot list plus the creative metadata it was built from.
type Plan struct {
	Theme           string  `json:"theme"`
	Brand           string  `json:"brand"`
	StylePreset     string  `json:"style_preset"`
	Resolution      string  `json:"resolution"`
	FPS             int     `json:"fps"`
	DurationSeconds float64 `json:"duration_seconds"`
	BPM             float64 `json:"bpm"`
	Shots           []Shot  `json:"shots"`
	Summary         Summary `json:"summary"`
}

// Validate enforces the contiguity invariant: shots are ordered,
// non-overlapping, and cover [0, duration] exactly.
func (p *Plan) Validate() error {
	if p.DurationSeconds <= 0 {
		return fmt.Errorf("duration_seconds must be positive, got %g", p.DurationSeconds)
	}
	if len(p.Shots) == 0 {
		return fmt.Errorf("plan has no shots")
	}
	if math.Abs(p.Shots[0].StartSec) > 1e-3 {
		return fmt.Errorf("first shot starts at %g, expected 0", p.Shots[0].StartSec)
	}
	for i, shot := range p.Shots {
		if shot.EndSec <= shot.StartSec {
			return fmt.Errorf("shot %s has non-positive span", shot.ID)
		}
		if shot.Takes < 1 {
			return fmt.Errorf("shot %s has take count %d, expected at least 1", shot.ID, shot.Takes)
		}
		if i+1 < len(p.Shots) {
			next := p.Shots[i+1]
			if math.Abs(shot.EndSec-next.StartSec) > 1e-3 {
				return fmt.Errorf("gap between %s (end %g) and %s (start %g)", shot.ID, shot.EndSec, next.ID, next.StartSec)
			}
		}
	}
	if last := p.Shots[len(p.Shots)-1]; math.Abs(last.EndSec-p.DurationSeconds) > 1e-3 {
		return fmt.Errorf("last shot ends at %g, expected duration %g", last.EndSec, p.DurationSeconds)
	}
	return nil
}

func summarize(shots []Shot) Summary {
	summary := Summary{TotalShots: len(shots)}
	for _, shot := range shots {
		switch shot.Priority {
		case PriorityHero:
			summary.HeroShots++
		case PriorityStandard:
			summary.StandardShots++
		case PriorityFiller:
			summary.FillerShots++
		}
	}
	return summary
}

// Save writes the plan artifact as indented JSON.
func (p *Plan) Save(path string) error {
	payload, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create plan directory: %w", err)
	}
	return os.WriteFile(path, payload, 0o644)
}

// Load reads and validates a plan artifact.
func Load(path string) (*Plan, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	var result Plan
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", path, err)
	}
	return &result, nil
}
