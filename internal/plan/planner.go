package plan

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"cadence/internal/analysis"
	"cadence/internal/config"
	"cadence/internal/services"
)

// Params carries the creative parameters for one planning pass.
type Params struct {
	Theme          string
	Brand          string
	StylePreset    string
	Resolution     string
	FPS            int
	MinShotSeconds float64
	MaxShotSeconds float64
	TakesHero      int
	TakesStandard  int
	TakesFiller    int
	Seed           int64
}

// ParamsFromConfig seeds planning parameters from configuration defaults.
// Theme and brand come from the caller.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		StylePreset:    cfg.Planning.StylePreset,
		Resolution:     cfg.Planning.Resolution,
		FPS:            cfg.Planning.FPS,
		MinShotSeconds: cfg.Planning.MinShotSeconds,
		MaxShotSeconds: cfg.Planning.MaxShotSeconds,
		TakesHero:      cfg.Planning.TakesHero,
		TakesStandard:  cfg.Planning.TakesStandard,
		TakesFiller:    cfg.Planning.TakesFiller,
		Seed:           cfg.Planning.Seed,
	}
}

// Beats per shot by priority. Hero shots cut fastest.
var beatsPerShot = map[Priority]int{
	PriorityHero:     4,
	PriorityStandard: 6,
	PriorityFiller:   8,
}

// Build runs a single forward sweep over the track, emitting contiguous
// beat-snapped shots from time 0 to the full duration.
func Build(a *analysis.Analysis, params Params) (*Plan, error) {
	if a == nil || a.DurationSeconds <= 0 {
		return nil, services.Wrap(services.ErrPlanning, "plan", "validate", "analysis is missing a positive duration", nil)
	}
	if strings.TrimSpace(params.Theme) == "" {
		return nil, services.Wrap(services.ErrPlanning, "plan", "validate", "theme is required", nil)
	}

	duration := a.DurationSeconds
	beats := a.Beats
	beatSec := beatInterval(beats, a.BPM)
	rng := rand.New(rand.NewSource(params.Seed))

	var shots []Shot
	cursor := 0.0
	for cursor < duration-0.1 {
		section := sectionAt(a.Sections, cursor)
		priority := classify(section, len(shots) == 0)

		raw := float64(beatsPerShot[priority]) * beatSec
		target := cursor + clamp(raw, params.MinShotSeconds, params.MaxShotSeconds)
		end := target
		if len(beats) > 0 {
			end = snapForward(target, beats)
		}
		end = math.Min(duration, math.Max(cursor+params.MinShotSeconds, end))
		if end-cursor > params.MaxShotSeconds {
			end = math.Min(duration, cursor+params.MaxShotSeconds)
		}
		if end <= cursor {
			end = math.Min(duration, cursor+math.Max(beatSec, params.MinShotSeconds))
		}

		shot := Shot{
			ID:              fmt.Sprintf("shot_%03d", len(shots)+1),
			StartSec:        round4(cursor),
			EndSec:          round4(end),
			DurationSec:     round4(end - cursor),
			Section:         section.Label,
			Energy:          section.Energy,
			Priority:        priority,
			VisualGoal:      sectionDescriptor(section.Label),
			Prompt:          buildPrompt(rng, params.Theme, params.StylePreset, section.Label, params.Brand),
			NegativePrompt:  negativePrompt,
			QualityHint:     "quality",
			Takes:           takesFor(priority, params),
			TransitionAfter: "cut",
		}
		shots = append(shots, shot)
		cursor = end
	}

	shots = mergeTail(shots, params.MinShotSeconds)

	result := &Plan{
		Theme:           params.Theme,
		Brand:           params.Brand,
		StylePreset:     params.StylePreset,
		Resolution:      params.Resolution,
		FPS:             params.FPS,
		DurationSeconds: duration,
		BPM:             a.BPM,
		Shots:           shots,
		Summary:         summarize(shots),
	}
	if err := result.Validate(); err != nil {
		return nil, services.Wrap(services.ErrPlanning, "plan", "validate", "", err)
	}
	return result, nil
}

// mergeTail folds a trailing fragment shorter than the minimum into the
// previous shot so no degenerate tail survives.
func mergeTail(shots []Shot, minShotSeconds float64) []Shot {
	if len(shots) < 2 {
		return shots
	}
	tail := shots[len(shots)-1]
	if tail.DurationSec >= minShotSeconds {
		return shots
	}
	previous := &shots[len(shots)-2]
	previous.EndSec = tail.EndSec
	previous.DurationSec = round4(previous.EndSec - previous.StartSec)
	return shots[:len(shots)-1]
}

func classify(section analysis.Section, first bool) Priority {
	if first {
		return PriorityHero
	}
	label := strings.ToLower(section.Label)
	if strings.Contains(label, "chorus") || strings.Contains(label, "drop") {
		return PriorityHero
	}
	if strings.EqualFold(section.Energy, analysis.EnergyLow) {
		return PriorityFiller
	}
	return PriorityStandard
}

func takesFor(priority Priority, params Params) int {
	count := params.TakesFiller
	switch priority {
	case PriorityHero:
		count = params.TakesHero
	case PriorityStandard:
		count = params.TakesStandard
	}
	if count < 1 {
		count = 1
	}
	return count
}

// beatInterval is the median inter-beat gap, or 60/bpm when beats are sparse.
func beatInterval(beats []float64, bpm float64) float64 {
	if len(beats) >= 2 {
		intervals := make([]float64, 0, len(beats)-1)
		for i := 0; i+1 < len(beats); i++ {
			if gap := beats[i+1] - beats[i]; gap > 0 {
				intervals = append(intervals, gap)
			}
		}
		if len(intervals) > 0 {
			sort.Float64s(intervals)
			mid := len(intervals) / 2
			if len(intervals)%2 == 1 {
				return intervals[mid]
			}
			return (intervals[mid-1] + intervals[mid]) / 2
		}
	}
	if bpm <= 0 {
		bpm = 120
	}
	bpm = clamp(bpm, 40, 220)
	return 60.0 / bpm
}

// snapForward returns the first beat at or after target, never snapping
// backward, so shots do not shrink below their target length.
func snapForward(target float64, beats []float64) float64 {
	for _, beat := range beats {
		if beat >= target {
			return beat
		}
	}
	return beats[len(beats)-1]
}

// sectionAt finds the enclosing section; the last section wins when the
// cursor sits beyond every boundary.
func sectionAt(sections []analysis.Section, timeSec float64) analysis.Section {
	for _, section := range sections {
		if section.StartSec <= timeSec && timeSec < section.EndSec {
			return section
		}
	}
	if len(sections) > 0 {
		return sections[len(sections)-1]
	}
	return analysis.Section{Label: "section", Energy: analysis.EnergyMedium, EndSec: timeSec + 1}
}

func clamp(value, low, high float64) float64 {
	return math.Max(low, math.Min(high, value))
}

func round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}
