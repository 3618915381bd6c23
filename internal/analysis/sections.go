package analysis

import "math"

type layoutEntry struct {
	label string
	ratio float64
}

var shortLayout = []layoutEntry{
	{"intro", 0.14},
	{"verse", 0.24},
	{"chorus", 0.22},
	{"verse", 0.2},
	{"chorus", 0.2},
}

var longLayout = []layoutEntry{
	{"intro", 0.1},
	{"verse", 0.16},
	{"pre-chorus", 0.1},
	{"chorus", 0.14},
	{"verse", 0.16},
	{"chorus", 0.14},
	{"bridge", 0.1},
	{"chorus", 0.1},
}

var energyByLabel = map[string]string{
	"intro":      EnergyLow,
	"verse":      EnergyMedium,
	"pre-chorus": EnergyMedium,
	"chorus":     EnergyHigh,
	"bridge":     EnergyMedium,
	"outro":      EnergyLow,
}

// buildSections lays out proportional section boundaries, snaps each to the
// nearest beat, merges boundaries closer than the minimum span, and forces
// the final boundary onto the track duration.
func buildSections(durationSeconds float64, beats []float64, minSectionSeconds float64) []Section {
	layout := longLayout
	if durationSeconds <= 45 {
		layout = shortLayout
	}

	boundaries := make([]float64, 0, len(layout)+2)
	boundaries = append(boundaries, 0)
	cursor := 0.0
	for _, entry := range layout {
		cursor += durationSeconds * entry.ratio
		snapped := snapNearest(cursor, beats)
		boundaries = append(boundaries, math.Min(durationSeconds, math.Max(0, snapped)))
	}
	boundaries = append(boundaries, durationSeconds)

	minSpan := math.Max(2.0, minSectionSeconds)
	cleaned := []float64{boundaries[0]}
	for _, boundary := range boundaries[1:] {
		if boundary-cleaned[len(cleaned)-1] < minSpan {
			continue
		}
		cleaned = append(cleaned, boundary)
	}
	if cleaned[len(cleaned)-1] < durationSeconds {
		cleaned[len(cleaned)-1] = durationSeconds
	}
	if cleaned[0] != 0 {
		cleaned = append([]float64{0}, cleaned...)
	}

	sections := make([]Section, 0, len(cleaned)-1)
	for idx := 0; idx+1 < len(cleaned); idx++ {
		start := round4(cleaned[idx])
		end := round4(cleaned[idx+1])
		if end <= start {
			continue
		}
		var label string
		switch {
		case idx < len(layout):
			label = layout[idx].label
		case idx == len(cleaned)-2:
			label = "outro"
		default:
			label = "section"
		}
		energy, ok := energyByLabel[label]
		if !ok {
			energy = EnergyMedium
		}
		sections = append(sections, Section{Label: label, StartSec: start, EndSec: end, Energy: energy})
	}
	if len(sections) == 0 {
		sections = []Section{{Label: "section", StartSec: 0, EndSec: round4(durationSeconds), Energy: EnergyMedium}}
	}
	return sections
}

func snapNearest(target float64, beats []float64) float64 {
	if len(beats) == 0 {
		return target
	}
	nearest := beats[0]
	best := math.Abs(beats[0] - target)
	for _, beat := range beats[1:] {
		if diff := math.Abs(beat - target); diff < best {
			best = diff
			nearest = beat
		}
	}
	return nearest
}
