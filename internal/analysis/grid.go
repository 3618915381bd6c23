package analysis

import (
	"math"
	"sort"
)

const (
	fallbackBPM = 120.0
	minBPM      = 40.0
	maxBPM      = 220.0
)

// fallbackBeats builds a synthetic grid at 120 BPM spanning the duration.
func fallbackBeats(durationSeconds float64) (float64, []float64) {
	interval := 60.0 / fallbackBPM
	count := int(math.Floor(durationSeconds / interval))
	if count < 1 {
		count = 1
	}
	beats := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		beats = append(beats, float64(i)*interval)
	}
	return fallbackBPM, clipRound(beats, durationSeconds)
}

// inferBPM derives tempo from the median inter-beat interval, keeping the
// raw estimate only when the derivation is impossible. Estimates landing
// outside the plausible range are rejected, which filters octave errors.
func inferBPM(beats []float64, rawBPM float64) float64 {
	if len(beats) < 3 {
		return rawBPM
	}
	intervals := make([]float64, 0, len(beats)-1)
	for i := 0; i+1 < len(beats); i++ {
		if gap := beats[i+1] - beats[i]; gap > 0 {
			intervals = append(intervals, gap)
		}
	}
	med := median(intervals)
	if med <= 0 {
		return rawBPM
	}
	bpm := 60.0 / med
	if bpm < minBPM || bpm > maxBPM {
		return rawBPM
	}
	return bpm
}

// everyFourth returns every 4th beat starting at the first.
func everyFourth(beats []float64) []float64 {
	downbeats := make([]float64, 0, (len(beats)+3)/4)
	for i := 0; i < len(beats); i += 4 {
		downbeats = append(downbeats, beats[i])
	}
	return downbeats
}

func clipRound(values []float64, duration float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, value := range values {
		if value < 0 || value > duration {
			continue
		}
		out = append(out, round4(value))
	}
	return out
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
