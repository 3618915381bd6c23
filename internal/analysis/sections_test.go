package analysis

import (
	"math"
	"testing"
)

func evenBeats(duration, interval float64) []float64 {
	var beats []float64
	for t := 0.0; t <= duration; t += interval {
		beats = append(beats, t)
	}
	return beats
}

func assertCoverage(t *testing.T, sections []Section, duration float64) {
	t.Helper()
	if len(sections) == 0 {
		t.Fatal("no sections")
	}
	if sections[0].StartSec != 0 {
		t.Fatalf("first section starts at %v", sections[0].StartSec)
	}
	cursor := 0.0
	for i, section := range sections {
		if section.EndSec <= section.StartSec {
			t.Fatalf("section %d has non-positive span: %+v", i, section)
		}
		if math.Abs(section.StartSec-cursor) > 1e-3 {
			t.Fatalf("gap before section %d: cursor %v, start %v", i, cursor, section.StartSec)
		}
		cursor = section.EndSec
	}
	if math.Abs(cursor-duration) > 1e-3 {
		t.Fatalf("sections end at %v, want %v", cursor, duration)
	}
}

func TestBuildSectionsShortTrack(t *testing.T) {
	sections := buildSections(40, evenBeats(40, 0.5), 2)
	assertCoverage(t, sections, 40)
	if sections[0].Label != "intro" {
		t.Fatalf("first section should be intro, got %s", sections[0].Label)
	}
	if sections[0].Energy != EnergyLow {
		t.Fatalf("intro energy should be low, got %s", sections[0].Energy)
	}
}

func TestBuildSectionsLongTrackUsesEightSectionLayout(t *testing.T) {
	sections := buildSections(200, evenBeats(200, 0.5), 2)
	assertCoverage(t, sections, 200)
	if len(sections) != 8 {
		t.Fatalf("expected 8 sections for a long track with generous spans, got %d", len(sections))
	}
	sawChorus := false
	for _, section := range sections {
		if section.Label == "chorus" {
			sawChorus = true
			if section.Energy != EnergyHigh {
				t.Fatalf("chorus energy should be high, got %s", section.Energy)
			}
		}
	}
	if !sawChorus {
		t.Fatal("long layout should include a chorus")
	}
}

func TestBuildSectionsMergesNarrowBoundaries(t *testing.T) {
	// A 10s track with an 8s minimum span collapses to a single section.
	sections := buildSections(10, evenBeats(10, 0.5), 8)
	assertCoverage(t, sections, 10)
	if len(sections) != 1 {
		t.Fatalf("expected one merged section, got %d", len(sections))
	}
}

func TestBuildSectionsWithoutBeats(t *testing.T) {
	sections := buildSections(60, nil, 2)
	assertCoverage(t, sections, 60)
}

func TestSnapNearest(t *testing.T) {
	beats := []float64{0, 0.5, 1.0, 1.5}
	if got := snapNearest(0.7, beats); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	if got := snapNearest(0.76, beats); got != 1.0 {
		t.Fatalf("expected 1.0, got %v", got)
	}
	if got := snapNearest(3.0, beats); got != 1.5 {
		t.Fatalf("expected last beat, got %v", got)
	}
	if got := snapNearest(0.7, nil); got != 0.7 {
		t.Fatalf("expected passthrough without beats, got %v", got)
	}
}
