package deps

import (
	"os"
	"path/filepath"
	"testing"

	"cadence/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
}

func TestRequirementsMarkSynthesizerRequiredOnExecute(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	planOnly := Requirements(cfg, false)
	execute := Requirements(cfg, true)
	if len(planOnly) != 4 || len(execute) != 4 {
		t.Fatalf("unexpected requirement counts: %d, %d", len(planOnly), len(execute))
	}
	if !planOnly[3].Optional {
		t.Fatal("synthesizer should be optional without execute")
	}
	if execute[3].Optional {
		t.Fatal("synthesizer should be required with execute")
	}
	if !planOnly[2].Optional || !execute[2].Optional {
		t.Fatal("aubio should always be optional")
	}
}

func TestMissingRequired(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "ffprobe"))
	cfg.Generation.SynthBin = "clearly-not-present-binary"
	cfg.Analysis.AubioBin = "also-not-present"

	statuses := CheckBinaries(Requirements(cfg, true))
	missing := MissingRequired(statuses)
	if len(missing) != 1 || missing[0] != "Clip synthesizer" {
		t.Fatalf("unexpected missing list: %v", missing)
	}
}
