package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"cadence/internal/config"
)

// Requirement defines an external dependency Cadence relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements builds the external tool checklist for the configured
// pipeline. The synthesis binary is only required when takes will actually be
// rendered; aubio is always optional because analysis degrades to the
// fallback beat grid.
func Requirements(cfg *config.Config, execute bool) []Requirement {
	return []Requirement{
		{
			Name:        "FFprobe",
			Command:     cfg.Analysis.FFprobeBin,
			Description: "Probes audio duration and computes the energy curve",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Assembly.FFmpegBin,
			Description: "Normalizes, concatenates, and muxes clips",
		},
		{
			Name:        "aubio",
			Command:     cfg.Analysis.AubioBin,
			Description: "Precise beat and tempo detection",
			Optional:    true,
		},
		{
			Name:        "Clip synthesizer",
			Command:     cfg.Generation.SynthBin,
			Description: "Renders video takes from shot prompts",
			Optional:    !execute,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of required dependencies that are
// unavailable.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
