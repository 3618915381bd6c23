package aubio

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// Detection is the raw output of a beat-tracking pass.
type Detection struct {
	// BPM is aubio's own tempo estimate; callers should sanity-check it
	// against the beat grid before trusting it.
	BPM   float64
	Beats []float64
}

// Detector runs beat and tempo detection against an audio file.
type Detector interface {
	Available() bool
	Detect(ctx context.Context, path string) (Detection, error)
}

// Option configures the CLI detector.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the aubio command line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI detector using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "aubio"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Available reports whether the aubio binary can be resolved on PATH.
func (c *CLI) Available() bool {
	_, err := exec.LookPath(c.binary)
	return err == nil
}

// Detect runs `aubio beat` and `aubio tempo` and merges the results.
func (c *CLI) Detect(ctx context.Context, path string) (Detection, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Detection{}, errors.New("aubio detect: empty path")
	}

	beatCmd := commandContext(ctx, c.binary, "beat", "-i", path)
	beatOut, err := beatCmd.Output()
	if err != nil {
		return Detection{}, fmt.Errorf("aubio beat: %w", err)
	}
	beats, err := parseBeatTimes(string(beatOut))
	if err != nil {
		return Detection{}, err
	}

	detection := Detection{Beats: beats}

	tempoCmd := commandContext(ctx, c.binary, "tempo", "-i", path)
	tempoOut, err := tempoCmd.Output()
	if err != nil {
		// Tempo is advisory; the beat grid alone is enough for planning.
		return detection, nil
	}
	detection.BPM = parseTempo(string(tempoOut))
	return detection, nil
}

func parseBeatTimes(output string) ([]float64, error) {
	var beats []float64
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		value, err := strconv.ParseFloat(strings.Fields(line)[0], 64)
		if err != nil {
			return nil, fmt.Errorf("aubio beat parse %q: %w", line, err)
		}
		beats = append(beats, value)
	}
	return beats, nil
}

func parseTempo(output string) float64 {
	// aubio tempo prints a single "123.456 bpm" line.
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) == 0 {
		return 0
	}
	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return value
}

var _ Detector = (*CLI)(nil)
