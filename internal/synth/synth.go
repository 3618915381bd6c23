package synth

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// Request carries the generation parameters for one take.
type Request struct {
	Prompt          string
	NegativePrompt  string
	Resolution      string
	DurationSeconds float64
	Quality         string
	OutputDir       string
}

// ProgressUpdate captures render progress events emitted by the synthesizer.
type ProgressUpdate struct {
	Percent float64
	Stage   string
	Message string
}

// Client defines clip synthesis behaviour.
type Client interface {
	Synthesize(ctx context.Context, req Request, progress func(ProgressUpdate)) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the external clip synthesis command. The command renders one clip
// per invocation, streams JSON progress lines on stdout, and drops the
// resulting .mp4 into the requested output directory.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "clipsynth"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Available reports whether the synthesis binary can be resolved on PATH.
func (c *CLI) Available() bool {
	_, err := exec.LookPath(c.binary)
	return err == nil
}

// Synthesize launches one render and blocks until it finishes.
func (c *CLI) Synthesize(ctx context.Context, req Request, progress func(ProgressUpdate)) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return errors.New("prompt required")
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return errors.New("output directory required")
	}
	if req.DurationSeconds <= 0 {
		return errors.New("duration must be positive")
	}

	args := []string{
		"render",
		"--prompt", req.Prompt,
		"--negative-prompt", req.NegativePrompt,
		"--resolution", req.Resolution,
		"--duration-seconds", strconv.FormatFloat(req.DurationSeconds, 'f', -1, 64),
		"--quality", req.Quality,
		"--output-dir", req.OutputDir,
		"--progress-json",
	}
	cmd := commandContext(ctx, c.binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.binary, err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Bytes()
		var payload struct {
			Percent float64 `json:"percent"`
			Stage   string  `json:"stage"`
			Message string  `json:"message"`
		}
		if err := json.Unmarshal(line, &payload); err != nil {
			continue
		}
		if progress != nil {
			progress(ProgressUpdate{Percent: payload.Percent, Stage: payload.Stage, Message: payload.Message})
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s output: %w", c.binary, err)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s render: %w", c.binary, ctx.Err())
		}
		return fmt.Errorf("%s render failed: %w", c.binary, err)
	}
	return nil
}

var _ Client = (*CLI)(nil)
