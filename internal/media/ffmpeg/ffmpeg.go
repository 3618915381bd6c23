package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// Option configures the CLI tool wrapper.
type Option func(*Tool)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(t *Tool) {
		if binary != "" {
			t.binary = binary
		}
	}
}

// Tool wraps the ffmpeg command line encoder.
type Tool struct {
	binary string
}

// New constructs a Tool using defaults.
func New(opts ...Option) *Tool {
	tool := &Tool{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(tool)
	}
	return tool
}

// Available reports whether the ffmpeg binary can be resolved on PATH.
func (t *Tool) Available() bool {
	_, err := exec.LookPath(t.binary)
	return err == nil
}

// NormalizeSpec describes a single clip normalization pass.
type NormalizeSpec struct {
	Source string
	Dest   string
	Width  int
	Height int
	FPS    int
	CRF    int
}

// Normalize rescales a clip into the target box with padding, resamples the
// frame rate, forces yuv420p, and strips audio. The transform is idempotent
// for a given spec.
func (t *Tool) Normalize(ctx context.Context, spec NormalizeSpec) error {
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black,fps=%d,format=yuv420p",
		spec.Width, spec.Height, spec.Width, spec.Height, spec.FPS,
	)
	args := []string{
		"-y", "-i", spec.Source, "-an", "-vf", vf,
		"-c:v", "libx264", "-preset", "medium", "-crf", strconv.Itoa(spec.CRF),
		spec.Dest,
	}
	return t.run(ctx, "normalize", args)
}

// Concat joins the clips listed in listFile using the concat demuxer,
// preserving list order.
func (t *Tool) Concat(ctx context.Context, listFile, dest string, crf int) error {
	args := []string{
		"-y", "-f", "concat", "-safe", "0", "-i", listFile, "-an",
		"-c:v", "libx264", "-preset", "medium", "-crf", strconv.Itoa(crf),
		"-pix_fmt", "yuv420p",
		dest,
	}
	return t.run(ctx, "concat", args)
}

// MuxLooped loops the silent video stream indefinitely against the audio
// track and trims the output to the shorter input. The video repeats from the
// start when the audio outlasts it; the audio is never cut short.
func (t *Tool) MuxLooped(ctx context.Context, video, audio, dest string, crf int) error {
	args := []string{
		"-y",
		"-stream_loop", "-1", "-i", video,
		"-i", audio,
		"-map", "0:v:0", "-map", "1:a:0",
		"-c:v", "libx264", "-preset", "medium", "-crf", strconv.Itoa(crf),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac", "-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		dest,
	}
	return t.run(ctx, "mux", args)
}

// ExtractStills writes still frames selected by expr to the numbered pattern.
func (t *Tool) ExtractStills(ctx context.Context, video, pattern, expr string) error {
	args := []string{
		"-y", "-i", video,
		"-vf", fmt.Sprintf("select='%s'", expr),
		"-vsync", "0",
		pattern,
	}
	return t.run(ctx, "stills", args)
}

// LoopPreview writes a short looped low-resolution GIF preview of the clip.
func (t *Tool) LoopPreview(ctx context.Context, video, dest string) error {
	args := []string{
		"-y", "-i", video,
		"-vf", "fps=8,scale=416:-1:flags=lanczos",
		"-loop", "0",
		dest,
	}
	return t.run(ctx, "preview", args)
}

func (t *Tool) run(ctx context.Context, operation string, args []string) error {
	cmd := commandContext(ctx, t.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg %s: %w: %s", operation, err, tail(string(output), 512))
	}
	return nil
}

// StillSelect builds a select expression picking count frames evenly spread
// across frameCount decoded frames.
func StillSelect(frameCount, count int) string {
	if count < 1 {
		count = 1
	}
	if frameCount <= 1 {
		return "eq(n,0)"
	}
	seen := make(map[int]struct{}, count)
	terms := make([]string, 0, count)
	for i := 0; i < count; i++ {
		position := 0
		if count > 1 {
			position = int(float64(i)*float64(frameCount-1)/float64(count-1) + 0.5)
		}
		if position < 0 {
			position = 0
		}
		if position > frameCount-1 {
			position = frameCount - 1
		}
		if _, ok := seen[position]; ok {
			continue
		}
		seen[position] = struct{}{}
		terms = append(terms, fmt.Sprintf(`eq(n\,%d)`, position))
	}
	return strings.Join(terms, "+")
}

func tail(text string, maxChars int) string {
	text = strings.TrimSpace(text)
	if len(text) <= maxChars {
		return text
	}
	return text[len(text)-maxChars:]
}
