package ffprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RMSSample is one short-time loudness measurement.
type RMSSample struct {
	TimeSec float64
	// Level is linear amplitude derived from the dBFS RMS level, so silence
	// approaches 0 and full scale approaches 1.
	Level float64
}

// RMSLevels samples per-frame RMS loudness of the first audio stream using
// ffprobe's lavfi astats filter.
func RMSLevels(ctx context.Context, binary string, path string) ([]RMSSample, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	graph := fmt.Sprintf("amovie=%s,astats=metadata=1:reset=1", escapeFilterPath(path))
	cmd := commandContext(ctx, binary,
		"-v", "error", "-f", "lavfi", "-i", graph,
		"-show_entries", "frame=pts_time:frame_tags=lavfi.astats.Overall.RMS_level",
		"-of", "json")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe astats: %w", err)
	}

	var payload struct {
		Frames []struct {
			PtsTime string            `json:"pts_time"`
			Tags    map[string]string `json:"tags"`
		} `json:"frames"`
	}
	if err := json.Unmarshal(output, &payload); err != nil {
		return nil, fmt.Errorf("ffprobe astats parse: %w", err)
	}

	samples := make([]RMSSample, 0, len(payload.Frames))
	for _, frame := range payload.Frames {
		at, err := strconv.ParseFloat(strings.TrimSpace(frame.PtsTime), 64)
		if err != nil {
			continue
		}
		db, err := strconv.ParseFloat(strings.TrimSpace(frame.Tags["lavfi.astats.Overall.RMS_level"]), 64)
		if err != nil {
			continue
		}
		samples = append(samples, RMSSample{TimeSec: at, Level: linearFromDB(db)})
	}
	return samples, nil
}

func linearFromDB(db float64) float64 {
	if math.IsInf(db, -1) || db < -120 {
		return 0
	}
	return math.Pow(10, db/20)
}

// escapeFilterPath quotes characters that are significant inside a lavfi
// filter graph argument.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`, `,`, `\,`)
	return replacer.Replace(path)
}
