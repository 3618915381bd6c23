package ffmpeg

import (
	"os"
	"path/filepath"
	"strings"
)

// WriteConcatList writes a concat demuxer list file referencing the clips in
// order. Paths are single-quoted with embedded quotes escaped the way the
// demuxer expects.
func WriteConcatList(path string, clips []string) error {
	lines := make([]string, 0, len(clips))
	for _, clip := range clips {
		escaped := strings.ReplaceAll(filepath.ToSlash(clip), "'", `'\''`)
		lines = append(lines, "file '"+escaped+"'")
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}
