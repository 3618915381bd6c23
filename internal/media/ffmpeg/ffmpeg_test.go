package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func captureCommand(t *testing.T, mode string) *[][]string {
	t.Helper()
	var captured [][]string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		captured = append(captured, append([]string{name}, args...))
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "FFMPEG_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() { commandContext = original })
	return &captured
}

func TestNormalizeBuildsFilterChain(t *testing.T) {
	captured := captureCommand(t, "ok")

	tool := New(WithBinary("/opt/ffmpeg"))
	err := tool.Normalize(context.Background(), NormalizeSpec{
		Source: "in.mp4", Dest: "out.mp4", Width: 1280, Height: 720, FPS: 24, CRF: 18,
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	args := (*captured)[0]
	if args[0] != "/opt/ffmpeg" {
		t.Fatalf("expected binary override, got %q", args[0])
	}
	joined := strings.Join(args, " ")
	wantVF := "scale=1280:720:force_original_aspect_ratio=decrease,pad=1280:720:(ow-iw)/2:(oh-ih)/2:black,fps=24,format=yuv420p"
	if !strings.Contains(joined, wantVF) {
		t.Fatalf("missing filter chain in %q", joined)
	}
	if !strings.Contains(joined, "-an") {
		t.Fatalf("audio should be stripped: %q", joined)
	}
}

func TestMuxLoopedLoopsVideoNotAudio(t *testing.T) {
	captured := captureCommand(t, "ok")

	err := New().MuxLooped(context.Background(), "video.mp4", "song.mp3", "out.mp4", 18)
	if err != nil {
		t.Fatalf("mux: %v", err)
	}

	args := (*captured)[0]
	joined := strings.Join(args, " ")
	// stream_loop must precede the video input only.
	if !strings.Contains(joined, "-stream_loop -1 -i video.mp4") {
		t.Fatalf("video input should be looped: %q", joined)
	}
	if strings.Contains(joined, "-stream_loop -1 -i song.mp3") {
		t.Fatalf("audio input must not be looped: %q", joined)
	}
	if !strings.Contains(joined, "-shortest") {
		t.Fatalf("output must trim to the shorter stream: %q", joined)
	}
}

func TestRunSurfacesToolFailure(t *testing.T) {
	captureCommand(t, "fail")
	err := New().Concat(context.Background(), "list.txt", "out.mp4", 18)
	if err == nil {
		t.Fatal("expected concat failure")
	}
	if !strings.Contains(err.Error(), "ffmpeg concat") {
		t.Fatalf("error should name the operation: %v", err)
	}
}

func TestStillSelect(t *testing.T) {
	if got := StillSelect(0, 3); got != "eq(n,0)" {
		t.Fatalf("degenerate frame count: %q", got)
	}
	if got := StillSelect(49, 3); got != `eq(n\,0)+eq(n\,24)+eq(n\,48)` {
		t.Fatalf("unexpected selection: %q", got)
	}
	// Duplicate positions collapse.
	if got := StillSelect(2, 3); got != `eq(n\,0)+eq(n\,1)` {
		t.Fatalf("expected dedup: %q", got)
	}
}

func TestWriteConcatList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concat_list.txt")
	if err := WriteConcatList(path, []string{"/tmp/a.mp4", "/tmp/it's.mp4"}); err != nil {
		t.Fatalf("write list: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	want := "file '/tmp/a.mp4'\nfile '/tmp/it'\\''s.mp4'\n"
	if string(content) != want {
		t.Fatalf("unexpected list content:\n%q\nwant\n%q", content, want)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "ok":
		os.Exit(0)
	default:
		fmt.Fprint(os.Stderr, "conversion failed")
		os.Exit(1)
	}
}
