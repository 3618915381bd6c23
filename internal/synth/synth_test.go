package synth

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
)

func stubCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "SYNTH_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() { commandContext = original })
}

func testRequest(t *testing.T) Request {
	return Request{
		Prompt:          "music video scene, neon city nights",
		NegativePrompt:  "text, logo",
		Resolution:      "832x480",
		DurationSeconds: 3.5,
		Quality:         "quality",
		OutputDir:       t.TempDir(),
	}
}

func TestSynthesizeReportsProgress(t *testing.T) {
	stubCommand(t, "progress")

	var updates []ProgressUpdate
	err := NewCLI().Synthesize(context.Background(), testRequest(t), func(update ProgressUpdate) {
		updates = append(updates, update)
	})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 progress updates, got %d", len(updates))
	}
	if updates[0].Stage != "denoise" || updates[0].Percent != 40 {
		t.Fatalf("unexpected first update: %+v", updates[0])
	}
	if updates[1].Percent != 100 {
		t.Fatalf("unexpected final update: %+v", updates[1])
	}
}

func TestSynthesizeIgnoresNonJSONLines(t *testing.T) {
	stubCommand(t, "noisy")

	var updates []ProgressUpdate
	err := NewCLI().Synthesize(context.Background(), testRequest(t), func(update ProgressUpdate) {
		updates = append(updates, update)
	})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("expected 1 progress update, got %d", len(updates))
	}
}

func TestSynthesizePropagatesFailure(t *testing.T) {
	stubCommand(t, "fail")
	if err := NewCLI().Synthesize(context.Background(), testRequest(t), nil); err == nil {
		t.Fatal("expected error for failing render")
	}
}

func TestSynthesizeRejectsBadRequests(t *testing.T) {
	cases := map[string]func(*Request){
		"empty prompt":  func(r *Request) { r.Prompt = " " },
		"no output dir": func(r *Request) { r.OutputDir = "" },
		"zero duration": func(r *Request) { r.DurationSeconds = 0 },
	}
	for name, mutate := range cases {
		req := testRequest(t)
		mutate(&req)
		if err := NewCLI().Synthesize(context.Background(), req, nil); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("SYNTH_HELPER_MODE") {
	case "progress":
		fmt.Println(`{"percent":40,"stage":"denoise","message":"step 20/50"}`)
		fmt.Println(`{"percent":100,"stage":"encode","message":"done"}`)
		os.Exit(0)
	case "noisy":
		fmt.Println("loading model weights")
		fmt.Println(`{"percent":100,"stage":"encode","message":"done"}`)
		os.Exit(0)
	default:
		fmt.Fprintln(os.Stderr, "render failed: out of memory")
		os.Exit(1)
	}
}
