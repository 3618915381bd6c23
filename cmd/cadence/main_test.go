package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cadence/internal/analysis"
	"cadence/internal/generate"
	"cadence/internal/plan"
)

const ffprobeStub = `#!/bin/sh
echo '{"streams":[{"index":0,"codec_type":"audio","codec_name":"mp3","sample_rate":"44100","channels":2}],"format":{"duration":"30.0","format_name":"mp3"}}'
`

const ffmpegStub = "#!/bin/sh\nfor last in \"$@\"; do :; done\nprintf fake > \"$last\"\nexit 0\n"

type cliTestEnv struct {
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("create bin dir: %v", err)
	}
	writeStub := func(name, script string) string {
		path := filepath.Join(binDir, name)
		if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
		return path
	}
	ffprobeBin := writeStub("ffprobe", ffprobeStub)
	ffmpegBin := writeStub("ffmpeg", ffmpegStub)

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
work_dir = %q
log_dir = %q

[analysis]
ffprobe_bin = %q
aubio_bin = "cadence-test-missing-aubio"

[generation]
synth_bin = "cadence-test-missing-synth"
previews = false

[assembly]
ffmpeg_bin = %q
`,
		filepath.Join(base, "runs"),
		filepath.Join(base, "logs"),
		ffprobeBin,
		ffmpegBin,
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{configPath: configPath, baseDir: base}
}

func (env *cliTestEnv) writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(env.baseDir, "song.mp3")
	if err := os.WriteFile(path, make([]byte, 2048), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIStageCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	audio := env.writeAudio(t)

	analysisFile := filepath.Join(env.baseDir, "audio_analysis.json")
	out, _, err := runCLI(t, env.configPath, "analyze", "--audio", audio, "--output", analysisFile)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "Wrote analysis to "+analysisFile) {
		t.Fatalf("unexpected analyze output: %q", out)
	}
	extracted, err := analysis.Load(analysisFile)
	if err != nil {
		t.Fatalf("load analysis: %v", err)
	}
	if extracted.Backend != analysis.BackendFallback {
		t.Fatalf("expected fallback backend without aubio, got %s", extracted.Backend)
	}

	planFile := filepath.Join(env.baseDir, "music_plan.json")
	out, _, err = runCLI(t, env.configPath, "plan", "--analysis", analysisFile, "--theme", "neon city nights", "--output", planFile)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(out, "Wrote plan to "+planFile) {
		t.Fatalf("unexpected plan output: %q", out)
	}
	built, err := plan.Load(planFile)
	if err != nil {
		t.Fatalf("load plan: %v", err)
	}
	if len(built.Shots) == 0 {
		t.Fatal("plan has no shots")
	}

	out, _, err = runCLI(t, env.configPath, "generate", "--plan", planFile, "--output-root", env.baseDir)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "executed: no") {
		t.Fatalf("unexpected generate output: %q", out)
	}
	manifest, err := generate.Load(filepath.Join(env.baseDir, "generation_manifest.json"))
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	for _, shot := range manifest.Shots {
		for _, take := range shot.Takes {
			if take.Status != generate.TakePlanned {
				t.Fatalf("take %s status %s, want planned", take.ID, take.Status)
			}
		}
	}
}

func TestCLIGenerateExecuteRequiresSynthesizer(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env.configPath, "generate", "--plan", "does-not-matter.json", "--execute")
	if err == nil {
		t.Fatal("expected missing synthesizer error")
	}
	if !strings.Contains(err.Error(), "Clip synthesizer") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCLIRunDryRunAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	audio := env.writeAudio(t)

	out, _, err := runCLI(t, env.configPath, "run", "--audio", audio, "--theme", "neon city nights")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "generation was not executed") {
		t.Fatalf("expected skipped assembly notice, got %q", out)
	}
	fields := strings.Fields(strings.SplitN(out, "\n", 2)[0])
	if len(fields) != 2 {
		t.Fatalf("unexpected run header: %q", out)
	}
	runID := fields[1]

	out, _, err = runCLI(t, env.configPath, "runs", "list")
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	if !strings.Contains(out, "completed") || !strings.Contains(out, "neon city nights") {
		t.Fatalf("unexpected runs list output: %q", out)
	}

	out, _, err = runCLI(t, env.configPath, "runs", "show", runID)
	if err != nil {
		t.Fatalf("runs show: %v", err)
	}
	if !strings.Contains(out, "Status:  completed") || !strings.Contains(out, "Manifest:") {
		t.Fatalf("unexpected runs show output: %q", out)
	}
}

func TestCLIRunsListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "runs", "list")
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	if !strings.Contains(out, "No runs recorded") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCLIStatusReportsDependencies(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"== Dependencies ==", "FFprobe", "FFmpeg", "aubio", "Clip synthesizer", "required tools missing"} {
		if !strings.Contains(out, want) {
			t.Fatalf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestCLIConfigCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(env.baseDir, "generated.toml")
	out, _, err := runCLI(t, env.configPath, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration to "+target) {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	if _, _, err := runCLI(t, env.configPath, "config", "init", "--path", target); err == nil {
		t.Fatal("expected overwrite refusal")
	}
	if _, _, err := runCLI(t, env.configPath, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, env.configPath, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if !strings.Contains(out, env.configPath) {
		t.Fatalf("unexpected config path output: %q", out)
	}

	out, _, err = runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "[planning]") || !strings.Contains(out, "style_preset = 'cinematic'") {
		t.Fatalf("unexpected config show output: %q", out)
	}
}
