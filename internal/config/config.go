package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir string `toml:"work_dir"`
	LogDir  string `toml:"log_dir"`
}

// Analysis contains configuration for audio feature extraction.
type Analysis struct {
	FFprobeBin        string  `toml:"ffprobe_bin"`
	AubioBin          string  `toml:"aubio_bin"`
	MinSectionSeconds float64 `toml:"min_section_seconds"`
	MaxEnergyPoints   int     `toml:"max_energy_points"`
}

// Planning contains shot planning defaults.
type Planning struct {
	StylePreset    string  `toml:"style_preset"`
	Resolution     string  `toml:"resolution"`
	FPS            int     `toml:"fps"`
	MinShotSeconds float64 `toml:"min_shot_seconds"`
	MaxShotSeconds float64 `toml:"max_shot_seconds"`
	TakesHero      int     `toml:"takes_hero"`
	TakesStandard  int     `toml:"takes_standard"`
	TakesFiller    int     `toml:"takes_filler"`
	Seed           int64   `toml:"seed"`
}

// Generation contains configuration for the external clip synthesis command.
type Generation struct {
	SynthBin       string `toml:"synth_bin"`
	QualityDefault string `toml:"quality_default"`
	TimeoutMinutes int    `toml:"timeout_minutes"`
	PreviewStills  int    `toml:"preview_stills"`
	Previews       bool   `toml:"previews"`
}

// Assembly contains configuration for the final export.
type Assembly struct {
	FFmpegBin  string `toml:"ffmpeg_bin"`
	Resolution string `toml:"resolution"`
	FPS        int    `toml:"fps"`
	CRF        int    `toml:"crf"`
	KeepTemp   bool   `toml:"keep_temp"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Cadence.
//
// Configuration sections by subsystem:
//   - Paths: run working directory and log directory
//   - Analysis: audio probing and beat detection
//   - Planning: shot planning defaults (resolution, shot bounds, takes)
//   - Generation: clip synthesis command and per-take limits
//   - Assembly: final export encoding settings
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Analysis   Analysis   `toml:"analysis"`
	Planning   Planning   `toml:"planning"`
	Generation Generation `toml:"generation"`
	Assembly   Assembly   `toml:"assembly"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/cadence/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cadence.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample configuration to path.
func WriteSample(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// ExpandPath expands a leading ~ and returns a cleaned absolute path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
