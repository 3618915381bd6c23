package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAnalysis()
	c.normalizePlanning()
	c.normalizeGeneration()
	c.normalizeAssembly()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = ExpandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAnalysis() {
	if strings.TrimSpace(c.Analysis.FFprobeBin) == "" {
		c.Analysis.FFprobeBin = defaultFFprobeBinary
	}
	if strings.TrimSpace(c.Analysis.AubioBin) == "" {
		c.Analysis.AubioBin = defaultAubioBinary
	}
	if c.Analysis.MinSectionSeconds <= 0 {
		c.Analysis.MinSectionSeconds = defaultMinSectionSeconds
	}
	if c.Analysis.MaxEnergyPoints <= 0 {
		c.Analysis.MaxEnergyPoints = defaultMaxEnergyPoints
	}
}

func (c *Config) normalizePlanning() {
	c.Planning.StylePreset = strings.ToLower(strings.TrimSpace(c.Planning.StylePreset))
	if c.Planning.StylePreset == "" {
		c.Planning.StylePreset = defaultStylePreset
	}
	c.Planning.Resolution = strings.ToLower(strings.ReplaceAll(c.Planning.Resolution, " ", ""))
	if c.Planning.Resolution == "" {
		c.Planning.Resolution = defaultPlanResolution
	}
	if c.Planning.FPS <= 0 {
		c.Planning.FPS = defaultPlanFPS
	}
	if c.Planning.MinShotSeconds <= 0 {
		c.Planning.MinShotSeconds = defaultMinShotSeconds
	}
	if c.Planning.MaxShotSeconds <= 0 {
		c.Planning.MaxShotSeconds = defaultMaxShotSeconds
	}
	if c.Planning.TakesHero < 1 {
		c.Planning.TakesHero = defaultTakesHero
	}
	if c.Planning.TakesStandard < 1 {
		c.Planning.TakesStandard = defaultTakesStandard
	}
	if c.Planning.TakesFiller < 1 {
		c.Planning.TakesFiller = defaultTakesFiller
	}
}

func (c *Config) normalizeGeneration() {
	if strings.TrimSpace(c.Generation.SynthBin) == "" {
		c.Generation.SynthBin = defaultSynthBinary
	}
	c.Generation.QualityDefault = strings.ToLower(strings.TrimSpace(c.Generation.QualityDefault))
	if c.Generation.QualityDefault == "" {
		c.Generation.QualityDefault = defaultQuality
	}
	if c.Generation.TimeoutMinutes < 0 {
		c.Generation.TimeoutMinutes = 0
	}
	if c.Generation.PreviewStills <= 0 {
		c.Generation.PreviewStills = defaultPreviewStills
	}
}

func (c *Config) normalizeAssembly() {
	if strings.TrimSpace(c.Assembly.FFmpegBin) == "" {
		c.Assembly.FFmpegBin = defaultFFmpegBinary
	}
	c.Assembly.Resolution = strings.ToLower(strings.ReplaceAll(c.Assembly.Resolution, " ", ""))
	if c.Assembly.Resolution == "" {
		c.Assembly.Resolution = defaultFinalResolution
	}
	if c.Assembly.FPS <= 0 {
		c.Assembly.FPS = defaultFinalFPS
	}
	if c.Assembly.CRF <= 0 {
		c.Assembly.CRF = defaultCRF
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
