package config

import (
	"fmt"
	"strconv"
	"strings"
)

var stylePresets = map[string]struct{}{
	"cinematic":   {},
	"performance": {},
	"abstract":    {},
	"brand-promo": {},
}

var qualityTiers = map[string]struct{}{
	"draft":    {},
	"balanced": {},
	"quality":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlanning(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateAssembly(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePlanning() error {
	if _, ok := stylePresets[c.Planning.StylePreset]; !ok {
		return fmt.Errorf("planning.style_preset %q must be one of cinematic, performance, abstract, brand-promo", c.Planning.StylePreset)
	}
	if _, _, err := ParseResolution(c.Planning.Resolution); err != nil {
		return fmt.Errorf("planning.resolution: %w", err)
	}
	if c.Planning.MinShotSeconds > c.Planning.MaxShotSeconds {
		return fmt.Errorf("planning.min_shot_seconds (%g) must not exceed planning.max_shot_seconds (%g)",
			c.Planning.MinShotSeconds, c.Planning.MaxShotSeconds)
	}
	return nil
}

func (c *Config) validateGeneration() error {
	if _, ok := qualityTiers[c.Generation.QualityDefault]; !ok {
		return fmt.Errorf("generation.quality_default %q must be one of draft, balanced, quality", c.Generation.QualityDefault)
	}
	return nil
}

func (c *Config) validateAssembly() error {
	if _, _, err := ParseResolution(c.Assembly.Resolution); err != nil {
		return fmt.Errorf("assembly.resolution: %w", err)
	}
	if c.Assembly.CRF > 51 {
		return fmt.Errorf("assembly.crf %d exceeds the x264 maximum of 51", c.Assembly.CRF)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	return nil
}

// ParseResolution splits a WIDTHxHEIGHT string into positive dimensions.
func ParseResolution(resolution string) (int, int, error) {
	cleaned := strings.ToLower(strings.ReplaceAll(resolution, " ", ""))
	widthText, heightText, found := strings.Cut(cleaned, "x")
	if !found {
		return 0, 0, fmt.Errorf("resolution %q must be WIDTHxHEIGHT", resolution)
	}
	width, err := strconv.Atoi(widthText)
	if err != nil {
		return 0, 0, fmt.Errorf("resolution width %q: %w", widthText, err)
	}
	height, err := strconv.Atoi(heightText)
	if err != nil {
		return 0, 0, fmt.Errorf("resolution height %q: %w", heightText, err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("resolution %q dimensions must be positive", resolution)
	}
	return width, height, nil
}
